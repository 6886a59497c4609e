package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"omibyte.io/hilcore/board"
	"omibyte.io/hilcore/trust"
)

var (
	rootOpts = struct {
		board    string
		boards   string
		logLevel string
		noColor  bool
	}{}

	rootCmd = &cobra.Command{
		Use:          "drvsim",
		Short:        "Drive the kernel's hardware drivers on a simulated nRF52",
		Long:         "drvsim wires a board definition on a simulated nRF52 and lets processes issue system calls to its LED and comparator drivers.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := trust.ParseLevel(rootOpts.logLevel)
			if err != nil {
				return err
			}
			trust.SetDefault(trust.New(os.Stderr, "", level))
			if rootOpts.noColor {
				color.NoColor = true
			}
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.board, "board", "b", "nrf52dk", "board to simulate")
	rootCmd.PersistentFlags().StringVar(&rootOpts.boards, "boards", "", "YAML file with board definitions instead of the built-in ones")
	rootCmd.PersistentFlags().StringVar(&rootOpts.logLevel, "log", "info", "log level: none, error, warn, info or debug")
	rootCmd.PersistentFlags().BoolVar(&rootOpts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(runCmd, consoleCmd, compareCmd, regmapCmd, boardsCmd)
}

func availableBoards() (board.Boards, error) {
	if len(rootOpts.boards) > 0 {
		return board.Load(rootOpts.boards)
	}
	return board.All(), nil
}

func selectedBoard(name string) (board.Info, error) {
	bs, err := availableBoards()
	if err != nil {
		return board.Info{}, err
	}
	return bs.Find(name)
}

// simulate wires the named board on a fresh simulated machine.
func simulate(name string) (*board.Board, error) {
	info, err := selectedBoard(name)
	if err != nil {
		return nil, err
	}
	return board.Simulate(info, trust.Default())
}
