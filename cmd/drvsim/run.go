package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"omibyte.io/hilcore/board"
	"omibyte.io/hilcore/mmio"
	"omibyte.io/hilcore/sim"
)

var (
	runOpts = struct {
		dump bool
	}{}

	runCmd = &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "Run a system call scenario",
		Long:  "Run a YAML scenario of system calls and analog input changes against a simulated board. The scenario is read from stdin when no file is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			s, err := ParseScenario(data)
			if err != nil {
				return err
			}

			name := rootOpts.board
			if len(s.Board) > 0 && !cmd.Flags().Changed("board") {
				name = s.Board
			}
			b, err := simulate(name)
			if err != nil {
				return err
			}

			_, runErr := s.Run(b, cmd.OutOrStdout())
			if runOpts.dump {
				dumpBoard(cmd.OutOrStdout(), b)
			}
			return runErr
		},
	}
)

func init() {
	runCmd.Flags().BoolVar(&runOpts.dump, "dump", false, "dump the board state after the scenario")
}

// boardState is the part of a board worth showing after a run.
type boardState struct {
	Board     string
	Order     []string
	Drivers   []uint32
	LEDs      []bool
	Registers map[string]map[string]uint32
}

func dumpBoard(w io.Writer, b *board.Board) {
	state := boardState{
		Board:     b.Info.Name,
		Order:     b.Order,
		Drivers:   b.Drivers.Numbers(),
		Registers: map[string]map[string]uint32{},
	}
	if b.LEDs != nil {
		for i := 0; i < b.LEDs.Count(); i++ {
			state.LEDs = append(state.LEDs, b.LEDs.IsOn(i))
		}
	}
	if b.Machine != nil {
		if b.Comp != nil {
			state.Registers["COMP"] = readable(b.Machine, b.Comp.Block())
		}
		if b.Port != nil {
			state.Registers["P0"] = readable(b.Machine, b.Port.Block())
		}
	}
	cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
	fmt.Fprint(w, cfg.Sdump(state))
}

// readable returns the fields of blk that can be read back, keyed by name.
func readable(m *sim.Machine, blk *mmio.Block) map[string]uint32 {
	regs := map[string]uint32{}
	for _, f := range blk.Layout().Fields {
		if f.Access == mmio.WriteOnly {
			continue
		}
		word := m.Bus.LoadUint32(blk.Base() + f.Offset)
		regs[f.Name] = (word & f.Mask()) >> f.Shift
	}
	return regs
}
