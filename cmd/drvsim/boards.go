package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List the available board definitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bs, err := availableBoards()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "BOARD\tCHIP\tLEDS\tCOMP\tDESCRIPTION")
		for _, name := range bs.Names() {
			info, _ := bs.Find(name)
			comp := "-"
			if c := info.Peripherals.Comp; c != nil {
				comp = fmt.Sprintf("%#x", c.Base)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", color.CyanString(info.Name), info.Chip, len(info.LEDs), comp, info.Description)
		}
		return w.Flush()
	},
}
