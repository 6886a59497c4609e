package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	tty "github.com/mattn/go-tty"
	"github.com/spf13/cobra"

	"omibyte.io/hilcore/board"
	"omibyte.io/hilcore/capsules/led"
	"omibyte.io/hilcore/kernel"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Toggle the board's LEDs from the keyboard",
	Long:  "Open an interactive console where the keys 1-9 toggle LEDs through the LED driver's system calls. Press q to quit.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := simulate(rootOpts.board)
		if err != nil {
			return err
		}
		t, err := tty.Open()
		if err != nil {
			return err
		}
		defer t.Close()

		c := newConsole(b, t.Output())
		c.help()
		for {
			r, err := t.ReadRune()
			if err != nil {
				return err
			}
			if !c.key(r) {
				return nil
			}
		}
	},
}

type console struct {
	b   *board.Board
	p   *kernel.Process
	out io.Writer
}

func newConsole(b *board.Board, out io.Writer) *console {
	return &console{b: b, p: b.Kernel.CreateProcess("console"), out: out}
}

func (c *console) help() {
	n := c.b.Kernel.Command(c.p, led.DriverNum, 0, 0, 0)
	if !n.IsSuccess() {
		fmt.Fprintf(c.out, "%s has no LEDs (%v)\r\n", c.b.Info.Name, n)
	} else {
		fmt.Fprintf(c.out, "%s: %d LEDs, keys 1-%d toggle, q quits\r\n", c.b.Info.Name, n.Value, n.Value)
	}
}

// key handles one key press and reports whether the console keeps running.
func (c *console) key(r rune) bool {
	switch {
	case r == 'q' || r == 'Q' || r == 3:
		return false
	case r == '?':
		c.help()
	case r >= '1' && r <= '9':
		i := uint32(r - '1')
		res := c.b.Kernel.Command(c.p, led.DriverNum, 3, i, 0)
		if !res.IsSuccess() {
			fmt.Fprintf(c.out, "led %d: %s\r\n", i+1, color.RedString("%v", res))
			return true
		}
		c.show()
	}
	return true
}

func (c *console) show() {
	if c.b.LEDs == nil {
		return
	}
	var sb strings.Builder
	for i := 0; i < c.b.LEDs.Count(); i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if c.b.LEDs.IsOn(i) {
			sb.WriteString(color.YellowString("%d:on ", i+1))
		} else {
			sb.WriteString(color.HiBlackString("%d:off", i+1))
		}
	}
	fmt.Fprintf(c.out, "%s\r\n", sb.String())
}
