package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"omibyte.io/hilcore/board"
	"omibyte.io/hilcore/capsules/comparator"
	"omibyte.io/hilcore/hil"
	"omibyte.io/hilcore/sim"
)

var (
	compareOpts = struct {
		wave    string
		lo, hi  float64
		samples int
		channel int
		ref     string
	}{}

	compareCmd = &cobra.Command{
		Use:   "compare",
		Short: "Drive a waveform into the comparator",
		Long:  "Apply a waveform to one analog input and count the crossings the comparator driver reports to a process, re-arming after every one-shot event.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wave, err := waveform(compareOpts.wave, compareOpts.lo, compareOpts.hi, compareOpts.samples)
			if err != nil {
				return err
			}
			ref, err := parseRef(compareOpts.ref)
			if err != nil {
				return err
			}
			b, err := simulate(rootOpts.board)
			if err != nil {
				return err
			}
			res, err := compareWave(b, wave, compareOpts.channel, ref)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			lo, hi := wave.Range()
			fmt.Fprintf(w, "%s %d samples %.3fV..%.3fV on AIN%d against %v (%.3fV)\n",
				compareOpts.wave, len(wave), lo, hi, compareOpts.channel, ref, res.Level)
			status := color.GreenString("match")
			if !res.Matches() {
				status = color.RedString("mismatch")
			}
			fmt.Fprintf(w, "rising  %d (expected %d)\nfalling %d (expected %d)\n%s\n",
				res.Rising, res.WantRising, res.Falling, res.WantFalling, status)
			return nil
		},
	}
)

func init() {
	f := compareCmd.Flags()
	f.StringVar(&compareOpts.wave, "wave", "triangle", "waveform: ramp, triangle or sine")
	f.Float64Var(&compareOpts.lo, "lo", 0.5, "lowest voltage")
	f.Float64Var(&compareOpts.hi, "hi", 2.5, "highest voltage")
	f.IntVarP(&compareOpts.samples, "samples", "n", 64, "samples per edge or period")
	f.IntVarP(&compareOpts.channel, "channel", "c", 0, "analog input to drive")
	f.StringVarP(&compareOpts.ref, "ref", "r", "Int1V8", "reference: AIN0-AIN7, Int1V2, Int1V8, Int2V4 or VDD")
}

func waveform(kind string, lo, hi float64, n int) (sim.Waveform, error) {
	switch strings.ToLower(kind) {
	case "ramp":
		return sim.Ramp(lo, hi, n), nil
	case "triangle":
		return sim.Triangle(lo, hi, n), nil
	case "sine":
		return sim.Sine((lo+hi)/2, (hi-lo)/2, n), nil
	}
	return nil, fmt.Errorf("unknown waveform %q", kind)
}

func parseRef(s string) (hil.RefPin, error) {
	for r := hil.RefAIN0; r <= hil.VDD; r++ {
		if strings.EqualFold(r.String(), s) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", hil.ErrInvalidReference, s)
}

// CompareResult holds the crossings reported by the driver next to the ones
// computed from the waveform.
type CompareResult struct {
	Level                   float64
	Rising, Falling         int
	WantRising, WantFalling int
}

func (r CompareResult) Matches() bool {
	return r.Rising == r.WantRising && r.Falling == r.WantFalling
}

// referenceLevel is the voltage ref resolves to on the simulated machine.
func referenceLevel(m *sim.Machine, ref hil.RefPin) float64 {
	switch ref {
	case hil.Int1V2:
		return 1.2
	case hil.Int1V8:
		return 1.8
	case hil.Int2V4:
		return 2.4
	case hil.VDD:
		return m.Comp.VDD
	}
	pin, _ := ref.Channel()
	return m.Comp.Voltage(int(pin))
}

func compareWave(b *board.Board, wave sim.Waveform, channel int, ref hil.RefPin) (CompareResult, error) {
	if b.Comparator == nil || b.Machine == nil || b.Machine.Comp == nil {
		return CompareResult{}, fmt.Errorf("board %s has no comparator", b.Info.Name)
	}
	if channel < 0 || channel >= hil.NumPins {
		return CompareResult{}, fmt.Errorf("%w: AIN%d", hil.ErrInvalidPin, channel)
	}
	if len(wave) == 0 {
		return CompareResult{}, fmt.Errorf("empty waveform")
	}
	k := b.Kernel
	p := k.CreateProcess("compare")
	ch := uint32(channel)

	res := CompareResult{Level: referenceLevel(b.Machine, ref)}
	res.WantRising, res.WantFalling = wave.Crossings(res.Level)

	fired := false
	if r := k.Subscribe(p, comparator.DriverNum, 0, func(rising, _, _ uint32) {
		if rising != 0 {
			res.Rising++
		} else {
			res.Falling++
		}
		fired = true
	}); !r.IsSuccess() {
		return res, r.Err()
	}

	b.Machine.Comp.SetVoltage(channel, wave[0])
	sample := k.Command(p, comparator.DriverNum, 1, ch, uint32(ref))
	if !sample.IsSuccess() {
		return res, sample.Err()
	}
	above := sample.Value == 1

	arm := func() error {
		req := comparator.Request{Ref: ref, Rising: !above, Mode: hil.SingleEnded}
		if r := k.Command(p, comparator.DriverNum, 2, ch, req.Encode()); !r.IsSuccess() {
			return r.Err()
		}
		return nil
	}
	if err := arm(); err != nil {
		return res, err
	}

	var armErr error
	wave[1:].Drive(b.Machine.Comp, channel, func(int, float64) {
		if armErr != nil {
			return
		}
		for k.Yield(p) {
		}
		if fired {
			fired = false
			above = !above
			armErr = arm()
		}
	})
	if armErr != nil {
		return res, armErr
	}
	k.Command(p, comparator.DriverNum, 3, 0, 0)
	return res, nil
}
