package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"omibyte.io/hilcore/board"
	"omibyte.io/hilcore/hil"
	"omibyte.io/hilcore/kernel"
)

var ErrExpectation = errors.New("unexpected result")

// Scenario is a scripted sequence of system calls and analog stimuli run
// against one simulated board.
type Scenario struct {
	Board     string   `yaml:"board"`
	Processes []string `yaml:"processes"`
	Steps     []Step   `yaml:"steps"`
}

// Step does exactly one of its actions.
type Step struct {
	App       int            `yaml:"app"`
	Command   *CommandStep   `yaml:"command"`
	Subscribe *SubscribeStep `yaml:"subscribe"`
	Allow     *AllowStep     `yaml:"allow"`
	Voltage   *VoltageStep   `yaml:"voltage"`
	Yield     bool           `yaml:"yield"`
	Expect    *int32         `yaml:"expect"`
	Upcalls   *int           `yaml:"upcalls"`
}

type CommandStep struct {
	Driver uint32 `yaml:"driver"`
	Cmd    uint32 `yaml:"cmd"`
	Arg1   uint32 `yaml:"arg1"`
	Arg2   uint32 `yaml:"arg2"`
}

type SubscribeStep struct {
	Driver uint32 `yaml:"driver"`
	Num    uint32 `yaml:"num"`
	Off    bool   `yaml:"off"`
}

type AllowStep struct {
	Driver uint32 `yaml:"driver"`
	Num    uint32 `yaml:"num"`
	Size   int    `yaml:"size"`
}

type VoltageStep struct {
	Channel int     `yaml:"channel"`
	Volts   float64 `yaml:"volts"`
}

func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if len(s.Processes) == 0 {
		s.Processes = []string{"app"}
	}
	return &s, nil
}

// Upcall is one delivered upcall.
type Upcall struct {
	App    int
	Driver uint32
	Args   [3]uint32
}

type runner struct {
	b       *board.Board
	procs   []*kernel.Process
	upcalls []Upcall
	out     io.Writer
}

// Run executes s on b. Every failed expectation is reported; the returned
// error joins them.
func (s *Scenario) Run(b *board.Board, out io.Writer) ([]Upcall, error) {
	r := &runner{b: b, out: out}
	for _, name := range s.Processes {
		r.procs = append(r.procs, b.Kernel.CreateProcess(name))
	}

	var errs []error
	for i, step := range s.Steps {
		if step.App < 0 || step.App >= len(r.procs) {
			return r.upcalls, fmt.Errorf("step %d: no process %d", i, step.App)
		}
		if err := r.step(i, step); err != nil {
			errs = append(errs, err)
		}
	}
	return r.upcalls, errors.Join(errs...)
}

func (r *runner) step(i int, s Step) error {
	p := r.procs[s.App]
	k := r.b.Kernel

	var res *kernel.Result
	switch {
	case s.Command != nil:
		c := s.Command
		v := k.Command(p, c.Driver, c.Cmd, c.Arg1, c.Arg2)
		res = &v
		r.report(p, fmt.Sprintf("command(%#x, %d, %d, %d)", c.Driver, c.Cmd, c.Arg1, c.Arg2), v)
	case s.Subscribe != nil:
		c := s.Subscribe
		var fn kernel.Upcall
		if !c.Off {
			app, driver := s.App, c.Driver
			fn = func(a0, a1, a2 uint32) {
				r.upcalls = append(r.upcalls, Upcall{App: app, Driver: driver, Args: [3]uint32{a0, a1, a2}})
				fmt.Fprintf(r.out, "  %s upcall driver %#x (%d, %d, %d)\n", color.MagentaString(p.Name()), driver, a0, a1, a2)
			}
		}
		v := k.Subscribe(p, c.Driver, c.Num, fn)
		res = &v
		r.report(p, fmt.Sprintf("subscribe(%#x, %d)", c.Driver, c.Num), v)
	case s.Allow != nil:
		c := s.Allow
		v := k.Allow(p, c.Driver, c.Num, make([]byte, c.Size))
		res = &v
		r.report(p, fmt.Sprintf("allow(%#x, %d, %d)", c.Driver, c.Num, c.Size), v)
	case s.Voltage != nil:
		if r.b.Machine == nil || r.b.Machine.Comp == nil {
			return fmt.Errorf("step %d: board has no comparator", i)
		}
		if ch := s.Voltage.Channel; ch < 0 || ch >= hil.NumPins {
			return fmt.Errorf("step %d: %w: AIN%d", i, hil.ErrInvalidPin, ch)
		}
		r.b.Machine.Comp.SetVoltage(s.Voltage.Channel, s.Voltage.Volts)
		fmt.Fprintf(r.out, "  AIN%d = %.3fV\n", s.Voltage.Channel, s.Voltage.Volts)
	case s.Yield:
		before := len(r.upcalls)
		for k.Yield(p) {
		}
		if s.Upcalls != nil && len(r.upcalls)-before != *s.Upcalls {
			return fmt.Errorf("step %d: %w: %d upcalls, want %d", i, ErrExpectation, len(r.upcalls)-before, *s.Upcalls)
		}
	default:
		return fmt.Errorf("step %d: no action", i)
	}

	if s.Expect != nil && res != nil && res.Word() != *s.Expect {
		return fmt.Errorf("step %d: %w: got %v (%d), want %d", i, ErrExpectation, *res, res.Word(), *s.Expect)
	}
	return nil
}

func (r *runner) report(p *kernel.Process, call string, res kernel.Result) {
	paint := color.GreenString
	if !res.IsSuccess() {
		paint = color.RedString
	}
	fmt.Fprintf(r.out, "%s %s = %s\n", color.CyanString("[%s]", p.Name()), call, paint("%v", res))
}
