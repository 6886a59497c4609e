package board

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"omibyte.io/hilcore/chips/nrf52"
	"omibyte.io/hilcore/hil"
	"omibyte.io/hilcore/kernel"
)

//go:embed boards.yaml
var rawBoards []byte

var boards Boards

func All() Boards {
	return boards
}

type Boards []Info

type Info struct {
	Name        string        `yaml:"name"`
	Chip        string        `yaml:"chip"`
	Description string        `yaml:"description"`
	Peripherals Peripherals   `yaml:"peripherals"`
	LEDs        []LEDConfig   `yaml:"leds"`
	Kernel      kernel.Config `yaml:"kernel"`
}

type Peripherals struct {
	Comp *CompConfig `yaml:"comp"`
	GPIO *GPIOConfig `yaml:"gpio"`
}

type CompConfig struct {
	Base       uint64 `yaml:"base"`
	Speed      string `yaml:"speed"`
	Hysteresis bool   `yaml:"hysteresis"`
}

type GPIOConfig struct {
	Base uint64 `yaml:"base"`
}

type LEDConfig struct {
	Pin  int    `yaml:"pin"`
	Mode string `yaml:"mode"`
}

func (c CompConfig) SpeedMode() (hil.SpeedMode, error) {
	switch strings.ToLower(c.Speed) {
	case "low":
		return hil.Low, nil
	case "normal", "":
		return hil.Normal, nil
	case "high":
		return hil.High, nil
	}
	return 0, fmt.Errorf("%w: comparator speed %q", hil.ErrInvalidMode, c.Speed)
}

// Validate reports every problem of the definition at once.
func (b Info) Validate() error {
	var errs []error
	if len(b.Name) == 0 {
		errs = append(errs, fmt.Errorf("%w: missing name", ErrInvalidBoard))
	}
	if c := b.Peripherals.Comp; c != nil {
		if c.Base%4 != 0 {
			errs = append(errs, fmt.Errorf("%w: comp base %#x not word aligned", ErrInvalidBoard, c.Base))
		}
		if _, err := c.SpeedMode(); err != nil {
			errs = append(errs, err)
		}
	}
	if g := b.Peripherals.GPIO; g != nil && g.Base%4 != 0 {
		errs = append(errs, fmt.Errorf("%w: gpio base %#x not word aligned", ErrInvalidBoard, g.Base))
	}
	if len(b.LEDs) > 0 && b.Peripherals.GPIO == nil {
		errs = append(errs, fmt.Errorf("%w: leds need a gpio port", ErrInvalidBoard))
	}
	var seen []int
	for i, l := range b.LEDs {
		if l.Pin < 0 || l.Pin >= nrf52.NumPins {
			errs = append(errs, fmt.Errorf("%w: led %d pin %d", hil.ErrInvalidPin, i, l.Pin))
		}
		if slices.Contains(seen, l.Pin) {
			errs = append(errs, fmt.Errorf("%w: led %d reuses pin %d", ErrInvalidBoard, i, l.Pin))
		}
		seen = append(seen, l.Pin)
		if _, err := hil.ParseActivationMode(l.Mode); err != nil {
			errs = append(errs, fmt.Errorf("led %d: %w", i, err))
		}
	}
	return joinErrors(b.Name, errs)
}

func joinErrors(name string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("board %s: %w", name, errors.Join(errs...))
}

func (b Boards) Find(name string) (Info, error) {
	i := slices.IndexFunc(b, func(info Info) bool {
		return strings.EqualFold(info.Name, name)
	})
	if i < 0 {
		return Info{}, fmt.Errorf("%w: %s", ErrBoardNotFound, name)
	}
	return b[i], nil
}

func (b Boards) FindByChip(chip string) Boards {
	var found Boards
	for _, info := range b {
		if strings.EqualFold(info.Chip, chip) {
			found = append(found, info)
		}
	}
	return found
}

func (b Boards) Names() []string {
	names := make([]string, len(b))
	for i, info := range b {
		names[i] = info.Name
	}
	slices.Sort(names)
	return names
}

// Lookup finds a built-in board.
func Lookup(name string) (Info, error) {
	return boards.Find(name)
}

// Parse decodes and validates board definitions.
func Parse(data []byte) (Boards, error) {
	var doc struct {
		Elements Boards `yaml:"boards"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var errs []error
	for _, info := range doc.Elements {
		if err := info.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return doc.Elements, nil
}

// Load reads board definitions from a file.
func Load(path string) (Boards, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func init() {
	var err error
	if boards, err = Parse(rawBoards); err != nil {
		panic(err)
	}
}
