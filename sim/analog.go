package sim

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Waveform is a sequence of voltages applied to one analog input, one sample
// per step.
type Waveform []float64

// Ramp returns n evenly spaced samples from start to end inclusive.
func Ramp(start, end float64, n int) Waveform {
	if n < 2 {
		return Waveform{end}
	}
	return floats.Span(make([]float64, n), start, end)
}

// Triangle rises from lo to hi and falls back in n samples per edge.
func Triangle(lo, hi float64, n int) Waveform {
	up := Ramp(lo, hi, n)
	down := Ramp(hi, lo, n)
	return append(up, down[1:]...)
}

// Sine returns n samples of one period of a sine wave around offset.
func Sine(offset, amplitude float64, n int) Waveform {
	w := floats.Span(make([]float64, n), 0, 2*math.Pi)
	for i, x := range w {
		w[i] = offset + amplitude*math.Sin(x)
	}
	return w
}

// Crossings counts how often w passes through level in each direction.
func (w Waveform) Crossings(level float64) (up, down int) {
	for i := 1; i < len(w); i++ {
		switch {
		case w[i-1] <= level && w[i] > level:
			up++
		case w[i-1] >= level && w[i] < level:
			down++
		}
	}
	return
}

func (w Waveform) Range() (lo, hi float64) {
	if len(w) == 0 {
		return 0, 0
	}
	return floats.Min(w), floats.Max(w)
}

// Drive applies w to channel ch of c, calling step after every sample.
func (w Waveform) Drive(c *Comparator, ch int, step func(i int, v float64)) {
	for i, v := range w {
		c.SetVoltage(ch, v)
		if step != nil {
			step(i, v)
		}
	}
}
