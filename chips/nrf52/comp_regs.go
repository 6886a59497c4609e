package nrf52

import (
	"fmt"

	"omibyte.io/hilcore/hil"
	"omibyte.io/hilcore/irq"
	"omibyte.io/hilcore/mmio"
)

const (
	CompBase uintptr  = 0x40013000
	CompSize uintptr  = 0x1000
	CompIRQ  irq.Line = 19
)

var (
	compTasksStart  = mmio.NewWO[uint32]("TASKS_START", 0x000, 0, 1)
	compTasksStop   = mmio.NewWO[uint32]("TASKS_STOP", 0x004, 0, 1)
	compTasksSample = mmio.NewWO[uint32]("TASKS_SAMPLE", 0x008, 0, 1)

	compEventsReady = mmio.NewRW[uint32]("EVENTS_READY", 0x100, 0, 1)
	compEventsDown  = mmio.NewRW[uint32]("EVENTS_DOWN", 0x104, 0, 1)
	compEventsUp    = mmio.NewRW[uint32]("EVENTS_UP", 0x108, 0, 1)
	compEventsCross = mmio.NewRW[uint32]("EVENTS_CROSS", 0x10C, 0, 1)

	compShortsReadySample = mmio.NewRW[uint32]("SHORTS.READY_SAMPLE", 0x200, 0, 1)

	compIntenReady = mmio.NewRW[uint32]("INTEN.READY", 0x300, 0, 1)
	compIntenDown  = mmio.NewRW[uint32]("INTEN.DOWN", 0x300, 1, 1)
	compIntenUp    = mmio.NewRW[uint32]("INTEN.UP", 0x300, 2, 1)
	compIntenCross = mmio.NewRW[uint32]("INTEN.CROSS", 0x300, 3, 1)

	compIntensetDown = mmio.NewRW[uint32]("INTENSET.DOWN", 0x304, 1, 1)
	compIntensetUp   = mmio.NewRW[uint32]("INTENSET.UP", 0x304, 2, 1)
	compIntenclrDown = mmio.NewRW[uint32]("INTENCLR.DOWN", 0x308, 1, 1)
	compIntenclrUp   = mmio.NewRW[uint32]("INTENCLR.UP", 0x308, 2, 1)

	compResult    = mmio.NewRO[uint32]("RESULT.RESULT", 0x400, 0, 1)
	compEnable    = mmio.NewRW[uint32]("ENABLE.ENABLE", 0x500, 0, 2)
	compPsel      = mmio.NewRW[uint32]("PSEL.PSEL", 0x504, 0, 3)
	compRefsel    = mmio.NewRW[uint32]("REFSEL.REFSEL", 0x508, 0, 3)
	compExtrefsel = mmio.NewRW[uint32]("EXTREFSEL.EXTREFSEL", 0x50C, 0, 3)
	compThDown    = mmio.NewRW[uint32]("TH.THDOWN", 0x530, 0, 6)
	compThUp      = mmio.NewRW[uint32]("TH.THUP", 0x530, 8, 6)
	compModeSp    = mmio.NewRW[uint32]("MODE.SP", 0x534, 0, 2)
	compModeMain  = mmio.NewRW[uint32]("MODE.MAIN", 0x534, 8, 1)
	compHyst      = mmio.NewRW[uint32]("HYST.HYST", 0x538, 0, 1)
)

// CompFields returns the declared COMP register layout.
func CompFields() []mmio.Declarer {
	return []mmio.Declarer{
		compTasksStart, compTasksStop, compTasksSample,
		compEventsReady, compEventsDown, compEventsUp, compEventsCross,
		compShortsReadySample,
		compIntenReady, compIntenDown, compIntenUp, compIntenCross,
		compIntensetDown, compIntensetUp, compIntenclrDown, compIntenclrUp,
		compResult, compEnable, compPsel, compRefsel, compExtrefsel,
		compThDown, compThUp, compModeSp, compModeMain, compHyst,
	}
}

// CompBlock claims the COMP range and declares its registers.
func CompBlock(r *mmio.Regions, bus mmio.Bus, base uintptr) (*mmio.Block, error) {
	return r.Block(bus, "COMP", base, CompSize, CompFields()...)
}

const (
	enableDisabled = 0
	enableEnabled  = 2

	// THUP and THDOWN at 63 put both thresholds at VREF.
	thresholdVref = 63

	resultAbove = 1
)

const (
	refselInt1V2 = 0
	refselInt1V8 = 1
	refselInt2V4 = 2
	refselVDD    = 4
	refselARef   = 5
)

func encodeInternalRef(ref hil.RefPin) (uint32, error) {
	switch ref {
	case hil.Int1V2:
		return refselInt1V2, nil
	case hil.Int1V8:
		return refselInt1V8, nil
	case hil.Int2V4:
		return refselInt2V4, nil
	case hil.VDD:
		return refselVDD, nil
	}
	return 0, fmt.Errorf("%w: %v is not an internal reference", hil.ErrInvalidReference, ref)
}

func decodeInternalRef(v uint32) (hil.RefPin, error) {
	switch v {
	case refselInt1V2:
		return hil.Int1V2, nil
	case refselInt1V8:
		return hil.Int1V8, nil
	case refselInt2V4:
		return hil.Int2V4, nil
	case refselVDD:
		return hil.VDD, nil
	}
	return 0, fmt.Errorf("%w: REFSEL %d", hil.ErrInvalidReference, v)
}

func encodeSpeed(s hil.SpeedMode) (uint32, error) {
	switch s {
	case hil.Low:
		return 0, nil
	case hil.Normal:
		return 1, nil
	case hil.High:
		return 2, nil
	}
	return 0, fmt.Errorf("%w: %v", hil.ErrInvalidMode, s)
}

func decodeSpeed(v uint32) (hil.SpeedMode, error) {
	return hil.SpeedModeFrom(v)
}

func encodeMode(m hil.OpMode) (uint32, error) {
	switch m {
	case hil.SingleEnded:
		return 0, nil
	case hil.Differential:
		return 1, nil
	}
	return 0, fmt.Errorf("%w: %v", hil.ErrInvalidMode, m)
}
