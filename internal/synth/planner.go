package synth

import (
	"errors"
	"math"
)

// MaxModulus is the largest value the 12-bit MOD field can hold.
const MaxModulus = 4095

// prescalerThreshold is the INT value above which the chip requires the
// 8/9 dual-modulus prescaler instead of 4/5.
const prescalerThreshold = 75

// ErrVCORange reports a VCO frequency outside the chip's operating band.
// With a consistent divider table this cannot happen for inputs that
// passed the output frequency check, but it is validated defensively.
var ErrVCORange = errors.New("synth: VCO frequency outside 2200-4400 MHz")

// Plan holds the fractional-N synthesis parameters for one VCO frequency:
// N = IntN + FracN/Mod against the phase detector frequency, plus the mode
// flags derived from them.
type Plan struct {
	VCOFreqMHz          float64
	IntN                uint16 // 16-bit integer divide ratio
	FracN               uint16 // 12-bit fractional numerator, always < Mod
	Mod                 uint16 // 12-bit modulus setting channel resolution
	Prescaler           uint8  // 0 = 4/5, 1 = 8/9
	LockDetectPrecision uint8  // 1 in integer-N mode
	LockDetectFunction  uint8  // 1 in integer-N mode
}

// IntegerN reports whether the plan is a pure integer-N ratio.
func (p Plan) IntegerN() bool {
	return p.FracN == 0
}

// PlanFrequency computes the INT/FRAC/MOD values that approximate
// vcoFreqMHz / pfdFreqMHz to the requested channel spacing.
//
// The modulus is chosen as round(pfd / spacing) so that one FRAC step moves
// the output by one channel, clamped to the 12-bit field. Rounding of the
// fractional numerator can overflow into the next integer step; the carry
// is folded into IntN so FracN < Mod always holds on return.
func PlanFrequency(vcoFreqMHz, pfdFreqMHz, channelSpacingMHz float64) (Plan, error) {
	if vcoFreqMHz < MinVCOFreqMHz || vcoFreqMHz > MaxVCOFreqMHz {
		return Plan{}, ErrVCORange
	}

	n := vcoFreqMHz / pfdFreqMHz
	intN := uint16(math.Floor(n))

	mod := uint16(math.Round(pfdFreqMHz / channelSpacingMHz))
	if mod > MaxModulus {
		mod = MaxModulus
	}

	fracN := uint16(math.Round((n - float64(intN)) * float64(mod)))
	if mod > 0 && fracN >= mod {
		intN += fracN / mod
		fracN = fracN % mod
	}

	plan := Plan{
		VCOFreqMHz: vcoFreqMHz,
		IntN:       intN,
		FracN:      fracN,
		Mod:        mod,
	}
	if intN >= prescalerThreshold {
		plan.Prescaler = 1
	}
	if plan.IntegerN() {
		// Integer-N mode locks cleanly, so the tighter lock detect
		// window (LDP) and integer-N lock detect function (LDF) apply.
		plan.LockDetectPrecision = 1
		plan.LockDetectFunction = 1
	}
	return plan, nil
}
