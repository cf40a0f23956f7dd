package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Deterministic LCG so the sweep tests are reproducible.
var seed = int64(1)

func sweepRand() float64 {
	seed = 25214903917*seed + 11
	return float64(seed&0xffff_ffff_ffff) / float64(1<<48)
}

func TestSelectOutputDivider_Breakpoints(t *testing.T) {
	tests := []struct {
		name       string
		freqMHz    float64
		divider    uint32
		selectCode uint8
	}{
		{"Top of range", 4400.0, 1, 0},
		{"Fundamental band", 2200.0, 1, 0},
		{"Just below fundamental", 2199.99, 2, 1},
		{"Divide by 2", 1100.0, 2, 1},
		{"Divide by 4", 550.0, 4, 2},
		{"Divide by 8", 275.0, 8, 3},
		{"Divide by 16", 137.5, 16, 4},
		{"Divide by 32", 68.75, 32, 5},
		{"Divide by 64", 68.74, 64, 6},
		{"Bottom of range", 35.0, 64, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choice := SelectOutputDivider(tt.freqMHz)
			assert.Equal(t, tt.divider, choice.Divider)
			assert.Equal(t, tt.selectCode, choice.SelectCode)
		})
	}
}

// Every frequency in the chip's output range must map to a divider that
// puts the VCO inside [2200, 4400). The upper bound is only reached at
// exactly 4400 MHz where the divider is 1.
func TestSelectOutputDivider_VCOBand(t *testing.T) {
	for i := 0; i < 20000; i++ {
		f := MinOutputFreqMHz + sweepRand()*(MaxOutputFreqMHz-MinOutputFreqMHz)
		choice := SelectOutputDivider(f)
		vco := f * float64(choice.Divider)

		assert.GreaterOrEqual(t, vco, MinVCOFreqMHz, "f=%.6f divider=%d", f, choice.Divider)
		if f == MaxOutputFreqMHz {
			assert.Equal(t, MaxVCOFreqMHz, vco)
		} else {
			assert.Less(t, vco, MaxVCOFreqMHz, "f=%.6f divider=%d", f, choice.Divider)
		}
	}
}

func TestSelectOutputDivider_SelectCodeIsLog2(t *testing.T) {
	for _, entry := range dividerTable {
		assert.Equal(t, entry.divider, uint32(1)<<entry.selectCode)
	}
}
