package registers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Reference configuration: 25 MHz PFD, 1000 MHz output through the /4
// divider (INT 160, MOD 2500, FRAC 0, integer-N mode).
func referenceFields() Fields {
	return Fields{
		IntN:                160,
		FracN:               0,
		Mod:                 2500,
		Prescaler:           1,
		LockDetectPrecision: 1,
		LockDetectFunction:  1,
		ChargePumpCurrent:   7,
		RCounter:            1,
		OutputPower:         3,
		RFOutputEnable:      1,
		RFDividerSelect:     2,
	}
}

func TestBuild_RegisterWords(t *testing.T) {
	s := Build(referenceFields())

	tests := []struct {
		name string
		addr int
		want uint32
	}{
		{"R0 frequency word", 0, 160<<15 | 0<<3 | 0},
		{"R1 modulus and prescaler", 1, 2500<<3 | 1<<15 | 1<<27 | 1},
		{"R2 reference chain", 2, 1<<6 | 1<<7 | 1<<8 | 7<<9 | 1<<14 | 2},
		{"R3 clock divider defaults", 3, 150<<3 | 3},
		{"R4 output stage", 4, 3<<3 | 1<<5 | 200<<12 | 2<<20 | 1<<23 | 4},
		{"R5 lock detect pin", 5, 3<<19 | 1<<22 | 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s[tt.addr], "got 0x%08X want 0x%08X", s[tt.addr], tt.want)
		})
	}

	// Concrete value from the datasheet worked example.
	assert.Equal(t, uint32(5_242_880), s[0])
}

func TestBuild_AddressBits(t *testing.T) {
	s := Build(referenceFields())
	for addr, word := range s {
		assert.Equal(t, uint32(addr), word&0x7, "register %d", addr)
	}
}

func TestBuild_FractionalMode(t *testing.T) {
	f := referenceFields()
	f.IntN = 128
	f.FracN = 125
	f.LockDetectPrecision = 0
	f.LockDetectFunction = 0

	s := Build(f)

	assert.Equal(t, uint32(128<<15|125<<3), s[0])
	// LDP and LDF clear in fractional mode.
	assert.Zero(t, s[2]&(1<<7))
	assert.Zero(t, s[2]&(1<<8))
}

func TestBuild_FieldWidthMasking(t *testing.T) {
	f := referenceFields()
	f.FracN = 0xFFFF // wider than the 12-bit field
	f.RFDividerSelect = 0xFF

	s := Build(f)

	// FRAC must not spill into INT.
	assert.Equal(t, uint32(0xFFF), s[0]>>3&0xFFF)
	assert.Equal(t, uint32(160), s[0]>>15&0xFFFF)
	// Divider select must not spill into feedback select.
	assert.Equal(t, uint32(0x7), s[4]>>20&0x7)
	assert.Equal(t, uint32(1), s[4]>>23&0x1)
}

func TestBuild_RCounterPlacement(t *testing.T) {
	f := referenceFields()
	f.RCounter = 1023
	f.RefDiv2 = 1
	f.RefDoubler = 1

	s := Build(f)

	assert.Equal(t, uint32(1023), s[2]>>14&0x3FF)
	assert.Equal(t, uint32(1), s[2]>>24&0x1)
	assert.Equal(t, uint32(1), s[2]>>25&0x1)
}
