// Package registers packs ADF4351 configuration into the six 32-bit
// register words defined by the datasheet latch map. The bit layout is
// expressed as a table of named fields so each line can be checked against
// the datasheet directly instead of auditing shift expressions.
package registers

// Count is the number of registers in a full latch sequence.
const Count = 6

// Set is a full latch sequence, indexed by register address 0-5. The low
// 3 bits of every word carry the register's own address for chip-side
// routing; register 0 must be written last because it triggers the
// frequency update.
type Set [Count]uint32

// Fields is everything the builder needs from the synthesizer state and
// the synthesis plan. Values wider than their target field are masked.
type Fields struct {
	IntN                uint16
	FracN               uint16
	Mod                 uint16
	Prescaler           uint8
	LockDetectPrecision uint8
	LockDetectFunction  uint8
	ChargePumpCurrent   uint8
	RCounter            uint16
	RefDiv2             uint8
	RefDoubler          uint8
	OutputPower         uint8
	RFOutputEnable      uint8
	RFDividerSelect     uint8
}

// field is one named bitfield in the register map.
type field struct {
	reg   uint8
	shift uint8
	width uint8
}

// ADF4351 register map. Offsets and widths per the datasheet; only the
// fields this driver programs to non-address values are listed.
var (
	fieldIntN  = field{0, 15, 16}
	fieldFracN = field{0, 3, 12}

	fieldMod         = field{1, 3, 12}
	fieldPhaseAdjust = field{1, 15, 1}
	fieldPrescaler   = field{1, 27, 1}

	fieldCounterReset = field{2, 3, 1}
	fieldCPThreeState = field{2, 4, 1}
	fieldPowerDown    = field{2, 5, 1}
	fieldPDPolarity   = field{2, 6, 1}
	fieldLDP          = field{2, 7, 1}
	fieldLDF          = field{2, 8, 1}
	fieldChargePump   = field{2, 9, 4}
	fieldDoubleBuffer = field{2, 13, 1}
	fieldRCounter     = field{2, 14, 10}
	fieldRefDiv2      = field{2, 24, 1}
	fieldRefDoubler   = field{2, 25, 1}
	fieldMuxout       = field{2, 26, 3}
	fieldLowNoiseSpur = field{2, 29, 2}

	fieldClockDivider   = field{3, 3, 12}
	fieldClockDivMode   = field{3, 15, 2}
	fieldCSR            = field{3, 18, 1}
	fieldChargeCancel   = field{3, 21, 1}
	fieldAntiBacklash   = field{3, 22, 1}
	fieldBandSelectMode = field{3, 23, 1}

	fieldOutputPower   = field{4, 3, 2}
	fieldRFEnable      = field{4, 5, 1}
	fieldAuxPower      = field{4, 6, 2}
	fieldAuxEnable     = field{4, 8, 1}
	fieldAuxSelect     = field{4, 9, 1}
	fieldMuteTillLock  = field{4, 10, 1}
	fieldVCOPowerDown  = field{4, 11, 1}
	fieldBandSelectDiv = field{4, 12, 8}
	fieldRFDivSelect   = field{4, 20, 3}
	fieldFeedbackSel   = field{4, 23, 1}

	fieldReserved19 = field{5, 19, 2}
	fieldReserved21 = field{5, 21, 1}
	fieldLDPinMode  = field{5, 22, 1}
)

// Fixed values that never change with configuration.
const (
	pdPolarityPositive = 1
	clockDividerValue  = 150 // phase resync / fast-lock timeout
	bandSelectClockDiv = 200 // keeps band select clock in the 125-500 kHz window
	reserved19Value    = 0x3 // datasheet: bits 19-20 of R5 must be 11
	ldPinDigitalLock   = 1   // LD pin reports digital lock detect
)

// feedbackSelectFundamental keeps the N counter fed from the VCO
// fundamental even when the output divider is active.
//
// TODO: the original programmed 1 for both the divided and undivided
// cases; confirm against the datasheet feedback mux description whether
// divided feedback is ever wanted here before exposing this as an option.
const feedbackSelectFundamental = 1

// set ORs a value into its field, masked to the field width.
func (s *Set) set(f field, value uint32) {
	mask := uint32(1)<<f.width - 1
	s[f.reg] |= (value & mask) << f.shift
}

// Build packs the fields into a complete register set. Every word already
// carries its 3-bit register address.
func Build(f Fields) Set {
	var s Set
	for addr := range s {
		s[addr] = uint32(addr)
	}

	// R0: frequency setting
	s.set(fieldIntN, uint32(f.IntN))
	s.set(fieldFracN, uint32(f.FracN))

	// R1: modulus, phase, prescaler
	s.set(fieldMod, uint32(f.Mod))
	s.set(fieldPhaseAdjust, 1)
	s.set(fieldPrescaler, uint32(f.Prescaler))

	// R2: reference chain and phase detector
	s.set(fieldCounterReset, 0)
	s.set(fieldCPThreeState, 0)
	s.set(fieldPowerDown, 0)
	s.set(fieldPDPolarity, pdPolarityPositive)
	s.set(fieldLDP, uint32(f.LockDetectPrecision))
	s.set(fieldLDF, uint32(f.LockDetectFunction))
	s.set(fieldChargePump, uint32(f.ChargePumpCurrent))
	s.set(fieldDoubleBuffer, 0)
	s.set(fieldRCounter, uint32(f.RCounter))
	s.set(fieldRefDiv2, uint32(f.RefDiv2))
	s.set(fieldRefDoubler, uint32(f.RefDoubler))
	s.set(fieldMuxout, 0)
	s.set(fieldLowNoiseSpur, 0)

	// R3: clock divider defaults
	s.set(fieldClockDivider, clockDividerValue)
	s.set(fieldClockDivMode, 0)
	s.set(fieldCSR, 0)
	s.set(fieldChargeCancel, 0)
	s.set(fieldAntiBacklash, 0)
	s.set(fieldBandSelectMode, 0)

	// R4: output stage
	s.set(fieldOutputPower, uint32(f.OutputPower))
	s.set(fieldRFEnable, uint32(f.RFOutputEnable))
	s.set(fieldAuxPower, 0)
	s.set(fieldAuxEnable, 0)
	s.set(fieldAuxSelect, 0)
	s.set(fieldMuteTillLock, 0)
	s.set(fieldVCOPowerDown, 0)
	s.set(fieldBandSelectDiv, bandSelectClockDiv)
	s.set(fieldRFDivSelect, uint32(f.RFDividerSelect))
	s.set(fieldFeedbackSel, feedbackSelectFundamental)

	// R5: lock detect pin and reserved bits
	s.set(fieldReserved19, reserved19Value)
	s.set(fieldReserved21, 0)
	s.set(fieldLDPinMode, ldPinDigitalLock)

	return s
}
