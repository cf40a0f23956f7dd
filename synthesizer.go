// Package adf4351 programs the Analog Devices ADF4351 wideband frequency
// synthesizer. It translates a requested RF output frequency into the six
// 32-bit register words the chip expects and hands them to a RegisterSink
// for the physical write.
//
// A Synthesizer is not safe for concurrent use; callers drive one instance
// per chip from a single goroutine (or serialize access themselves).
package adf4351

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"adf4351/internal/registers"
	"adf4351/internal/synth"
)

// Default configuration, matching the chip's typical evaluation setup.
const (
	DefaultReferenceFreqMHz  = 25.0
	DefaultChannelSpacingMHz = 0.01
	DefaultOutputPower       = 3 // +5 dBm
	DefaultChargePumpCurrent = 7 // 2.50 mA with 5.1k Rset
)

// Output power and charge pump current limits.
const (
	maxOutputPower       = 3
	maxChargePumpCurrent = 15
	maxRCounter          = 1023
)

// Synthesis failure taxonomy. All other setters clamp out-of-range input
// instead of failing.
var (
	// ErrFrequencyRange reports a requested output frequency outside the
	// chip's 35-4400 MHz range.
	ErrFrequencyRange = errors.New("adf4351: output frequency outside 35-4400 MHz")

	// ErrVCORange reports a computed VCO frequency outside 2200-4400 MHz.
	// Unreachable while the divider table and frequency bounds agree, but
	// checked defensively before any register is written.
	ErrVCORange = synth.ErrVCORange
)

// Config holds the reference chain and output stage settings that survive
// across frequency changes.
type Config struct {
	ReferenceFreqMHz  float64
	RCounter          uint16 // 1-1023 reference divider
	RefDoubler        bool
	RefDiv2           bool
	OutputPower       uint8 // 0-3, -4 to +5 dBm in 3 dB steps
	RFOutputEnable    bool
	ChargePumpCurrent uint8 // 0-15
}

// Synthesizer owns the configuration for one ADF4351 and emits register
// sets to its sink. Register emission is all-or-nothing per frequency
// change: on any failure the chip's previously programmed state is left
// untouched.
type Synthesizer struct {
	sink   RegisterSink
	logger *logrus.Logger

	config        Config
	pfdFreqMHz    float64
	outputFreqMHz float64
}

// New creates a Synthesizer with the default 25 MHz reference and the
// output stage defaults (power +5 dBm, RF output enabled, charge pump
// code 7). The sink performs the physical register writes.
func New(sink RegisterSink, logger *logrus.Logger) *Synthesizer {
	if logger == nil {
		logger = logrus.New()
	}

	s := &Synthesizer{
		sink:   sink,
		logger: logger,
		config: Config{
			ReferenceFreqMHz:  DefaultReferenceFreqMHz,
			RCounter:          1,
			OutputPower:       DefaultOutputPower,
			RFOutputEnable:    true,
			ChargePumpCurrent: DefaultChargePumpCurrent,
		},
	}
	s.recomputePFD()
	return s
}

// Initialize sets the reference input frequency, keeping the default
// reference chain (R counter 1, no doubler, no divide-by-2).
func (s *Synthesizer) Initialize(referenceFreqMHz float64) {
	s.SetReference(referenceFreqMHz, 1, false, false)
}

// SetReference updates the reference chain and recomputes the phase
// detector frequency. rCounter is clamped to the valid 1-1023 range.
// The new reference takes effect on the next SetFrequency call.
func (s *Synthesizer) SetReference(referenceFreqMHz float64, rCounter uint16, doubler, div2 bool) {
	if rCounter < 1 {
		rCounter = 1
	}
	if rCounter > maxRCounter {
		rCounter = maxRCounter
	}
	s.config.ReferenceFreqMHz = referenceFreqMHz
	s.config.RCounter = rCounter
	s.config.RefDoubler = doubler
	s.config.RefDiv2 = div2
	s.recomputePFD()

	s.logger.WithFields(logrus.Fields{
		"reference_mhz": referenceFreqMHz,
		"r_counter":     rCounter,
		"doubler":       doubler,
		"div2":          div2,
		"pfd_mhz":       s.pfdFreqMHz,
	}).Debug("Reference chain updated")
}

// recomputePFD derives the phase detector frequency from the reference
// chain: ref * (1 + doubler) / (rCounter * (1 + div2)).
func (s *Synthesizer) recomputePFD() {
	pfd := s.config.ReferenceFreqMHz
	if s.config.RefDoubler {
		pfd *= 2
	}
	pfd /= float64(s.config.RCounter)
	if s.config.RefDiv2 {
		pfd /= 2
	}
	s.pfdFreqMHz = pfd
}

// SetFrequency programs the chip for the requested output frequency at the
// given channel spacing. On success the stored output frequency is updated;
// on any failure nothing is written and the previous state is kept.
func (s *Synthesizer) SetFrequency(freqMHz, channelSpacingMHz float64) error {
	if freqMHz < synth.MinOutputFreqMHz || freqMHz > synth.MaxOutputFreqMHz {
		return fmt.Errorf("%w: %.6f MHz", ErrFrequencyRange, freqMHz)
	}

	choice := synth.SelectOutputDivider(freqMHz)
	plan, err := synth.PlanFrequency(freqMHz*float64(choice.Divider), s.pfdFreqMHz, channelSpacingMHz)
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"freq_mhz":    freqMHz,
		"spacing_mhz": channelSpacingMHz,
		"divider":     choice.Divider,
		"vco_mhz":     plan.VCOFreqMHz,
		"int_n":       plan.IntN,
		"frac_n":      plan.FracN,
		"mod":         plan.Mod,
		"integer_n":   plan.IntegerN(),
	}).Debug("Synthesis plan computed")

	set := registers.Build(registers.Fields{
		IntN:                plan.IntN,
		FracN:               plan.FracN,
		Mod:                 plan.Mod,
		Prescaler:           plan.Prescaler,
		LockDetectPrecision: plan.LockDetectPrecision,
		LockDetectFunction:  plan.LockDetectFunction,
		ChargePumpCurrent:   s.config.ChargePumpCurrent,
		RCounter:            s.config.RCounter,
		RefDiv2:             boolBit(s.config.RefDiv2),
		RefDoubler:          boolBit(s.config.RefDoubler),
		OutputPower:         s.config.OutputPower,
		RFOutputEnable:      boolBit(s.config.RFOutputEnable),
		RFDividerSelect:     choice.SelectCode,
	})

	if err := s.emit(set); err != nil {
		return err
	}

	s.outputFreqMHz = freqMHz
	return nil
}

// emit writes the register set highest address first. Register 0 goes last
// because its write latches the new frequency into the chip.
func (s *Synthesizer) emit(set registers.Set) error {
	for addr := len(set) - 1; addr >= 0; addr-- {
		if err := s.sink.WriteRegister(set[addr]); err != nil {
			return fmt.Errorf("write register %d: %w", addr, err)
		}
	}
	return nil
}

// SetOutputPower sets the RF output power level 0-3 (-4 to +5 dBm).
// Out-of-range values are clamped.
func (s *Synthesizer) SetOutputPower(level uint8) {
	if level > maxOutputPower {
		level = maxOutputPower
	}
	s.config.OutputPower = level
}

// EnableOutput enables or disables the main RF output stage.
func (s *Synthesizer) EnableOutput(enable bool) {
	s.config.RFOutputEnable = enable
}

// SetChargePumpCurrent sets the charge pump current code 0-15.
// Out-of-range values are clamped.
func (s *Synthesizer) SetChargePumpCurrent(code uint8) {
	if code > maxChargePumpCurrent {
		code = maxChargePumpCurrent
	}
	s.config.ChargePumpCurrent = code
}

// Frequency returns the last successfully programmed output frequency in
// MHz, or zero if none has been set.
func (s *Synthesizer) Frequency() float64 {
	return s.outputFreqMHz
}

// PFDFrequency returns the current phase detector frequency in MHz.
func (s *Synthesizer) PFDFrequency() float64 {
	return s.pfdFreqMHz
}

// Config returns a copy of the current configuration.
func (s *Synthesizer) Config() Config {
	return s.config
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
