package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adf4351"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()

	assert.Equal(t, 25.0, p.ReferenceMHz)
	assert.Equal(t, uint16(1), p.RCounter)
	assert.Equal(t, uint8(3), p.OutputPower)
	assert.False(t, p.OutputDisabled)
	assert.Equal(t, uint8(7), p.ChargePumpCurrent)
	assert.Equal(t, 0.01, p.SpacingMHz)
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := `reference_mhz: 10.0
r_counter: 2
ref_doubler: true
frequency_mhz: 433.92
spacing_mhz: 0.025
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, 10.0, p.ReferenceMHz)
	assert.Equal(t, uint16(2), p.RCounter)
	assert.True(t, p.RefDoubler)
	assert.Equal(t, 433.92, p.FrequencyMHz)
	assert.Equal(t, 0.025, p.SpacingMHz)
	// Unset keys keep their defaults.
	assert.Equal(t, uint8(3), p.OutputPower)
}

func TestLoadProfile_Missing(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewSynthesizer_AppliesProfile(t *testing.T) {
	p := DefaultProfile()
	p.ReferenceMHz = 10.0
	p.RefDoubler = true
	p.OutputPower = 9 // clamped by the library
	p.OutputDisabled = true

	sink := &adf4351.CaptureSink{}
	syn := newSynthesizer(p, sink, testLogger())

	assert.Equal(t, 20.0, syn.PFDFrequency())
	cfg := syn.Config()
	assert.Equal(t, uint8(3), cfg.OutputPower)
	assert.False(t, cfg.RFOutputEnable)
}

func TestRunDump(t *testing.T) {
	p := DefaultProfile()
	p.FrequencyMHz = 1000.0

	var out bytes.Buffer
	require.NoError(t, runDump(p, &out, testLogger()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 7) // header plus six registers

	assert.Contains(t, out.String(), "R5 = ")
	assert.Contains(t, out.String(), "R0 = 0x00500000")
	// Latch order: R5 printed first, R0 last.
	assert.True(t, strings.HasPrefix(lines[1], "R5"))
	assert.True(t, strings.HasPrefix(lines[6], "R0"))
}

func TestRunDump_InvalidFrequency(t *testing.T) {
	p := DefaultProfile() // FrequencyMHz zero

	var out bytes.Buffer
	err := runDump(p, &out, testLogger())
	assert.ErrorIs(t, err, adf4351.ErrFrequencyRange)
}
