package adf4351

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// RegisterSink receives one 32-bit register word at a time and performs
// the physical write to the chip.
type RegisterSink interface {
	WriteRegister(word uint32) error
}

// Electrical contract of the chip's serial interface.
const (
	// spiClockFreq stays under the chip's 20 MHz serial clock limit.
	spiClockFreq = 10 * physic.MegaHertz

	// latchSettleTime is the minimum idle time after raising LE before
	// the next register write may begin.
	latchSettleTime = 5 * time.Microsecond
)

// SPISink writes register words over an SPI bus with a dedicated latch
// enable (LE) line. A word is transmitted with LE low, 4 bytes MSB first;
// the rising edge of LE latches it into the chip, followed by the
// mandatory settle time.
type SPISink struct {
	conn   spi.Conn
	le     gpio.PinOut
	logger *logrus.Logger
}

// NewSPISink connects to the SPI port (mode 0, 8-bit words) and parks the
// LE line high, ready for the first transfer.
func NewSPISink(port spi.Port, le gpio.PinOut, logger *logrus.Logger) (*SPISink, error) {
	if logger == nil {
		logger = logrus.New()
	}

	conn, err := port.Connect(spiClockFreq, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("failed to connect SPI port: %w", err)
	}
	if err := le.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("failed to initialize LE pin: %w", err)
	}

	return &SPISink{conn: conn, le: le, logger: logger}, nil
}

// WriteRegister performs one complete latch transaction for a register word.
func (s *SPISink) WriteRegister(word uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], word)

	if err := s.le.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to assert LE: %w", err)
	}
	if err := s.conn.Tx(buf[:], nil); err != nil {
		// Leave LE where the chip can't latch a partial word.
		_ = s.le.Out(gpio.High)
		return fmt.Errorf("SPI transfer failed: %w", err)
	}
	if err := s.le.Out(gpio.High); err != nil {
		return fmt.Errorf("failed to latch LE: %w", err)
	}
	time.Sleep(latchSettleTime)

	s.logger.WithFields(logrus.Fields{
		"word": fmt.Sprintf("0x%08X", word),
	}).Debug("Register word written")
	return nil
}

// CaptureSink records register words in write order instead of touching
// hardware. It backs tests and the register dump tooling.
type CaptureSink struct {
	Words []uint32
}

// WriteRegister appends the word to the capture buffer.
func (c *CaptureSink) WriteRegister(word uint32) error {
	c.Words = append(c.Words, word)
	return nil
}

// Reset clears the capture buffer.
func (c *CaptureSink) Reset() {
	c.Words = c.Words[:0]
}
