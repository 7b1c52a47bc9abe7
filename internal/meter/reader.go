package meter

import (
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/pzem2mqtt/internal/config"
	"github.com/berfenger/pzem2mqtt/pkg/pzem"

	"go.uber.org/zap"
)

var (
	// ErrResetUnsupported is returned by readers whose transport cannot emit
	// the vendor reset command.
	ErrResetUnsupported = errors.New("energy reset not supported by this transport")

	ErrNotOpen = errors.New("meter reader is not open")
)

type Info struct {
	Transport string
	Address   uint8
	// Endpoint is the serial device or gateway URL
	Endpoint string
}

// Reader is a single meter on a single bus. Implementations are not safe for
// concurrent use, the meter actor owns them.
type Reader interface {
	Open() error
	Close() error
	Read() (*pzem.Measurement, error)
	ResetEnergy() error
	Info() Info
}

type Instrument struct {
	RecordTime func(fnName string, readTime time.Duration)
}

func RecordTimer(name string, instrument []Instrument) func() {
	if instrument == nil {
		return func() {}
	}

	start := time.Now()
	return func() {
		duration := time.Since(start)
		for i := range instrument {
			instrument[i].RecordTime(name, duration)
		}
	}
}

func traceLoggerInstrumentation(logger *zap.Logger) *Instrument {
	return &Instrument{
		RecordTime: func(fnName string, readTime time.Duration) {
			logger.Debug(fmt.Sprintf("meter [%s]: %d millis", fnName, readTime.Milliseconds()))
		},
	}
}

func instruments(logger *zap.Logger, instrumentation *Instrument) []Instrument {
	var inst []Instrument
	if logInst := traceLoggerInstrumentation(logger); logInst != nil {
		inst = append(inst, *logInst)
	}
	if instrumentation != nil {
		inst = append(inst, *instrumentation)
	}
	return inst
}

// NewReaderFromConfig builds the reader selected by meter.transport.
func NewReaderFromConfig(cfg config.MeterConfig, logger *zap.Logger, instrumentation *Instrument) (Reader, error) {
	switch cfg.Transport {
	case config.TransportSerial:
		return NewSerialReader(cfg, logger, instrumentation)
	case config.TransportGateway:
		return NewGatewayReader(cfg, logger, instrumentation)
	case config.TransportTest:
		return NewTestReader(cfg.Address), nil
	}
	return nil, fmt.Errorf("unknown meter transport %q", cfg.Transport)
}
