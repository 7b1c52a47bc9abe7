package meter

import (
	"errors"
	"sync/atomic"

	"github.com/berfenger/pzem2mqtt/internal/config"
	"github.com/berfenger/pzem2mqtt/pkg/pzem"
)

var errTestReaderFailing = errors.New("test reader: meter not answering")

// TestReader returns a fixed reading. It never touches a bus.
type TestReader struct {
	address uint8
	failing atomic.Bool
	energy  atomic.Uint64
	resets  atomic.Int32
}

func NewTestReader(address uint8) *TestReader {
	r := &TestReader{address: address}
	r.energy.Store(655360000)
	return r
}

// SetFailing makes subsequent calls fail like a silent bus.
func (r *TestReader) SetFailing(failing bool) {
	r.failing.Store(failing)
}

func (r *TestReader) Resets() int {
	return int(r.resets.Load())
}

func (r *TestReader) Open() error {
	return nil
}

func (r *TestReader) Close() error {
	return nil
}

func (r *TestReader) Read() (*pzem.Measurement, error) {
	if r.failing.Load() {
		return nil, &pzem.FrameError{Op: "request", Addr: r.address, Expected: pzem.MeasurementResponseSize, Err: pzem.ErrTruncatedFrame}
	}
	return &pzem.Measurement{
		Voltage:     225.0,
		Current:     0.001,
		Power:       10.0,
		Energy:      float64(r.energy.Load()) / 1000.0,
		Frequency:   31.2,
		PowerFactor: 1.0,
	}, nil
}

func (r *TestReader) ResetEnergy() error {
	if r.failing.Load() {
		return errTestReaderFailing
	}
	r.energy.Store(0)
	r.resets.Add(1)
	return nil
}

func (r *TestReader) Info() Info {
	return Info{
		Transport: config.TransportTest,
		Address:   r.address,
		Endpoint:  "test",
	}
}
