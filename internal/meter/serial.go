package meter

import (
	"github.com/berfenger/pzem2mqtt/internal/config"
	"github.com/berfenger/pzem2mqtt/pkg/pzem"

	"go.uber.org/zap"
)

// SerialReader drives the meter directly over a UART.
type SerialReader struct {
	serial  pzem.SerialConfig
	address uint8
	opts    []pzem.Option
	open    func(pzem.SerialConfig) (pzem.SerialPort, error)

	port       pzem.SerialPort
	driver     *pzem.Driver
	instrument []Instrument
}

func NewSerialReader(cfg config.MeterConfig, logger *zap.Logger, instrumentation *Instrument) (*SerialReader, error) {
	ack, err := pzem.ParseResetAck(cfg.ResetAck)
	if err != nil {
		return nil, err
	}
	if err := pzem.ValidateAddress(cfg.Address); err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("target", "serial"), zap.Uint8("meter", cfg.Address))
	return &SerialReader{
		serial: pzem.SerialConfig{
			Device:      cfg.Serial.Device,
			BaudRate:    cfg.Serial.BaudRate,
			Driver:      cfg.Serial.Driver,
			ByteTimeout: cfg.ByteTimeout(),
		},
		address: cfg.Address,
		opts: []pzem.Option{
			pzem.WithByteTimeout(cfg.ByteTimeout()),
			pzem.WithResetAck(ack),
			pzem.WithLogger(logger),
		},
		open:       pzem.OpenSerial,
		instrument: instruments(logger, instrumentation),
	}, nil
}

func (r *SerialReader) Open() error {
	defer RecordTimer("Open", r.instrument)()
	port, err := r.open(r.serial)
	if err != nil {
		return err
	}
	r.port = port
	r.driver = pzem.New(port, r.opts...)
	return nil
}

func (r *SerialReader) Close() error {
	if r.port == nil {
		return nil
	}
	err := r.port.Close()
	r.port = nil
	r.driver = nil
	return err
}

func (r *SerialReader) Read() (*pzem.Measurement, error) {
	if r.driver == nil {
		return nil, ErrNotOpen
	}
	defer RecordTimer("Read", r.instrument)()
	m, err := r.driver.Request(r.address)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *SerialReader) ResetEnergy() error {
	if r.driver == nil {
		return ErrNotOpen
	}
	defer RecordTimer("ResetEnergy", r.instrument)()
	return r.driver.Reset(r.address)
}

func (r *SerialReader) Info() Info {
	return Info{
		Transport: config.TransportSerial,
		Address:   r.address,
		Endpoint:  r.serial.Device,
	}
}
