package meter

import (
	"fmt"

	"github.com/berfenger/pzem2mqtt/internal/config"
	"github.com/berfenger/pzem2mqtt/pkg/pzem"

	"github.com/simonvetter/modbus"
	"go.uber.org/zap"
)

// GatewayReader reads the meter through a generic Modbus master: an RTU
// over TCP gateway, a local RTU port owned by the modbus library or a
// Modbus/TCP bridge. Only standard function codes can be issued this way.
type GatewayReader struct {
	client     *modbus.ModbusClient
	url        string
	address    uint8
	instrument []Instrument
}

func NewGatewayReader(cfg config.MeterConfig, logger *zap.Logger, instrumentation *Instrument) (*GatewayReader, error) {
	if err := pzem.ValidateAddress(cfg.Address); err != nil {
		return nil, err
	}
	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:      cfg.Gateway.URL,
		Speed:    pzem.DefaultBaudRate,
		DataBits: pzem.DataBits,
		Parity:   modbus.PARITY_NONE,
		StopBits: 1,
		Timeout:  cfg.Gateway.Timeout(),
	})
	if err != nil {
		return nil, err
	}
	// set meter address
	err = client.SetUnitId(cfg.Address)
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("target", "gateway"), zap.Uint8("meter", cfg.Address))
	return &GatewayReader{
		client:     client,
		url:        cfg.Gateway.URL,
		address:    cfg.Address,
		instrument: instruments(logger, instrumentation),
	}, nil
}

func (r *GatewayReader) Open() error {
	return r.client.Open()
}

func (r *GatewayReader) Close() error {
	return r.client.Close()
}

func (r *GatewayReader) Read() (*pzem.Measurement, error) {
	defer RecordTimer("ReadRegisters", r.instrument)()
	regs, err := r.client.ReadRegisters(pzem.RegVoltage, pzem.MeasurementRegisterCount, modbus.INPUT_REGISTER)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pzem.ErrTransport, err)
	}
	m, err := pzem.DecodeRegisters(regs)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GatewayReader) ResetEnergy() error {
	return ErrResetUnsupported
}

func (r *GatewayReader) Info() Info {
	return Info{
		Transport: config.TransportGateway,
		Address:   r.address,
		Endpoint:  r.url,
	}
}
