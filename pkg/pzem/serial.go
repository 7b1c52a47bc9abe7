package pzem

import (
	"fmt"
	"io"
	"time"

	tarm "github.com/tarm/serial"
	bugst "go.bug.st/serial"
)

// Serial drivers selectable through SerialConfig.Driver.
const (
	SerialDriverBugst = "bugst"
	SerialDriverTarm  = "tarm"
)

// SerialConfig describes how to open the UART. Line format is always 8N1
// without flow control.
type SerialConfig struct {
	Device      string
	BaudRate    int
	Driver      string
	ByteTimeout time.Duration
}

// SerialPort is an open serial line usable by a Driver.
type SerialPort interface {
	Port
	io.Closer
}

// OpenSerial opens the configured device.
func OpenSerial(cfg SerialConfig) (SerialPort, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("%w: serial device not set", ErrInvalidInput)
	}
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.ByteTimeout <= 0 {
		cfg.ByteTimeout = DefaultByteTimeout
	}

	switch cfg.Driver {
	case "", SerialDriverBugst:
		port, err := bugst.Open(cfg.Device, &bugst.Mode{
			BaudRate: cfg.BaudRate,
			DataBits: DataBits,
			Parity:   bugst.NoParity,
			StopBits: bugst.OneStopBit,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrTransport, cfg.Device, err)
		}
		if err := port.SetReadTimeout(cfg.ByteTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("%w: set read timeout: %v", ErrTransport, err)
		}
		return port, nil
	case SerialDriverTarm:
		port, err := tarm.OpenPort(&tarm.Config{
			Name:        cfg.Device,
			Baud:        cfg.BaudRate,
			ReadTimeout: cfg.ByteTimeout,
			Size:        DataBits,
			Parity:      tarm.ParityNone,
			StopBits:    tarm.Stop1,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrTransport, cfg.Device, err)
		}
		return &tarmPort{Port: port, timeout: cfg.ByteTimeout}, nil
	default:
		return nil, fmt.Errorf("%w: unknown serial driver %q", ErrInvalidInput, cfg.Driver)
	}
}

// tarmPort adapts tarm/serial, whose read timeout is fixed when the port is
// opened.
type tarmPort struct {
	*tarm.Port
	timeout time.Duration
}

func (p *tarmPort) SetReadTimeout(t time.Duration) error {
	if t != p.timeout {
		return fmt.Errorf("read timeout fixed at %s, cannot use %s", p.timeout, t)
	}
	return nil
}

func (p *tarmPort) ResetInputBuffer() error {
	return p.Flush()
}
