package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/berfenger/pzem2mqtt/pkg/pzem"

	"github.com/abiosoft/ishell"
	"go.uber.org/zap"
)

// Session holds the open bus. ishell runs commands one at a time, so the
// driver has a single user.
type Session struct {
	Serial      pzem.SerialConfig
	Address     uint8
	ByteTimeout time.Duration
	ResetAck    pzem.ResetAck
	Logger      *zap.Logger

	open   func(pzem.SerialConfig) (pzem.SerialPort, error)
	port   pzem.SerialPort
	driver *pzem.Driver
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Driver opens the port on first use.
func (s *Session) Driver() (*pzem.Driver, error) {
	if s.driver != nil {
		return s.driver, nil
	}
	cfg := s.Serial
	cfg.ByteTimeout = s.ByteTimeout
	port, err := s.open(cfg)
	if err != nil {
		return nil, err
	}
	s.port = port
	s.driver = pzem.New(port,
		pzem.WithByteTimeout(s.ByteTimeout),
		pzem.WithResetAck(s.ResetAck),
		pzem.WithLogger(s.Logger))
	return s.driver, nil
}

func (s *Session) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	s.driver = nil
	return err
}

// SetByteTimeout reopens the port, some serial drivers fix the timeout at open.
func (s *Session) SetByteTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	s.ByteTimeout = timeout
	return s.Close()
}

func (s *Session) address(args []string) (uint8, error) {
	if len(args) == 0 {
		return s.Address, nil
	}
	return parseAddress(args[0])
}

// parseAddress accepts decimal or 0x prefixed hex.
func parseAddress(arg string) (uint8, error) {
	v, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", arg)
	}
	addr := uint8(v)
	if err := pzem.ValidateAddress(addr); err != nil {
		return 0, err
	}
	return addr, nil
}

func (s *Session) Read(args []string) (pzem.Measurement, error) {
	addr, err := s.address(args)
	if err != nil {
		return pzem.Measurement{}, err
	}
	d, err := s.Driver()
	if err != nil {
		return pzem.Measurement{}, err
	}
	return d.Request(addr)
}

func (s *Session) Reset(args []string) error {
	addr, err := s.address(args)
	if err != nil {
		return err
	}
	d, err := s.Driver()
	if err != nil {
		return err
	}
	return d.Reset(addr)
}

func formatMeasurement(m pzem.Measurement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Voltage:      %.1f V\n", m.Voltage)
	fmt.Fprintf(&b, "Current:      %.3f A\n", m.Current)
	fmt.Fprintf(&b, "Power:        %.1f W\n", m.Power)
	fmt.Fprintf(&b, "Energy:       %.3f kWh\n", m.Energy)
	fmt.Fprintf(&b, "Frequency:    %.1f Hz\n", m.Frequency)
	fmt.Fprintf(&b, "Power factor: %.2f\n", m.PowerFactor)
	fmt.Fprintf(&b, "Alarm:        %t", m.AlarmActive())
	return b.String()
}

func (s *Session) Commands() []*ishell.Cmd {
	return []*ishell.Cmd{
		{
			Name:    "read",
			Aliases: []string{"r"},
			Help:    "[ADDR] read the measurement block",
			Func: func(c *ishell.Context) {
				m, err := s.Read(c.Args)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(formatMeasurement(m))
			},
		},
		{
			Name: "reset",
			Help: "[ADDR] reset the energy counter",
			Func: func(c *ishell.Context) {
				if err := s.Reset(c.Args); err != nil {
					c.Err(err)
					return
				}
				c.Println("energy counter reset")
			},
		},
		{
			Name: "timeout",
			Help: "MS set the per-byte receive timeout",
			Func: func(c *ishell.Context) {
				if len(c.Args) < 1 {
					c.Printf("byte timeout: %s\n", s.ByteTimeout)
					return
				}
				ms, err := strconv.ParseInt(c.Args[0], 10, 64)
				if err != nil {
					c.Err(fmt.Errorf("invalid MS: %v", err))
					return
				}
				if err := s.SetByteTimeout(msToDuration(ms)); err != nil {
					c.Err(err)
					return
				}
				c.Printf("byte timeout: %s\n", s.ByteTimeout)
			},
		},
	}
}
