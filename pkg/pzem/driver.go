package pzem

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ResetAck selects how a reset-energy response is judged.
type ResetAck int

const (
	// ResetAckLegacy succeeds when the checksum-valid response length is
	// neither 0 nor 5 bytes. This is what deployed firmware does; a meter
	// echoes the 4-byte command on success and answers with a 5-byte
	// exception frame on failure.
	ResetAckLegacy ResetAck = iota

	// ResetAckEcho succeeds only on a checksum-valid 4-byte echo of the command.
	ResetAckEcho

	// ResetAckFull succeeds only on a checksum-valid 5-byte response.
	ResetAckFull
)

func (a ResetAck) String() string {
	switch a {
	case ResetAckLegacy:
		return "legacy"
	case ResetAckEcho:
		return "echo"
	case ResetAckFull:
		return "full"
	default:
		return fmt.Sprintf("ResetAck(%d)", int(a))
	}
}

// ParseResetAck maps a configuration value to a ResetAck.
func ParseResetAck(s string) (ResetAck, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return ResetAckLegacy, nil
	case "echo":
		return ResetAckEcho, nil
	case "full":
		return ResetAckFull, nil
	}
	return ResetAckLegacy, fmt.Errorf("%w: unknown reset acknowledgement %q", ErrInvalidInput, s)
}

func (a ResetAck) check(resp []byte, addr byte) error {
	switch a {
	case ResetAckEcho:
		if len(resp) < ResetFrameSize {
			return ErrTruncatedFrame
		}
		if !VerifyChecksum(resp) {
			return ErrChecksumMismatch
		}
		if len(resp) != ResetFrameSize || resp[0] != addr || resp[1] != CmdResetEnergy {
			return ErrResetRejected
		}
		return nil
	case ResetAckFull:
		return ValidateFrame(resp, ResetResponseSize)
	default:
		if len(resp) <= checksumSize {
			return ErrTruncatedFrame
		}
		if !VerifyChecksum(resp) {
			return ErrChecksumMismatch
		}
		if len(resp) == ResetResponseSize {
			return ErrResetRejected
		}
		return nil
	}
}

// Config holds the driver configuration.
type Config struct {
	// ByteTimeout bounds each single-byte read
	ByteTimeout time.Duration

	// ResetAck is the acceptance rule for reset responses
	ResetAck ResetAck

	Logger *zap.Logger
}

func defaultConfig() Config {
	return Config{
		ByteTimeout: DefaultByteTimeout,
		ResetAck:    ResetAckLegacy,
		Logger:      zap.NewNop(),
	}
}

// Option is a functional option for configuring the Driver.
type Option func(*Config)

// WithByteTimeout sets the per-byte receive timeout.
func WithByteTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ByteTimeout = timeout
		}
	}
}

// WithResetAck sets the reset acknowledgement rule.
func WithResetAck(ack ResetAck) Option {
	return func(c *Config) {
		c.ResetAck = ack
	}
}

// WithLogger sets the logger. Frames are dumped at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// Driver talks to meters on one serial bus. It keeps no state between calls
// and does no locking: only one exchange may be in flight on a bus.
type Driver struct {
	port   Port
	config Config
	logger *zap.Logger
}

// inputResetter is implemented by ports that can discard unread input.
type inputResetter interface {
	ResetInputBuffer() error
}

// New creates a Driver on port.
func New(port Port, opts ...Option) *Driver {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Driver{
		port:   port,
		config: cfg,
		logger: cfg.Logger.With(zap.String("component", "pzem")),
	}
}

// ByteTimeout returns the per-byte receive timeout in use.
func (d *Driver) ByteTimeout() time.Duration {
	return d.config.ByteTimeout
}

// Request reads the measurement block of the meter at addr. On any failure no
// Measurement is produced.
func (d *Driver) Request(addr byte) (Measurement, error) {
	const op = "request"

	if err := ValidateAddress(addr); err != nil {
		return Measurement{}, &FrameError{Op: op, Addr: addr, Expected: MeasurementResponseSize, Err: err}
	}

	resp, err := d.exchange(EncodeReadMeasurement(addr), MeasurementResponseSize)
	if err != nil {
		return Measurement{}, &FrameError{Op: op, Addr: addr, Expected: MeasurementResponseSize, Received: len(resp), Err: err}
	}

	if err := ValidateFrame(resp, MeasurementResponseSize); err != nil {
		d.logger.Debug("pzem@request rejected", zap.Uint8("addr", addr), zap.Int("received", len(resp)), zap.Error(err))
		return Measurement{}, &FrameError{Op: op, Addr: addr, Expected: MeasurementResponseSize, Received: len(resp), Err: err}
	}

	if resp[1] != CmdReadInputRegisters || resp[2] != MeasurementPayloadSize {
		d.logger.Debug("pzem@request unexpected frame", zap.Uint8("addr", addr), zap.Uint8("function", resp[1]), zap.Uint8("count", resp[2]))
		return Measurement{}, &FrameError{Op: op, Addr: addr, Expected: MeasurementResponseSize, Received: len(resp), Err: ErrUnexpectedFrame}
	}

	m, err := DecodeMeasurement(resp)
	if err != nil {
		return Measurement{}, &FrameError{Op: op, Addr: addr, Expected: MeasurementResponseSize, Received: len(resp), Err: err}
	}

	d.logger.Debug("pzem@request decoded",
		zap.Uint8("addr", addr),
		zap.Float64("voltage", m.Voltage),
		zap.Float64("current", m.Current),
		zap.Float64("frequency", m.Frequency),
		zap.Float64("power", m.Power),
		zap.Float64("energy", m.Energy),
		zap.Float64("pf", m.PowerFactor),
		zap.Uint16("alarms", m.Alarms),
	)
	return m, nil
}

// Reset clears the energy counter of the meter at addr. Success is judged by
// the configured ResetAck.
func (d *Driver) Reset(addr byte) error {
	const op = "reset"

	if err := ValidateAddress(addr); err != nil {
		return &FrameError{Op: op, Addr: addr, Expected: ResetResponseSize, Err: err}
	}

	resp, err := d.exchange(EncodeResetEnergy(addr), ResetResponseSize)
	if err != nil {
		return &FrameError{Op: op, Addr: addr, Expected: ResetResponseSize, Received: len(resp), Err: err}
	}

	if err := d.config.ResetAck.check(resp, addr); err != nil {
		d.logger.Error("pzem@reset failed",
			zap.Uint8("addr", addr),
			zap.Stringer("ack", d.config.ResetAck),
			zap.Int("received", len(resp)),
			zap.Error(err))
		return &FrameError{Op: op, Addr: addr, Expected: ResetResponseSize, Received: len(resp), Err: err}
	}
	return nil
}

// exchange transmits a command and receives up to expected bytes.
func (d *Driver) exchange(frame []byte, expected int) ([]byte, error) {
	if r, ok := d.port.(inputResetter); ok {
		if err := r.ResetInputBuffer(); err != nil {
			d.logger.Warn("pzem: could not discard stale input", zap.Error(err))
		}
	}

	n, err := d.port.Write(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrTransport, err)
	}
	if n != len(frame) {
		return nil, fmt.Errorf("%w: short write %d of %d bytes", ErrTransport, n, len(frame))
	}
	d.logger.Debug("pzem sent", zap.String("frame", fmt.Sprintf("% x", frame)))

	resp, err := ReadFrame(d.port, expected, d.config.ByteTimeout)
	d.logger.Debug("pzem recv", zap.String("frame", fmt.Sprintf("% x", resp)), zap.Int("expected", expected))
	return resp, err
}
