package pzem

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedFrame means fewer bytes arrived than the command's fixed
	// response length before the bus went silent.
	ErrTruncatedFrame = errors.New("truncated frame")

	// ErrChecksumMismatch means a full-length frame arrived but its CRC is wrong.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrInvalidInput means an argument was rejected before anything was sent.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLengthMismatch means a frame is longer than the command's fixed
	// response length.
	ErrLengthMismatch = errors.New("frame length mismatch")

	// ErrUnexpectedFrame means a checksum-valid response carries a function
	// code or byte count that does not belong to the request.
	ErrUnexpectedFrame = errors.New("unexpected frame")

	// ErrTransport wraps read and write failures of the underlying port.
	ErrTransport = errors.New("transport error")

	// ErrResetRejected means the reset response failed the configured
	// acknowledgement predicate.
	ErrResetRejected = errors.New("reset not acknowledged")
)

// FrameError describes a failed exchange with a meter.
type FrameError struct {
	// Op is the operation that failed ("request" or "reset")
	Op string

	// Addr is the slave address the command was sent to
	Addr byte

	// Expected is the response length awaited
	Expected int

	// Received is the number of bytes that actually arrived
	Received int

	Err error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("pzem %s 0x%02X: %v (received %d of %d bytes)",
		e.Op, e.Addr, e.Err, e.Received, e.Expected)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFrameError returns true if err is or wraps a *FrameError.
func IsFrameError(err error) bool {
	var fe *FrameError
	return errors.As(err, &fe)
}
