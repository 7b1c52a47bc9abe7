package pzem

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// ByteSource is the receive side of a serial line. Read must return (0, nil)
// or io.EOF when nothing arrived within the configured read timeout.
type ByteSource interface {
	Read(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
}

// Port is a full serial line as used by the Driver.
type Port interface {
	ByteSource
	io.Writer
}

// ReadFrame receives up to n bytes, one byte per read, each read bounded by
// byteTimeout. The first silent read ends the loop and whatever arrived so far
// is returned, so the result may be shorter than n. The content is not
// inspected.
func ReadFrame(src ByteSource, n int, byteTimeout time.Duration) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: expected length %d", ErrInvalidInput, n)
	}
	if err := src.SetReadTimeout(byteTimeout); err != nil {
		return nil, fmt.Errorf("%w: set read timeout: %v", ErrTransport, err)
	}

	buf := make([]byte, 0, n)
	c := make([]byte, 1)
	for len(buf) < n {
		read, err := src.Read(c)
		if read > 0 {
			buf = append(buf, c[0])
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return buf, fmt.Errorf("%w: %v", ErrTransport, err)
		}
		break
	}
	return buf, nil
}
