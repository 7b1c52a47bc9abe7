package pzem

import (
	"time"
)

// scriptedPort answers every written frame with the next scripted response.
type scriptedPort struct {
	written   [][]byte
	responses [][]byte
	pending   []byte
	timeout   time.Duration
	readCalls int
	resets    int
	readErr   error
	writeErr  error
}

func newScriptedPort(responses ...[]byte) *scriptedPort {
	return &scriptedPort{responses: responses}
}

func (p *scriptedPort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written = append(p.written, append([]byte(nil), b...))
	p.pending = nil
	if len(p.responses) > 0 {
		p.pending = append([]byte(nil), p.responses[0]...)
		p.responses = p.responses[1:]
	}
	return len(b), nil
}

func (p *scriptedPort) Read(b []byte) (int, error) {
	p.readCalls++
	if len(p.pending) == 0 {
		if p.readErr != nil {
			return 0, p.readErr
		}
		return 0, nil
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *scriptedPort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

func (p *scriptedPort) ResetInputBuffer() error {
	p.resets++
	return nil
}

// literalResponse is the documented 25-byte sample: 225.0 V, 0.001 A, 10.0 W,
// energy low word 0x0000 high word 0x2710, 31.2 Hz, PF 1.00, no alarm.
func literalResponse(addr byte) []byte {
	frame := []byte{
		addr, 0x04, 0x14,
		0x08, 0xCA,
		0x00, 0x01, 0x00, 0x00,
		0x00, 0x64, 0x00, 0x00,
		0x00, 0x00, 0x27, 0x10,
		0x01, 0x38,
		0x00, 0x64,
		0x00, 0x00,
		0x00, 0x00,
	}
	AppendChecksum(frame)
	return frame
}
