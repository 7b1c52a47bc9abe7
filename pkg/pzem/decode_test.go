package pzem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMeasurementLiteralFrame(t *testing.T) {
	assert := assert.New(t)

	frame := literalResponse(DefaultAddress)
	require.Len(t, frame, MeasurementResponseSize)
	assert.Equal([]byte{0x1F, 0x3A}, frame[23:])

	m, err := DecodeMeasurement(frame)
	require.NoError(t, err)

	assert.InDelta(225.0, m.Voltage, 1e-9)
	assert.InDelta(0.001, m.Current, 1e-9)
	assert.InDelta(10.0, m.Power, 1e-9)
	assert.InDelta(655360.0, m.Energy, 1e-9)
	assert.InDelta(31.2, m.Frequency, 1e-9)
	assert.InDelta(1.0, m.PowerFactor, 1e-9)
	assert.Equal(uint16(0), m.Alarms)
	assert.False(m.AlarmActive())
}

func TestDecodeRegistersWordOrder(t *testing.T) {
	assert := assert.New(t)

	regs := []uint16{
		2301,           // 230.1 V
		0x86A0, 0x0001, // 100000 mA
		0x0000, 0x0001, // 65536 -> 6553.6 W
		0x1234, 0x0000, // 4660 Wh
		500,            // 50.0 Hz
		95,             // 0.95
		0xFFFF,
	}

	m, err := DecodeRegisters(regs)
	require.NoError(t, err)

	assert.InDelta(230.1, m.Voltage, 1e-9)
	assert.InDelta(100.0, m.Current, 1e-9)
	assert.InDelta(6553.6, m.Power, 1e-9)
	assert.InDelta(4.66, m.Energy, 1e-9)
	assert.InDelta(50.0, m.Frequency, 1e-9)
	assert.InDelta(0.95, m.PowerFactor, 1e-9)
	assert.True(m.AlarmActive())
}

func TestDecodeRejectsWrongSizes(t *testing.T) {
	_, err := DecodeMeasurement(make([]byte, 24))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = DecodeRegisters(make([]uint16, 9))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
