package pzem

import "time"

// Function codes.
const (
	CmdReadHoldingRegisters = 0x03
	CmdReadInputRegisters   = 0x04
	CmdWriteSingleRegister  = 0x06
	CmdCalibrate            = 0x41
	CmdResetEnergy          = 0x42
)

// Input register map of the measurement block.
const (
	RegVoltage     = 0x0000
	RegCurrentLow  = 0x0001
	RegCurrentHigh = 0x0002
	RegPowerLow    = 0x0003
	RegPowerHigh   = 0x0004
	RegEnergyLow   = 0x0005
	RegEnergyHigh  = 0x0006
	RegFrequency   = 0x0007
	RegPowerFactor = 0x0008
	RegAlarm       = 0x0009
)

// Holding registers. Writes are not issued by this package.
const (
	WRegAlarmThreshold = 0x0001
	WRegAddress        = 0x0002
)

const (
	// DefaultAddress is the general address every meter answers to when it is
	// alone on the bus.
	DefaultAddress byte = 0xF8

	// MinAddress and MaxAddress bound the assignable slave addresses.
	MinAddress byte = 0x01
	MaxAddress byte = 0xF7

	// MeasurementRegisterCount is the number of registers in the measurement block.
	MeasurementRegisterCount = 10

	// ReadFrameSize is the size of the read-measurement command frame.
	ReadFrameSize = 8
	// ResetFrameSize is the size of the reset-energy command frame.
	ResetFrameSize = 4

	// MeasurementResponseSize is addr + fn + byte count + 20 data bytes + crc.
	MeasurementResponseSize = 25
	// ResetResponseSize is the response length awaited after a reset.
	ResetResponseSize = 5

	// MeasurementPayloadSize is the byte count echoed in a measurement response.
	MeasurementPayloadSize = 2 * MeasurementRegisterCount

	checksumSize = 2
)

// Line parameters the meter firmware expects.
const (
	DefaultBaudRate = 9600
	DataBits        = 8
)

// DefaultByteTimeout bounds a single byte read. Silence for this long ends a
// receive.
const DefaultByteTimeout = 100 * time.Millisecond
