package pzem

import (
	"encoding/binary"
	"fmt"
)

// Measurement is one decoded reading of the measurement block.
type Measurement struct {
	// Voltage in volts
	Voltage float64
	// Current in amps
	Current float64
	// Power is the active power in watts
	Power float64
	// Energy is the accumulated energy counter, raw Wh divided by 1000
	Energy float64
	// Frequency is the line frequency in hertz
	Frequency float64
	// PowerFactor is unitless, 0 to 1
	PowerFactor float64
	// Alarms is the raw alarm register
	Alarms uint16
}

// AlarmActive reports whether the meter signals its power alarm.
func (m Measurement) AlarmActive() bool {
	return m.Alarms != 0
}

// DecodeMeasurement decodes a validated 25-byte read-measurement response.
//
//	[ADDR][0x04][0x14][V][V][I_L][I_L][I_H][I_H][P_L][P_L][P_H][P_H]
//	[E_L][E_L][E_H][E_H][F][F][PF][PF][ALM][ALM][CRC_L][CRC_H]
//
// Each register is big-endian; 32-bit quantities put the low word first.
func DecodeMeasurement(frame []byte) (Measurement, error) {
	if len(frame) != MeasurementResponseSize {
		return Measurement{}, fmt.Errorf("%w: measurement frame is %d bytes, want %d",
			ErrInvalidInput, len(frame), MeasurementResponseSize)
	}
	regs := make([]uint16, MeasurementRegisterCount)
	for i := range regs {
		regs[i] = binary.BigEndian.Uint16(frame[3+2*i:])
	}
	return DecodeRegisters(regs)
}

// DecodeRegisters decodes the ten measurement registers in register order.
func DecodeRegisters(regs []uint16) (Measurement, error) {
	if len(regs) != MeasurementRegisterCount {
		return Measurement{}, fmt.Errorf("%w: got %d registers, want %d",
			ErrInvalidInput, len(regs), MeasurementRegisterCount)
	}
	return Measurement{
		Voltage:     float64(regs[RegVoltage]) / 10.0,
		Current:     float64(wordSwapped(regs[RegCurrentLow], regs[RegCurrentHigh])) / 1000.0,
		Power:       float64(wordSwapped(regs[RegPowerLow], regs[RegPowerHigh])) / 10.0,
		Energy:      float64(wordSwapped(regs[RegEnergyLow], regs[RegEnergyHigh])) / 1000.0,
		Frequency:   float64(regs[RegFrequency]) / 10.0,
		PowerFactor: float64(regs[RegPowerFactor]) / 100.0,
		Alarms:      regs[RegAlarm],
	}, nil
}

func wordSwapped(low, high uint16) uint32 {
	return uint32(high)<<16 | uint32(low)
}
