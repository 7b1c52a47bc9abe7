package pzem

import (
	"encoding/binary"
	"fmt"
)

// ValidateAddress rejects addresses no single meter can answer on: the
// broadcast address 0x00 and the reserved range above DefaultAddress.
func ValidateAddress(addr byte) error {
	if addr == DefaultAddress || (addr >= MinAddress && addr <= MaxAddress) {
		return nil
	}
	return fmt.Errorf("%w: slave address 0x%02X outside 0x%02X-0x%02X and not 0x%02X",
		ErrInvalidInput, addr, MinAddress, MaxAddress, DefaultAddress)
}

// EncodeReadMeasurement builds the 8-byte read-input-registers frame for the
// whole measurement block.
//
//	[ADDR][0x04][REG_H][REG_L][CNT_H][CNT_L][CRC_L][CRC_H]
func EncodeReadMeasurement(addr byte) []byte {
	frame := make([]byte, ReadFrameSize)
	frame[0] = addr
	frame[1] = CmdReadInputRegisters
	binary.BigEndian.PutUint16(frame[2:4], RegVoltage)
	binary.BigEndian.PutUint16(frame[4:6], MeasurementRegisterCount)
	AppendChecksum(frame)
	return frame
}

// EncodeResetEnergy builds the 4-byte reset-energy frame. It has no register
// or value fields.
//
//	[ADDR][0x42][CRC_L][CRC_H]
func EncodeResetEnergy(addr byte) []byte {
	frame := make([]byte, ResetFrameSize)
	frame[0] = addr
	frame[1] = CmdResetEnergy
	AppendChecksum(frame)
	return frame
}

// ValidateFrame accepts a response only if it has exactly the expected length
// and a valid checksum. Length is checked first.
func ValidateFrame(frame []byte, expected int) error {
	if len(frame) < expected {
		return ErrTruncatedFrame
	}
	if len(frame) > expected {
		return ErrLengthMismatch
	}
	if !VerifyChecksum(frame) {
		return ErrChecksumMismatch
	}
	return nil
}
