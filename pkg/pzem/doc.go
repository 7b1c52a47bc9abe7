// Package pzem drives PZEM-004T style power meters over a half-duplex
// serial bus using Modbus-RTU framing.
//
// Two operations are supported: reading the measurement block (ten input
// registers) and resetting the energy counter. Both are synchronous and
// stateless; a Driver performs no locking, so callers sharing one bus must
// serialize access themselves.
//
//	port, err := pzem.OpenSerial(pzem.SerialConfig{Device: "/dev/ttyUSB0"})
//	drv := pzem.New(port, pzem.WithLogger(logger))
//	m, err := drv.Request(pzem.DefaultAddress)
//
// Frames:
//
//	read:   [ADDR][0x04][0x00][0x00][0x00][0x0A][CRC_L][CRC_H]
//	reply:  [ADDR][0x04][0x14][REG0_H][REG0_L]...[REG9_H][REG9_L][CRC_L][CRC_H]
//	reset:  [ADDR][0x42][CRC_L][CRC_H]
package pzem
