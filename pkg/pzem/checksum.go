package pzem

const (
	crcInitial    = 0xFFFF
	crcPolynomial = 0xA001 // 0x8005 reflected
)

var crcTable = makeCRCTable()

func makeCRCTable() [256]uint16 {
	var table [256]uint16
	for i := range table {
		crc := uint16(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ crcPolynomial
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return table
}

// Checksum computes the Modbus CRC-16 of every byte in data.
func Checksum(data []byte) uint16 {
	var crc uint16 = crcInitial
	for _, b := range data {
		crc = (crc >> 8) ^ crcTable[byte(crc)^b]
	}
	return crc
}

// AppendChecksum writes the checksum of frame[:len-2] into the last two bytes,
// low byte first. It reports false and leaves frame untouched when the frame
// is too short to hold both payload and checksum.
func AppendChecksum(frame []byte) bool {
	n := len(frame)
	if n <= checksumSize {
		return false
	}
	crc := Checksum(frame[:n-checksumSize])
	frame[n-2] = byte(crc)
	frame[n-1] = byte(crc >> 8)
	return true
}

// VerifyChecksum reports whether the last two bytes of frame hold the
// checksum of the preceding bytes.
func VerifyChecksum(frame []byte) bool {
	n := len(frame)
	if n <= checksumSize {
		return false
	}
	embedded := uint16(frame[n-2]) | uint16(frame[n-1])<<8
	return embedded == Checksum(frame[:n-checksumSize])
}
