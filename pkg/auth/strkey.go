package auth

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
)

type versionByte byte

const (
	versionAccountID versionByte = 6 << 3  // "G..."
	versionSeed      versionByte = 18 << 3 // "S..."

	rawKeySize = 32
)

var strkeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// encodeStrkey builds version || payload || crc16(version || payload) and base32 encodes it.
func encodeStrkey(version versionByte, payload []byte) string {
	raw := make([]byte, 0, 1+len(payload)+2)
	raw = append(raw, byte(version))
	raw = append(raw, payload...)
	raw = binary.LittleEndian.AppendUint16(raw, crc16(raw))
	return strkeyEncoding.EncodeToString(raw)
}

func decodeStrkey(expected versionByte, s string) ([]byte, error) {
	raw, err := strkeyEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != 1+rawKeySize+2 {
		return nil, errors.New("unexpected strkey length")
	}
	if versionByte(raw[0]) != expected {
		return nil, errors.New("unexpected strkey version")
	}

	body, sum := raw[:len(raw)-2], raw[len(raw)-2:]
	if crc16(body) != binary.LittleEndian.Uint16(sum) {
		return nil, ErrInvalidChecksum
	}
	return body[1:], nil
}

// crc16 implements CRC-16/XMODEM (poly 0x1021, init 0).
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
