// Package binary contains little-endian and Borsh encoding helpers for
// program instruction and account data. Put and Get helpers operate on the
// start of the provided slice and advance offset by the bytes consumed.
package binary

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
)

var ErrBufferTooSmall = errors.New("buffer too small")

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst, src)
	*offset += ed25519.PublicKeySize
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	*offset += 8
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst, v)
	*offset += 4
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	*offset += 1
}

// PutString writes a Borsh string: a u32 length followed by the UTF-8 bytes.
func PutString(dst []byte, v string, offset *int) {
	binary.LittleEndian.PutUint32(dst, uint32(len(v)))
	copy(dst[4:], v)
	*offset += 4 + len(v)
}

// PutOptionalUint64 writes a Borsh Option<u64>. None is a single zero byte.
func PutOptionalUint64(dst []byte, v *uint64, offset *int) {
	if v == nil {
		dst[0] = 0
		*offset += 1
		return
	}

	dst[0] = 1
	binary.LittleEndian.PutUint64(dst[1:], *v)
	*offset += 1 + 8
}

// PutOptionalString writes a Borsh Option<String>. None is a single zero byte.
func PutOptionalString(dst []byte, v *string, offset *int) {
	if v == nil {
		dst[0] = 0
		*offset += 1
		return
	}

	dst[0] = 1
	*offset += 1
	PutString(dst[1:], *v, offset)
}

// StringSize is the encoded size of a Borsh string.
func StringSize(v string) int {
	return 4 + len(v)
}

// OptionalUint64Size is the encoded size of a Borsh Option<u64>.
func OptionalUint64Size(v *uint64) int {
	if v == nil {
		return 1
	}
	return 1 + 8
}

// OptionalStringSize is the encoded size of a Borsh Option<String>.
func OptionalStringSize(v *string) int {
	if v == nil {
		return 1
	}
	return 1 + StringSize(*v)
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src)
	*offset += ed25519.PublicKeySize
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src)
	*offset += 8
}

func GetUint32(src []byte, dst *uint32, offset *int) {
	*dst = binary.LittleEndian.Uint32(src)
	*offset += 4
}

func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[0]
	*offset += 1
}

// GetString reads a Borsh string.
func GetString(src []byte, dst *string, offset *int) error {
	if len(src) < 4 {
		return ErrBufferTooSmall
	}

	length := binary.LittleEndian.Uint32(src)
	if uint64(len(src)-4) < uint64(length) {
		return ErrBufferTooSmall
	}

	*dst = string(src[4 : 4+length])
	*offset += 4 + int(length)
	return nil
}

// GetOptionalUint64 reads a Borsh Option<u64>.
func GetOptionalUint64(src []byte, dst **uint64, offset *int) error {
	if len(src) < 1 {
		return ErrBufferTooSmall
	}

	switch src[0] {
	case 0:
		*dst = nil
		*offset += 1
		return nil
	case 1:
		if len(src) < 1+8 {
			return ErrBufferTooSmall
		}
		val := binary.LittleEndian.Uint64(src[1:])
		*dst = &val
		*offset += 1 + 8
		return nil
	}

	return errors.New("invalid option tag")
}

// GetOptionalString reads a Borsh Option<String>.
func GetOptionalString(src []byte, dst **string, offset *int) error {
	if len(src) < 1 {
		return ErrBufferTooSmall
	}

	switch src[0] {
	case 0:
		*dst = nil
		*offset += 1
		return nil
	case 1:
		var val string
		consumed := 0
		if err := GetString(src[1:], &val, &consumed); err != nil {
			return err
		}
		*dst = &val
		*offset += 1 + consumed
		return nil
	}

	return errors.New("invalid option tag")
}
