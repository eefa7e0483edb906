// Package shortvec implements the compact-u16 length prefix used by Solana's
// transaction wire format: 7 bits per byte, least significant group first,
// with the high bit marking continuation.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// MaxEncodedSize is the longest valid encoding, in bytes.
const MaxEncodedSize = 3

var (
	ErrLenTooLarge = errors.Errorf("len exceeds %d", math.MaxUint16)
	ErrInvalidLen  = errors.Errorf("encoding exceeds %d bytes", MaxEncodedSize)
)

// EncodeLen writes the encoding of len and returns the number of bytes
// written.
func EncodeLen(w io.ByteWriter, len int) (int, error) {
	if len < 0 || len > math.MaxUint16 {
		return 0, ErrLenTooLarge
	}

	for n := 1; ; n++ {
		group := byte(len & 0x7f)
		len >>= 7

		if len == 0 {
			return n, w.WriteByte(group)
		}
		if err := w.WriteByte(group | 0x80); err != nil {
			return n - 1, err
		}
	}
}

// DecodeLen reads an encoded len.
func DecodeLen(r io.ByteReader) (int, error) {
	var val int
	for i := 0; i < MaxEncodedSize; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		val |= int(b&0x7f) << (i * 7)
		if b&0x80 == 0 {
			if val > math.MaxUint16 {
				return 0, ErrInvalidLen
			}
			return val, nil
		}
	}

	return 0, ErrInvalidLen
}
