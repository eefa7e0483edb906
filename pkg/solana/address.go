package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32
)

// Appended to every program address preimage after the program id.
var programAddressMarker = []byte("ProgramDerivedAddress")

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrNoValidBumpSeed  = errors.New("unable to find a viable program address bump seed")
)

var (
	programHashCtor = sha256.New
)

// CreateProgramAddress hashes seeds with the program id into an address with
// no private key. ErrInvalidPublicKey is returned when the hash lands on the
// ed25519 curve.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if err := checkSeeds(seeds); err != nil {
		return nil, err
	}

	candidate := hashProgramAddress(program, seeds)
	if onCurve(&candidate) {
		return nil, ErrInvalidPublicKey
	}
	return candidate[:], nil
}

// FindProgramAddressAndBump searches bump seeds from 255 down for the first
// one yielding a valid program address, and returns both.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	if err := checkSeeds(withBump); err != nil {
		return nil, 0, err
	}

	for bump := uint8(math.MaxUint8); bump > 0; bump-- {
		withBump[len(seeds)] = []byte{bump}

		candidate := hashProgramAddress(program, withBump)
		if !onCurve(&candidate) {
			return candidate[:], bump, nil
		}
	}

	return nil, 0, ErrNoValidBumpSeed
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := FindProgramAddressAndBump(program, seeds...)
	return pub, err
}

func checkSeeds(seeds [][]byte) error {
	if len(seeds) > maxSeeds {
		return ErrTooManySeeds
	}
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return ErrMaxSeedLengthExceeded
		}
	}
	return nil
}

func hashProgramAddress(program ed25519.PublicKey, seeds [][]byte) [ed25519.PublicKeySize]byte {
	h := programHashCtor()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write(program)
	h.Write(programAddressMarker)

	var out [ed25519.PublicKeySize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// onCurve reports whether b decompresses to an ed25519 point, using the same
// decoding the runtime applies.
func onCurve(b *[ed25519.PublicKeySize]byte) bool {
	var point edwards25519.ExtendedGroupElement
	return point.FromBytes(b)
}
