package outcome

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxNbDigits is the largest number of binary digits an outcome may span.
// Outcomes are carried as uint32 values.
const MaxNbDigits = 32

var ErrInvalidNbDigits = errors.New("number of outcome digits must be between 1 and 32")

// Outcome is an event outcome attested by the oracle, an unsigned integer
// in the range [0, 2^NbDigits).
type Outcome uint32

// Bit reports whether the bit at the given position (0 = least significant) is set.
func (o Outcome) Bit(pos uint8) bool {
	if pos >= MaxNbDigits {
		return false
	}
	return o&(1<<pos) != 0
}

func (o Outcome) IsZero() bool { return o == 0 }

// Bytes returns the canonical fixed-width little-endian serialization
// of the outcome used for hashing.
func (o Outcome) Bytes() [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(o))
	return b
}

func (o Outcome) String() string { return fmt.Sprintf("%d", uint32(o)) }

// Space describes the full outcome space of a contract.
type Space struct {
	NbDigits uint8
}

// NewSpace returns the outcome space spanning nbDigits binary digits.
func NewSpace(nbDigits uint8) (Space, error) {
	if nbDigits == 0 || nbDigits > MaxNbDigits {
		return Space{}, fmt.Errorf("%w: got %d", ErrInvalidNbDigits, nbDigits)
	}
	return Space{NbDigits: nbDigits}, nil
}

// Size returns the number of outcomes in the space.
func (s Space) Size() uint64 { return uint64(1) << s.NbDigits }

// Max returns the largest outcome in the space.
func (s Space) Max() Outcome { return Outcome(s.Size() - 1) }

// Contains reports whether the outcome belongs to the space.
func (s Space) Contains(o Outcome) bool { return uint64(o) < s.Size() }
