// Package fingerprint holds scanner implementations. Only a simulator ships; a hardware
// scanner satisfies school.Scanner the same way.
package fingerprint

import (
	"context"

	"golang.org/x/crypto/blake2b"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/school"
)

const templateSize = 512

// Simulator returns a deterministic template derived from a seed, standing in for the reader.
type Simulator struct {
	Seed string
}

var _ school.Scanner = Simulator{}

func NewSimulator(seed string) Simulator {
	return Simulator{Seed: seed}
}

func (s Simulator) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tmpl := make([]byte, 0, templateSize)
	block := blake2b.Sum256([]byte(s.Seed))
	for len(tmpl) < templateSize {
		tmpl = append(tmpl, block[:]...)
		block = blake2b.Sum256(block[:])
	}
	return tmpl[:templateSize], nil
}
