// Copyright (c) 2019 Oasis Labs Inc. <info@oasislabs.com>
//
// Permission is hereby granted, free of charge, to any person obtaining
// a copy of this software and associated documentation files (the
// "Software"), to deal in the Software without restriction, including
// without limitation the rights to use, copy, modify, merge, publish,
// distribute, sublicense, and/or sell copies of the Software, and to
// permit persons to whom the Software is furnished to do so, subject to
// the following conditions:
//
// The above copyright notice and this permission notice shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS
// BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN
// ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package aesprotected implements an AES-128 ECB/CBC block engine hardened
// against power/EM side-channel analysis and differential fault analysis.
//
// Three independent countermeasures can be enabled, at build time with the
// aesprotected_random_delay, aesprotected_dummy_rounds and
// aesprotected_antidfa build tags (see DefaultConfig), or explicitly with a
// Config:
//
//   - Random delays around every round and byte pass.
//   - Decoy rounds executed on random scratch data.
//   - Redundant computation; when the two results disagree the output
//     block is overwritten with zero bytes and the result is not released.
//
// Building with the aesprotected_decrypt_only tag removes the encryption
// path.
//
// All operations work in place on fixed size buffers and report no errors:
// the only anomaly signal is the all-zero output of a detected fault.
package aesprotected

import (
	"errors"

	"github.com/oasisprotocol/aesprotected/internal/api"
	"github.com/oasisprotocol/aesprotected/internal/harden"
	"github.com/oasisprotocol/aesprotected/internal/prng"
	"github.com/oasisprotocol/aesprotected/internal/vartime"
)

const (
	// BlockSize is the AES block size in bytes.
	BlockSize = api.BlockSize

	// KeySize is the AES-128 key size in bytes.
	KeySize = api.KeySize

	// ScheduleSize is the expanded key schedule size in bytes.
	ScheduleSize = api.ScheduleSize

	// SeedSize is the generator seed size in bytes.
	SeedSize = prng.SeedSize

	// DefaultRoundDelayMax, DefaultByteDelayMax and DefaultFaultDelay are
	// the delay bounds used when the Config leaves them zero.
	DefaultRoundDelayMax = harden.DefaultRoundDelayMax
	DefaultByteDelayMax  = harden.DefaultByteDelayMax
	DefaultFaultDelay    = harden.DefaultFaultDelay
)

type (
	// Block is a 16 byte cipher state.
	Block = api.Block

	// Key is an AES-128 key.  The caller owns it and should zero it
	// once the schedule has been derived.
	Key = api.Key

	// Schedule is the 176 byte expanded key schedule.
	Schedule = api.Schedule

	// Config selects the countermeasures.
	Config = harden.Config

	// Redundancy selects the data path of the second fault detection
	// pass.
	Redundancy = harden.Redundancy

	// Rand is the generator driving the random delays and decoy
	// rounds.
	Rand = prng.Rand
)

// IV is a CBC initialization vector.
type IV [BlockSize]byte

const (
	// RedundancySame repeats the hardened computation.
	RedundancySame = harden.RedundancySame

	// RedundancyDiverse repeats the computation on an independent
	// bitsliced implementation.
	RedundancyDiverse = harden.RedundancyDiverse
)

var (
	// ErrInvalidKeySize is the error returned when a key is not
	// KeySize bytes.
	ErrInvalidKeySize = errors.New("aesprotected: invalid key size")

	// ErrInvalidLength is the error returned when a multi-block
	// input is not a whole number of blocks or dst is too short.
	ErrInvalidLength = errors.New("aesprotected: input not a multiple of the block size")

	// ErrEncryptionDisabled is the error raised when encrypting with a
	// decrypt-only build.
	ErrEncryptionDisabled = errors.New("aesprotected: encryption disabled in this build")

	// ErrMissingRand is the error returned when a configuration that
	// needs randomness is given no generator.
	ErrMissingRand = errors.New("aesprotected: configuration requires a generator")

	// ErrSelfTest is the error returned when the known answer self test
	// fails.
	ErrSelfTest = errors.New("aesprotected: self test failed")

	errInvalidBlock = errors.New("aesprotected: input not full block")
	errCipherReset  = errors.New("aesprotected: cipher used after Reset")
)

// DefaultConfig returns the countermeasures selected by build tags.
func DefaultConfig() Config {
	return harden.DefaultConfig()
}

// ParseRedundancy parses "same" or "diverse".  The empty string selects
// RedundancySame.
func ParseRedundancy(s string) (Redundancy, error) {
	return harden.ParseRedundancy(s)
}

// AllEnabledConfig returns a Config with every countermeasure enabled and
// same-path redundancy.
func AllEnabledConfig() Config {
	return harden.AllEnabled()
}

// EncryptionEnabled returns true iff the encryption path is part of this
// build.
func EncryptionEnabled() bool {
	return encryptionEnabled
}

// NewRand returns a generator seeded with seed.  The seed must come
// from a strong entropy source for the randomized countermeasures to be
// effective.
func NewRand(seed *[SeedSize]byte) *Rand {
	return prng.New(seed)
}

// ExpandKey derives the key schedule for key.  Derive it once per key and
// reuse it; there is no incremental update.
func ExpandKey(schedule *Schedule, key *Key) {
	vartime.ExpandKey(schedule, key)
}

// Engine is the hardened AES-128 engine.  An Engine is not safe for
// concurrent use, and a schedule must not be modified while an operation
// using it is in flight.
type Engine struct {
	inner *harden.Engine
}

// New creates an Engine.  rng may be nil only if cfg enables neither
// RandomDelay nor DummyRounds; New panics otherwise.
func New(cfg Config, rng *Rand) *Engine {
	return &Engine{
		inner: harden.New(cfg, rng),
	}
}

// Name describes the backends the Engine runs.
func (e *Engine) Name() string {
	return e.inner.Name()
}

// Config returns the effective configuration of the Engine.
func (e *Engine) Config() Config {
	return e.inner.Config()
}

// ExpandKey derives the key schedule for key, with random delays if
// enabled.  The result is identical to the package level ExpandKey.
func (e *Engine) ExpandKey(schedule *Schedule, key *Key) {
	e.inner.ExpandKey(schedule, key)
}

// ECBDecrypt decrypts a single block in place.
func (e *Engine) ECBDecrypt(state *Block, schedule *Schedule) {
	e.inner.Decrypt(state, schedule)
}

// CBCDecrypt decrypts a single block in place and XORs the result with iv.
// A detected fault zeroes the block before the XOR, leaving iv.
func (e *Engine) CBCDecrypt(state *Block, iv *IV, schedule *Schedule) {
	e.inner.Decrypt(state, schedule)
	api.XORBlock(state, (*[BlockSize]byte)(iv))
}

// CBCDecryptBlocks decrypts whole blocks of src into dst in CBC mode.  dst
// and src may overlap entirely.  A block whose decryption trips fault
// detection is output as its chaining value, the zeroed block XOR the
// previous ciphertext block (or iv).
func (e *Engine) CBCDecryptBlocks(dst, src []byte, iv *IV, schedule *Schedule) error {
	if len(src)%BlockSize != 0 || len(dst) < len(src) {
		return ErrInvalidLength
	}

	var (
		state Block
		chain = *iv
		next  IV
	)
	for off := 0; off < len(src); off += BlockSize {
		copy(state[:], src[off:off+BlockSize])
		copy(next[:], state[:])

		e.CBCDecrypt(&state, &chain, schedule)
		copy(dst[off:off+BlockSize], state[:])
		chain = next
	}
	api.Bzero(state[:])

	return nil
}
