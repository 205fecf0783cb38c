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

package harden

import "fmt"

// Redundancy selects the data path of the second fault detection pass.
type Redundancy uint8

const (
	// RedundancySame repeats the hardened byte oriented computation.
	RedundancySame Redundancy = iota

	// RedundancyDiverse repeats the computation on the bitsliced
	// constant time backend.
	RedundancyDiverse
)

func (r Redundancy) String() string {
	switch r {
	case RedundancySame:
		return "same"
	case RedundancyDiverse:
		return "diverse"
	default:
		return fmt.Sprintf("Redundancy(%d)", uint8(r))
	}
}

// ParseRedundancy parses the String form of a Redundancy.
func ParseRedundancy(s string) (Redundancy, error) {
	switch s {
	case "", "same":
		return RedundancySame, nil
	case "diverse":
		return RedundancyDiverse, nil
	default:
		return 0, fmt.Errorf("harden: unknown redundancy %q", s)
	}
}

const (
	// DefaultRoundDelayMax bounds the jitter at round and call
	// boundaries, in busy-wait iterations.
	DefaultRoundDelayMax = 0x7f

	// DefaultByteDelayMax bounds the jitter between byte passes.
	DefaultByteDelayMax = 0x1f

	// DefaultFaultDelay is the fixed delay between the two redundant
	// computations.
	DefaultFaultDelay = 0x4ff
)

// Config selects the countermeasures.  The zero value disables all of
// them.
type Config struct {
	// RandomDelay inserts random busy-waits at round boundaries and
	// between byte passes.
	RandomDelay bool

	// DummyRounds runs every round in a group of 1-3 invocations, of
	// which only one, at a random position, touches the real state.
	DummyRounds bool

	// AntiDFA computes every block twice and zeroes the output if the
	// results differ.
	AntiDFA bool

	// Redundancy selects the second pass of AntiDFA.
	Redundancy Redundancy

	// RoundDelayMax, ByteDelayMax and FaultDelay are in busy-wait
	// iterations.  Zero selects the default.
	RoundDelayMax uint16
	ByteDelayMax  uint16
	FaultDelay    uint16
}

// DefaultConfig returns the countermeasures selected at build time with the
// aesprotected_random_delay, aesprotected_dummy_rounds and
// aesprotected_antidfa build tags.
func DefaultConfig() Config {
	return Config{
		RandomDelay: featureRandomDelay,
		DummyRounds: featureDummyRounds,
		AntiDFA:     featureAntiDFA,
	}
}

// AllEnabled returns a Config with every countermeasure enabled.
func AllEnabled() Config {
	return Config{
		RandomDelay: true,
		DummyRounds: true,
		AntiDFA:     true,
	}
}

// NeedsRand returns true iff the configuration consumes randomness.
func (c Config) NeedsRand() bool {
	return c.RandomDelay || c.DummyRounds
}

func (c Config) withDefaults() Config {
	if c.RoundDelayMax == 0 {
		c.RoundDelayMax = DefaultRoundDelayMax
	}
	if c.ByteDelayMax == 0 {
		c.ByteDelayMax = DefaultByteDelayMax
	}
	if c.FaultDelay == 0 {
		c.FaultDelay = DefaultFaultDelay
	}
	return c
}
