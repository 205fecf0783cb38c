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

// Package harden wraps the byte oriented AES-128 implementation with
// countermeasures against side-channel and fault attacks:
//
//   - Random delays desynchronize each operation from a fixed trace offset.
//   - Decoy rounds run every round in a randomly sized group of which only
//     one invocation, at a random position, processes the real state.
//   - Redundant computation encrypts or decrypts twice and releases an
//     all-zero block instead of the result when the two disagree.
//
// None of the countermeasures changes the cryptographic output.
package harden

import (
	"crypto/subtle"

	"github.com/oasisprotocol/aesprotected/internal/api"
	"github.com/oasisprotocol/aesprotected/internal/ct64"
	"github.com/oasisprotocol/aesprotected/internal/prng"
	"github.com/oasisprotocol/aesprotected/internal/vartime"
)

const maxDecoyGroup = 3

// Engine is an AES-128 block engine with the countermeasures selected by
// its Config.  An Engine is not safe for concurrent use; the generator and
// the decoy scratch buffers are per Engine.
type Engine struct {
	cfg Config
	rng *prng.Rand

	scratchState api.Block
	scratchKey   [api.RoundKeySize]byte

	// onExec, when set, observes every round invocation.
	onExec func(k vartime.Kind, real bool)

	// faultHook, when set, is called on the shadow copy right before the
	// second redundant computation.
	faultHook func(shadow *api.Block)
}

// New creates an Engine.  rng may be nil iff cfg does not need randomness.
func New(cfg Config, rng *prng.Rand) *Engine {
	if cfg.NeedsRand() && rng == nil {
		panic("harden: configuration requires a generator")
	}
	return &Engine{
		cfg: cfg.withDefaults(),
		rng: rng,
	}
}

// Name implements api.Impl.  It names the backends the Engine runs, for
// example "hardened(vartime)" or "hardened(vartime+ct64)".
func (e *Engine) Name() string {
	name := vartime.Impl.Name()
	if second := e.second(); second != nil {
		name += "+" + second.Name()
	}
	return "hardened(" + name + ")"
}

// second returns the backend of the redundant pass, or nil without
// AntiDFA.
func (e *Engine) second() api.Impl {
	switch {
	case !e.cfg.AntiDFA:
		return nil
	case e.cfg.Redundancy == RedundancyDiverse:
		return ct64.Impl
	default:
		return vartime.Impl
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// ExpandKey derives the key schedule with per-word jitter.
func (e *Engine) ExpandKey(schedule *api.Schedule, key *api.Key) {
	vartime.ExpandKeyWith(schedule, key, e)
}

// Encrypt encrypts state in place.
func (e *Engine) Encrypt(state *api.Block, schedule *api.Schedule) {
	if !e.cfg.AntiDFA {
		vartime.EncryptWith(state, schedule, e)
		return
	}
	e.redundant(state, schedule, true)
}

// Decrypt decrypts state in place.
func (e *Engine) Decrypt(state *api.Block, schedule *api.Schedule) {
	if !e.cfg.AntiDFA {
		vartime.DecryptWith(state, schedule, e)
		return
	}
	e.redundant(state, schedule, false)
}

func (e *Engine) redundant(state *api.Block, schedule *api.Schedule, encrypt bool) {
	shadow := *state

	if encrypt {
		vartime.EncryptWith(state, schedule, e)
	} else {
		vartime.DecryptWith(state, schedule, e)
	}

	Delay(e.cfg.FaultDelay)
	if e.faultHook != nil {
		e.faultHook(&shadow)
	}

	switch second := e.second(); second {
	case ct64.Impl:
		if encrypt {
			second.Encrypt(&shadow, schedule)
		} else {
			second.Decrypt(&shadow, schedule)
		}
	default:
		if encrypt {
			vartime.EncryptWith(&shadow, schedule, e)
		} else {
			vartime.DecryptWith(&shadow, schedule, e)
		}
	}

	// mask is 0x00 when the results match and 0xff otherwise.
	mask := byte(subtle.ConstantTimeCompare(state[:], shadow[:])) - 1
	for i := range state {
		state[i] &^= mask
	}
	api.Bzero(shadow[:])
}

// Short implements vartime.Jitter.
func (e *Engine) Short() {
	if e.cfg.RandomDelay {
		RandomDelay(e.rng, e.cfg.ByteDelayMax)
	}
}

// Long implements vartime.Hooks.
func (e *Engine) Long() {
	if e.cfg.RandomDelay {
		RandomDelay(e.rng, e.cfg.RoundDelayMax)
	}
}

// Exec implements vartime.Hooks.
func (e *Engine) Exec(k vartime.Kind, state *api.Block, rk *[api.RoundKeySize]byte) {
	if !e.cfg.DummyRounds {
		e.observe(k, true)
		vartime.Apply(k, state, rk, e)
		return
	}

	n := 1 + e.rng.Intn(maxDecoyGroup)
	pos := e.rng.Intn(n)
	for i := 0; i < n; i++ {
		// The scratch is refilled before the real invocation too, so
		// that every member of the group has the same prologue.
		e.rng.Fill(e.scratchState[:])
		e.rng.Fill(e.scratchKey[:])

		if i == pos {
			e.observe(k, true)
			vartime.Apply(k, state, rk, e)
		} else {
			e.observe(k, false)
			vartime.Apply(k, &e.scratchState, &e.scratchKey, e)
		}
	}
	api.Bzero(e.scratchState[:])
	api.Bzero(e.scratchKey[:])
}

func (e *Engine) observe(k vartime.Kind, real bool) {
	if e.onExec != nil {
		e.onExec(k, real)
	}
}

var (
	_ api.Impl      = (*Engine)(nil)
	_ vartime.Hooks = (*Engine)(nil)
)
