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

// Package vartime provides a byte oriented, table driven AES-128
// implementation whose round structure can be instrumented with timing
// jitter and decoy execution.
//
// WARNING: The S-box lookups are data dependent memory accesses.  On
// processors with a data cache this is NOT constant time; the hardening
// layer that drives this package targets power/EM analysis on small
// cacheless microcontrollers.
package vartime

import "github.com/oasisprotocol/aesprotected/internal/api"

// Hooks instruments the block drivers.  Exec must apply round k to
// state with round key rk exactly once.
type Hooks interface {
	Jitter

	// Long is called at round and call boundaries.
	Long()

	// Exec runs a single round transform.
	Exec(k Kind, state *api.Block, rk *[api.RoundKeySize]byte)
}

type plainHooks struct {
	noJitter
}

func (plainHooks) Long() {}

func (plainHooks) Exec(k Kind, state *api.Block, rk *[api.RoundKeySize]byte) {
	Apply(k, state, rk, NoJitter)
}

// Impl is the uninstrumented implementation.
var Impl api.Impl = &vartimeImpl{}

type vartimeImpl struct{}

func (impl *vartimeImpl) Name() string {
	return "vartime"
}

func (impl *vartimeImpl) Encrypt(state *api.Block, schedule *api.Schedule) {
	EncryptWith(state, schedule, plainHooks{})
}

func (impl *vartimeImpl) Decrypt(state *api.Block, schedule *api.Schedule) {
	DecryptWith(state, schedule, plainHooks{})
}

// EncryptWith encrypts state in place: AddRoundKey(0), nine full rounds
// and a final round without MixColumns.
func EncryptWith(state *api.Block, schedule *api.Schedule, h Hooks) {
	h.Long()
	AddRoundKey(state, api.RoundKey(schedule, 0), h)

	for i := 1; i < api.Rounds; i++ {
		h.Long()
		h.Exec(EncRound, state, api.RoundKey(schedule, i))
	}

	h.Long()
	h.Exec(EncLastRound, state, api.RoundKey(schedule, api.Rounds))
	h.Long()
}

// DecryptWith decrypts state in place, the exact inverse of EncryptWith.
func DecryptWith(state *api.Block, schedule *api.Schedule, h Hooks) {
	h.Long()
	h.Exec(DecFirstRound, state, api.RoundKey(schedule, api.Rounds))

	for i := api.Rounds - 1; i > 0; i-- {
		h.Long()
		h.Exec(DecRound, state, api.RoundKey(schedule, i))
	}

	h.Long()
	AddRoundKey(state, api.RoundKey(schedule, 0), h)
	h.Long()
}
