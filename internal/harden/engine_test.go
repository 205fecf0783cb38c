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

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oasisprotocol/aesprotected/internal/api"
	"github.com/oasisprotocol/aesprotected/internal/prng"
	"github.com/oasisprotocol/aesprotected/internal/vartime"
)

var testConfigs = []struct {
	name string
	cfg  Config
}{
	{"plain", Config{}},
	{"random_delay", Config{RandomDelay: true}},
	{"dummy_rounds", Config{DummyRounds: true}},
	{"antidfa", Config{AntiDFA: true}},
	{"antidfa_diverse", Config{AntiDFA: true, Redundancy: RedundancyDiverse}},
	{"all", AllEnabled()},
	{"all_diverse", Config{RandomDelay: true, DummyRounds: true, AntiDFA: true, Redundancy: RedundancyDiverse}},
}

func newTestRand(t testing.TB) *prng.Rand {
	var seed [prng.SeedSize]byte
	_, err := rand.Read(seed[:])
	require.NoError(t, err, "rand.Read()")
	return prng.New(&seed)
}

func fipsC1() (*api.Schedule, api.Block) {
	var (
		key      api.Key
		schedule api.Schedule
		state    api.Block
	)
	for i := range key {
		key[i] = byte(i)
		state[i] = byte(i<<4 | i)
	}
	vartime.ExpandKey(&schedule, &key)
	return &schedule, state
}

func TestKnownAnswer(t *testing.T) {
	for _, tc := range testConfigs {
		t.Run(tc.name, func(t *testing.T) {
			require := require.New(t)

			e := New(tc.cfg, newTestRand(t))
			schedule, state := fipsC1()

			e.Encrypt(&state, schedule)
			require.Equal("69c4e0d86a7b0430d8cdb78070b4c55a", hex.EncodeToString(state[:]), "Encrypt()")

			e.Decrypt(&state, schedule)
			require.Equal("00112233445566778899aabbccddeeff", hex.EncodeToString(state[:]), "Decrypt()")
		})
	}
}

func TestTransparency(t *testing.T) {
	require := require.New(t)

	plain := New(Config{}, nil)
	for _, tc := range testConfigs {
		e := New(tc.cfg, newTestRand(t))
		for i := 0; i < 16; i++ {
			var (
				key      api.Key
				schedule api.Schedule
				a, b     api.Block
			)
			_, _ = rand.Read(key[:])
			_, _ = rand.Read(a[:])
			b = a
			e.ExpandKey(&schedule, &key)

			plain.Encrypt(&a, &schedule)
			e.Encrypt(&b, &schedule)
			require.Equal(a, b, "%s: Encrypt()", tc.name)

			plain.Decrypt(&a, &schedule)
			e.Decrypt(&b, &schedule)
			require.Equal(a, b, "%s: Decrypt()", tc.name)
		}
	}
}

func TestExpandKeyJitter(t *testing.T) {
	var (
		key        api.Key
		a, b       api.Schedule
		withJitter = New(Config{RandomDelay: true}, newTestRand(t))
	)
	_, _ = rand.Read(key[:])

	vartime.ExpandKey(&a, &key)
	withJitter.ExpandKey(&b, &key)
	require.Equal(t, a, b)
}

func TestFaultDetection(t *testing.T) {
	for _, tc := range testConfigs {
		if !tc.cfg.AntiDFA {
			continue
		}
		t.Run(tc.name, func(t *testing.T) {
			require := require.New(t)
			e := New(tc.cfg, newTestRand(t))

			for bit := 0; bit < api.BlockSize*8; bit += 13 {
				e.faultHook = func(shadow *api.Block) {
					shadow[bit/8] ^= 1 << (bit % 8)
				}

				schedule, state := fipsC1()
				e.Encrypt(&state, schedule)
				require.Equal(api.Block{}, state, "Encrypt() with fault at bit %d", bit)

				schedule, state = fipsC1()
				e.Decrypt(&state, schedule)
				require.Equal(api.Block{}, state, "Decrypt() with fault at bit %d", bit)
			}

			// No fault, normal output.
			e.faultHook = nil
			schedule, state := fipsC1()
			e.Encrypt(&state, schedule)
			require.Equal("69c4e0d86a7b0430d8cdb78070b4c55a", hex.EncodeToString(state[:]))
		})
	}
}

func TestFaultHookPerEngine(t *testing.T) {
	require := require.New(t)

	faulty := New(Config{AntiDFA: true}, nil)
	faulty.faultHook = func(shadow *api.Block) { shadow[0] ^= 0x80 }
	clean := New(Config{AntiDFA: true, Redundancy: RedundancyDiverse}, nil)

	var (
		wg                  sync.WaitGroup
		faultyOut, cleanOut api.Block
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		schedule, state := fipsC1()
		for i := 0; i < 64; i++ {
			faultyOut = state
			faulty.Encrypt(&faultyOut, schedule)
		}
	}()
	go func() {
		defer wg.Done()
		schedule, state := fipsC1()
		for i := 0; i < 64; i++ {
			cleanOut = state
			clean.Encrypt(&cleanOut, schedule)
		}
	}()
	wg.Wait()

	require.Equal(api.Block{}, faultyOut, "Encrypt() on the faulted Engine")
	require.Equal("69c4e0d86a7b0430d8cdb78070b4c55a", hex.EncodeToString(cleanOut[:]), "Encrypt() on the other Engine")
}

func TestFaultHookUnusedWithoutAntiDFA(t *testing.T) {
	called := false
	e := New(Config{RandomDelay: true, DummyRounds: true}, newTestRand(t))
	e.faultHook = func(*api.Block) { called = true }

	schedule, state := fipsC1()
	e.Encrypt(&state, schedule)
	require.False(t, called)
	require.Equal(t, "69c4e0d86a7b0430d8cdb78070b4c55a", hex.EncodeToString(state[:]))
}

func TestName(t *testing.T) {
	require := require.New(t)

	require.Equal("hardened(vartime)", New(Config{}, nil).Name())
	require.Equal("hardened(vartime+vartime)", New(Config{AntiDFA: true}, nil).Name())
	require.Equal("hardened(vartime+ct64)", New(Config{AntiDFA: true, Redundancy: RedundancyDiverse}, nil).Name())
}

func TestDecoyGroups(t *testing.T) {
	require := require.New(t)

	type counts struct {
		real, decoy int
	}
	var (
		perKind   = make(map[vartime.Kind]*counts)
		groupSeen [maxDecoyGroup + 1]bool
	)

	e := New(Config{DummyRounds: true}, newTestRand(t))
	e.onExec = func(k vartime.Kind, real bool) {
		c := perKind[k]
		if c == nil {
			c = new(counts)
			perKind[k] = c
		}
		if real {
			c.real++
		} else {
			c.decoy++
		}
	}

	invocations := func(k vartime.Kind) int {
		if c := perKind[k]; c != nil {
			return c.real + c.decoy
		}
		return 0
	}

	const iters = 200
	schedule, state := fipsC1()
	for i := 0; i < iters; i++ {
		before := invocations(vartime.EncRound)
		e.Encrypt(&state, schedule)
		total := invocations(vartime.EncRound) - before
		require.True(total >= 9 && total <= 9*maxDecoyGroup, "EncRound invocations per block: %d", total)
	}

	// Exactly one real invocation per round.
	require.Equal(9*iters, perKind[vartime.EncRound].real, "EncRound real")
	require.Equal(iters, perKind[vartime.EncLastRound].real, "EncLastRound real")
	require.NotZero(perKind[vartime.EncRound].decoy, "EncRound decoys")

	// Group sizes 1..3 all occur; check on the last round which is a
	// single group per block.
	e.onExec = nil
	for i := 0; i < iters; i++ {
		n := 0
		e.onExec = func(k vartime.Kind, _ bool) {
			if k == vartime.EncLastRound {
				n++
			}
		}
		e.Encrypt(&state, schedule)
		require.True(n >= 1 && n <= maxDecoyGroup, "group size %d", n)
		groupSeen[n] = true
	}
	require.True(groupSeen[1] && groupSeen[2] && groupSeen[3], "all group sizes seen")

	require.Equal(api.Block{}, e.scratchState, "scratch state wiped")
	require.Equal([api.RoundKeySize]byte{}, e.scratchKey, "scratch key wiped")
}

func TestNewRequiresRand(t *testing.T) {
	require.Panics(t, func() { New(Config{RandomDelay: true}, nil) })
	require.Panics(t, func() { New(Config{DummyRounds: true}, nil) })
	require.NotPanics(t, func() { New(Config{AntiDFA: true}, nil) })
}

func TestConfigDefaults(t *testing.T) {
	require := require.New(t)

	e := New(Config{}, nil)
	cfg := e.Config()
	require.EqualValues(DefaultRoundDelayMax, cfg.RoundDelayMax)
	require.EqualValues(DefaultByteDelayMax, cfg.ByteDelayMax)
	require.EqualValues(DefaultFaultDelay, cfg.FaultDelay)

	e = New(Config{RoundDelayMax: 3, ByteDelayMax: 2, FaultDelay: 1}, nil)
	cfg = e.Config()
	require.EqualValues(3, cfg.RoundDelayMax)
	require.EqualValues(2, cfg.ByteDelayMax)
	require.EqualValues(1, cfg.FaultDelay)

	def := DefaultConfig()
	require.Equal(featureRandomDelay, def.RandomDelay)
	require.Equal(featureDummyRounds, def.DummyRounds)
	require.Equal(featureAntiDFA, def.AntiDFA)

	r, err := ParseRedundancy("diverse")
	require.NoError(err)
	require.Equal(RedundancyDiverse, r)
	require.Equal("diverse", r.String())
	_, err = ParseRedundancy("triple")
	require.Error(err)
}

func BenchmarkEngine(b *testing.B) {
	for _, tc := range testConfigs {
		e := New(tc.cfg, newTestRand(b))
		schedule, state := fipsC1()
		b.Run(tc.name+"_Encrypt", func(b *testing.B) {
			b.SetBytes(api.BlockSize)
			for i := 0; i < b.N; i++ {
				e.Encrypt(&state, schedule)
			}
		})
		b.Run(tc.name+"_Decrypt", func(b *testing.B) {
			b.SetBytes(api.BlockSize)
			for i := 0; i < b.N; i++ {
				e.Decrypt(&state, schedule)
			}
		})
	}
}
