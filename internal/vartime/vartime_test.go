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

package vartime

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yawning/bsaes.git"

	"github.com/oasisprotocol/aesprotected/internal/api"
)

func mustDecodeHexString(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func TestSboxBijection(t *testing.T) {
	require := require.New(t)

	var seen [256]bool
	for b := 0; b < 256; b++ {
		require.Equal(byte(b), InvSbox[Sbox[b]], "InvSbox[Sbox[%02x]]", b)
		require.False(seen[Sbox[b]], "Sbox collision at %02x", b)
		seen[Sbox[b]] = true
	}
}

func TestExpandKey(t *testing.T) {
	for _, tc := range []struct {
		name     string
		key      string
		schedule string
	}{
		{
			name:     "00112233445566778899aabbccddeeff",
			key:      "00112233445566778899aabbccddeeff",
			schedule: "00112233445566778899aabbccddeeffc0393478846c520f0cf5f8b4c028164bf67e87c27212d5cd7ee72d79becf3b32789ca46c0a8e71a174695cd8caa667ea541923185e9752b92afe0e61e058698b2ee01ef970774c405a894221bad12baa3011b20d4066fe4d1aefbc6ca03e97c6c29906ed82fff8a0981044cc382ed30a73ff61eaf100994a6910dd86513e0e8cda54053b2b549c71424441f7137a4f7b36d024461d84b8375fc0f9c04cbab6bb",
		},
		{
			name:     "FIPS-197 C.1",
			key:      "000102030405060708090a0b0c0d0e0f",
			schedule: "000102030405060708090a0b0c0d0e0fd6aa74fdd2af72fadaa678f1d6ab76feb692cf0b643dbdf1be9bc5006830b3feb6ff744ed2c2c9bf6c590cbf0469bf4147f7f7bc95353e03f96c32bcfd058dfd3caaa3e8a99f9deb50f3af57adf622aa5e390f7df7a69296a7553dc10aa31f6b14f9701ae35fe28c440adf4d4ea9c02647438735a41c65b9e016baf4aebf7ad2549932d1f08557681093ed9cbe2c974e13111d7fe3944a17f307a78b4d2b30c5",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var (
				key      api.Key
				schedule api.Schedule
			)
			copy(key[:], mustDecodeHexString(tc.key))
			ExpandKey(&schedule, &key)
			require.Equal(t, tc.schedule, hex.EncodeToString(schedule[:]))
			require.Equal(t, key[:], schedule[:api.KeySize], "round key 0 is the key")
		})
	}
}

func TestFIPS197(t *testing.T) {
	require := require.New(t)

	for _, tc := range []struct {
		key, pt, ct string
	}{
		{"000102030405060708090a0b0c0d0e0f", "00112233445566778899aabbccddeeff", "69c4e0d86a7b0430d8cdb78070b4c55a"},
		{"2b7e151628aed2a6abf7158809cf4f3c", "3243f6a8885a308d313198a2e0370734", "3925841d02dc09fbdc118597196a0b32"},
	} {
		var (
			key      api.Key
			schedule api.Schedule
			state    api.Block
		)
		copy(key[:], mustDecodeHexString(tc.key))
		copy(state[:], mustDecodeHexString(tc.pt))
		ExpandKey(&schedule, &key)

		Impl.Encrypt(&state, &schedule)
		require.Equal(tc.ct, hex.EncodeToString(state[:]), "Encrypt(%s)", tc.pt)

		Impl.Decrypt(&state, &schedule)
		require.Equal(tc.pt, hex.EncodeToString(state[:]), "Decrypt(%s)", tc.ct)
	}
}

func TestRoundInverses(t *testing.T) {
	require := require.New(t)

	var (
		state, orig api.Block
		rk          [api.RoundKeySize]byte
	)
	_, _ = rand.Read(state[:])
	_, _ = rand.Read(rk[:])
	orig = state

	// Given the same round key, DecRound inverts EncRound and
	// DecFirstRound inverts EncLastRound.
	Apply(EncRound, &state, &rk, NoJitter)
	Apply(DecRound, &state, &rk, NoJitter)
	require.Equal(orig, state, "DecRound(EncRound(x))")

	Apply(EncLastRound, &state, &rk, NoJitter)
	Apply(DecFirstRound, &state, &rk, NoJitter)
	require.Equal(orig, state, "DecFirstRound(EncLastRound(x))")
}

func TestAgainstBitsliced(t *testing.T) {
	require := require.New(t)

	for i := 0; i < 64; i++ {
		var (
			key      api.Key
			schedule api.Schedule
			state    api.Block
			expected [api.BlockSize]byte
		)
		_, _ = rand.Read(key[:])
		_, _ = rand.Read(state[:])

		blk, err := bsaes.NewCipher(key[:])
		require.NoError(err, "bsaes.NewCipher()")
		blk.Encrypt(expected[:], state[:])

		ExpandKey(&schedule, &key)
		pt := state
		Impl.Encrypt(&state, &schedule)
		require.Equal(expected[:], state[:], "Encrypt() vs bsaes")

		Impl.Decrypt(&state, &schedule)
		require.Equal(pt, state, "Decrypt(Encrypt(p))")
	}
}

type countingJitter struct {
	short int
}

func (j *countingJitter) Short() { j.short++ }

func TestJitterCalls(t *testing.T) {
	require := require.New(t)

	var (
		state api.Block
		rk    [api.RoundKeySize]byte
		j     countingJitter
	)

	// 4 around ShiftRows, 16 for MixColumns, 16 for AddRoundKey.
	Apply(EncRound, &state, &rk, &j)
	require.Equal(36, j.short, "EncRound")

	j.short = 0
	Apply(DecFirstRound, &state, &rk, &j)
	require.Equal(20, j.short, "DecFirstRound")

	var (
		key      api.Key
		schedule api.Schedule
	)
	j.short = 0
	ExpandKeyWith(&schedule, &key, &j)
	require.Equal(40, j.short, "ExpandKeyWith")
}

func BenchmarkVartime(b *testing.B) {
	var (
		key      api.Key
		schedule api.Schedule
		state    api.Block
	)
	ExpandKey(&schedule, &key)

	b.Run("Encrypt", func(b *testing.B) {
		b.SetBytes(api.BlockSize)
		for i := 0; i < b.N; i++ {
			Impl.Encrypt(&state, &schedule)
		}
	})
	b.Run("Decrypt", func(b *testing.B) {
		b.SetBytes(api.BlockSize)
		for i := 0; i < b.N; i++ {
			Impl.Decrypt(&state, &schedule)
		}
	})
	b.Run("ExpandKey", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			ExpandKey(&schedule, &key)
		}
	})
}
