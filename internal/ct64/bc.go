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

package ct64

import (
	aes "gitlab.com/yawning/bsaes.git/ct64"

	"github.com/oasisprotocol/aesprotected/internal/api"
)

// loadRoundKey bitslices round key i into the first lane of rk.  Load4xU32
// only sets rk[0] and rk[4] before orthogonalizing, so rk is cleared first.
func loadRoundKey(rk *[8]uint64, schedule *api.Schedule, i int) {
	memwipeU64(rk[:])
	aes.Load4xU32(rk, schedule[i*api.RoundKeySize:])
}

func bcEncrypt(state *api.Block, schedule *api.Schedule) {
	var q, rk [8]uint64

	aes.Load4xU32(&q, state[:])
	loadRoundKey(&rk, schedule, 0)
	aes.AddRoundKey(&q, rk[:])

	for i := 1; i < api.Rounds; i++ {
		aes.Sbox(&q)
		aes.ShiftRows(&q)
		aes.MixColumns(&q)

		loadRoundKey(&rk, schedule, i)
		aes.AddRoundKey(&q, rk[:])
	}

	aes.Sbox(&q)
	aes.ShiftRows(&q)
	loadRoundKey(&rk, schedule, api.Rounds)
	aes.AddRoundKey(&q, rk[:])

	aes.Store4xU32(state[:], &q)
	memwipeU64(rk[:])
}

func bcDecrypt(state *api.Block, schedule *api.Schedule) {
	var q, rk [8]uint64

	aes.Load4xU32(&q, state[:])
	loadRoundKey(&rk, schedule, api.Rounds)
	aes.AddRoundKey(&q, rk[:])

	for i := api.Rounds - 1; i > 0; i-- {
		aes.InvShiftRows(&q)
		aes.InvSbox(&q)

		loadRoundKey(&rk, schedule, i)
		aes.AddRoundKey(&q, rk[:])
		aes.InvMixColumns(&q)
	}

	aes.InvShiftRows(&q)
	aes.InvSbox(&q)
	loadRoundKey(&rk, schedule, 0)
	aes.AddRoundKey(&q, rk[:])

	aes.Store4xU32(state[:], &q)
	memwipeU64(rk[:])
}

func memwipeU64(s []uint64) {
	for i := range s {
		s[i] = 0
	}
}
