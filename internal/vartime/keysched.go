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

import "github.com/oasisprotocol/aesprotected/internal/api"

const (
	nb = 4 // Words per state.
	nk = 4 // Words per AES-128 key.
)

// ExpandKey derives the AES-128 key schedule (FIPS-197 5.2).
func ExpandKey(schedule *api.Schedule, key *api.Key) {
	ExpandKeyWith(schedule, key, NoJitter)
}

// ExpandKeyWith is ExpandKey with j invoked once per derived word.
func ExpandKeyWith(schedule *api.Schedule, key *api.Key, j Jitter) {
	copy(schedule[:api.KeySize], key[:])

	var tmp [4]byte
	for i := nk; i < nb*(api.Rounds+1); i++ {
		j.Short()
		copy(tmp[:], schedule[4*(i-1):4*i])
		if i%nk == 0 {
			// RotWord, SubWord, Rcon.
			t := tmp[0]
			tmp[0] = Sbox[tmp[1]] ^ Rcon[i/nk]
			tmp[1] = Sbox[tmp[2]]
			tmp[2] = Sbox[tmp[3]]
			tmp[3] = Sbox[t]
		}
		for b := 0; b < 4; b++ {
			schedule[4*i+b] = schedule[4*(i-nk)+b] ^ tmp[b]
		}
	}
	api.Bzero(tmp[:])
}
