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
	"github.com/oasisprotocol/aesprotected/internal/api"
	"github.com/oasisprotocol/aesprotected/internal/gf256"
)

// Kind selects one of the four round transforms.
type Kind uint8

const (
	// EncRound is SubBytes, ShiftRows, MixColumns, AddRoundKey.
	EncRound Kind = iota
	// EncLastRound is SubBytes, ShiftRows, AddRoundKey.
	EncLastRound
	// DecFirstRound is AddRoundKey, InvShiftRows, InvSubBytes.
	DecFirstRound
	// DecRound is AddRoundKey, InvMixColumns, InvShiftRows, InvSubBytes.
	DecRound
)

func (k Kind) String() string {
	switch k {
	case EncRound:
		return "enc_round"
	case EncLastRound:
		return "enc_lastround"
	case DecFirstRound:
		return "dec_firstround"
	case DecRound:
		return "dec_round"
	default:
		return "unknown"
	}
}

// Jitter is called between the byte passes of a round.
type Jitter interface {
	Short()
}

type noJitter struct{}

func (noJitter) Short() {}

// NoJitter is a Jitter that does nothing.
var NoJitter Jitter = noJitter{}

var (
	mixRow    = [4]byte{0x02, 0x03, 0x01, 0x01}
	invMixRow = [4]byte{0x0e, 0x0b, 0x0d, 0x09}
)

// Apply runs the round transform k on state with round key rk.
func Apply(k Kind, state *api.Block, rk *[api.RoundKeySize]byte, j Jitter) {
	switch k {
	case EncRound:
		subBytes(state, &Sbox)
		shiftRows(state, j)
		mixColumns(state, &mixRow, j)
		addRoundKey(state, rk, j)
	case EncLastRound:
		subBytes(state, &Sbox)
		shiftRows(state, j)
		addRoundKey(state, rk, j)
	case DecFirstRound:
		addRoundKey(state, rk, j)
		invShiftRows(state, j)
		subBytes(state, &InvSbox)
	case DecRound:
		addRoundKey(state, rk, j)
		mixColumns(state, &invMixRow, j)
		invShiftRows(state, j)
		subBytes(state, &InvSbox)
	default:
		panic("vartime: invalid round kind")
	}
}

// AddRoundKey XORs rk into state.
func AddRoundKey(state *api.Block, rk *[api.RoundKeySize]byte, j Jitter) {
	addRoundKey(state, rk, j)
}

func addRoundKey(state *api.Block, rk *[api.RoundKeySize]byte, j Jitter) {
	for i := 0; i < api.BlockSize; i++ {
		state[i] ^= rk[i]
		j.Short()
	}
}

func subBytes(state *api.Block, box *[256]byte) {
	for i := 0; i < api.BlockSize; i++ {
		state[i] = box[state[i]]
	}
}

// shiftRows rotates row r left by r positions.
func shiftRows(state *api.Block, j Jitter) {
	j.Short()
	for r := 1; r < 4; r++ {
		rotateRow(state, r, r)
		j.Short()
	}
}

// invShiftRows rotates row r left by 4-r positions (right by r).
func invShiftRows(state *api.Block, j Jitter) {
	j.Short()
	for r := 1; r < 4; r++ {
		rotateRow(state, r, 4-r)
		j.Short()
	}
}

func rotateRow(state *api.Block, r, shift int) {
	var row [4]byte
	for c := 0; c < 4; c++ {
		row[c] = state[4*c+r]
	}
	for c := 0; c < 4; c++ {
		state[4*c+r] = row[(c+shift)&3]
	}
}

// mixColumns multiplies each column by the circulant matrix whose first
// row is coef.
func mixColumns(state *api.Block, coef *[4]byte, j Jitter) {
	var col [4]byte
	for c := 0; c < 4; c++ {
		copy(col[:], state[4*c:4*c+4])
		for r := 0; r < 4; r++ {
			var v byte
			for i := 0; i < 4; i++ {
				v ^= gf256.Mul(coef[i], col[(r+i)&3], gf256.Poly)
			}
			state[4*c+r] = v
			j.Short()
		}
	}
}
