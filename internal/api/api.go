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

// Package api provides the sizes, buffer types and helpers shared by the
// AES-128 backends.
package api

const (
	// BlockSize is the AES block (state) size in bytes.
	BlockSize = 16

	// KeySize is the AES-128 key size in bytes.
	KeySize = 16

	// RoundKeySize is the size of a single round key in bytes.
	RoundKeySize = 16

	// Rounds is the number of AES-128 rounds.
	Rounds = 10

	// ScheduleSize is the size of the expanded key schedule in bytes,
	// 11 round keys of RoundKeySize bytes each.
	ScheduleSize = RoundKeySize * (Rounds + 1)
)

// Block is a 16 byte AES state, column-major (index = 4*column + row).
type Block [BlockSize]byte

// Key is an AES-128 cipher key.
type Key [KeySize]byte

// Schedule is the expanded AES-128 key schedule.
type Schedule [ScheduleSize]byte

// Impl is a single block AES-128 implementation operating in place on
// a state with a pre-expanded schedule.
type Impl interface {
	Name() string

	Encrypt(state *Block, schedule *Schedule)
	Decrypt(state *Block, schedule *Schedule)
}

// RoundKey returns round key i of the schedule.
func RoundKey(schedule *Schedule, i int) *[RoundKeySize]byte {
	return (*[RoundKeySize]byte)(schedule[i*RoundKeySize : (i+1)*RoundKeySize])
}

// XORBlock sets dst = dst ^ src.
func XORBlock(dst *Block, src *[BlockSize]byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// Bzero clears the byte slice.
func Bzero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
