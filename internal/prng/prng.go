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

// Package prng provides the caller seeded pseudorandom generator that
// drives timing jitter and decoy execution.
//
// The output only randomizes when and on what dummy data work happens; it
// never influences the cipher result.  Its strength as a countermeasure is
// bounded by the entropy of the seed, which the caller must supply.
package prng

import (
	"golang.org/x/crypto/chacha20"
)

// SeedSize is the size of a generator seed in bytes.
const SeedSize = chacha20.KeySize

const bufSize = 64

// Rand is a ChaCha20 keystream generator.  It is not safe for
// concurrent use.
type Rand struct {
	stream *chacha20.Cipher
	buf    [bufSize]byte
	off    int
}

// New returns a generator seeded with seed.
func New(seed *[SeedSize]byte) *Rand {
	r := new(Rand)
	r.Reseed(seed)
	return r
}

// Reseed replaces the generator state.  Pending buffered output is
// discarded.
func (r *Rand) Reseed(seed *[SeedSize]byte) {
	var nonce [chacha20.NonceSize]byte
	stream, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		// Unreachable, the key and nonce sizes are fixed.
		panic("prng: " + err.Error())
	}
	r.stream = stream
	r.refill()
}

func (r *Rand) refill() {
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.stream.XORKeyStream(r.buf[:], r.buf[:])
	r.off = 0
}

// Byte returns a uniformly distributed byte.
func (r *Rand) Byte() byte {
	if r.off == bufSize {
		r.refill()
	}
	b := r.buf[r.off]
	r.buf[r.off] = 0
	r.off++
	return b
}

// Uint16 returns a uniformly distributed uint16.
func (r *Rand) Uint16() uint16 {
	return uint16(r.Byte()) | uint16(r.Byte())<<8
}

// Intn returns a uniformly distributed value in [0, n).  It panics if
// n <= 0 or n > 65536.
func (r *Rand) Intn(n int) int {
	if n <= 0 || n > 1<<16 {
		panic("prng: invalid argument to Intn")
	}
	if n == 1 {
		return 0
	}

	// Rejection sampling over the largest multiple of n.
	limit := (1 << 16) - (1<<16)%n
	for {
		v := int(r.Uint16())
		if v < limit {
			return v % n
		}
	}
}

// Fill overwrites b with generator output.
func (r *Rand) Fill(b []byte) {
	for i := range b {
		b[i] = r.Byte()
	}
}
