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

// Package gf256 implements multiplication in GF(2^8).
package gf256

// Poly is the low byte of the AES reduction polynomial x^8 + x^4 + x^3 + x + 1.
const Poly = 0x1b

// Mul returns a * b over GF(2) reduced modulo x^8 + poly.
//
// The loop always runs 8 iterations regardless of the operands.
func Mul(a, b, poly byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		// mask is 0xff iff the low bit of b is set.
		mask := -(b & 1)
		r ^= a & mask

		carry := -(a >> 7)
		a = (a << 1) ^ (poly & carry)
		b >>= 1
	}
	return r
}
