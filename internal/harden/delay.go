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
	"sync/atomic"

	"github.com/oasisprotocol/aesprotected/internal/prng"
)

// spin receives a store per busy-wait iteration so that the loop has an
// observable side effect and cannot be removed by the compiler.
var spin uint32

// Delay busy-waits for n iterations without yielding.
//
//go:noinline
func Delay(n uint16) {
	for ; n > 0; n-- {
		atomic.StoreUint32(&spin, uint32(n))
	}
}

// RandomDelay busy-waits for a uniformly random number of iterations in
// [0, bound).
func RandomDelay(rng *prng.Rand, bound uint16) {
	if bound == 0 {
		return
	}
	Delay(uint16(rng.Intn(int(bound))))
}
