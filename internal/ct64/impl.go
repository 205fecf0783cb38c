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

// Package ct64 provides a portable constant time AES-128 implementation
// intended for 64 bit processors, driven by an externally expanded key
// schedule.
//
// Only one of the four bitsliced lanes is used, so performance is poor.
// It exists as an independent second data path for redundant computation,
// not as a fast cipher.
package ct64

import "github.com/oasisprotocol/aesprotected/internal/api"

var Impl api.Impl = &ct64Impl{}

type ct64Impl struct{}

func (impl *ct64Impl) Name() string {
	return "ct64"
}

func (impl *ct64Impl) Encrypt(state *api.Block, schedule *api.Schedule) {
	bcEncrypt(state, schedule)
}

func (impl *ct64Impl) Decrypt(state *api.Block, schedule *api.Schedule) {
	bcDecrypt(state, schedule)
}
