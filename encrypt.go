//go:build !aesprotected_decrypt_only

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

package aesprotected

import "github.com/oasisprotocol/aesprotected/internal/api"

const encryptionEnabled = true

// ECBEncrypt encrypts a single block in place.
func (e *Engine) ECBEncrypt(state *Block, schedule *Schedule) {
	e.inner.Encrypt(state, schedule)
}

// CBCEncrypt XORs iv into state and encrypts it in place.
func (e *Engine) CBCEncrypt(state *Block, iv *IV, schedule *Schedule) {
	api.XORBlock(state, (*[BlockSize]byte)(iv))
	e.inner.Encrypt(state, schedule)
}

// CBCEncryptBlocks encrypts whole blocks of src into dst in CBC mode.  dst
// and src may overlap entirely.  A block whose encryption trips fault
// detection is output as zeros and chains into the next block as such.
func (e *Engine) CBCEncryptBlocks(dst, src []byte, iv *IV, schedule *Schedule) error {
	if len(src)%BlockSize != 0 || len(dst) < len(src) {
		return ErrInvalidLength
	}

	var (
		state Block
		chain = *iv
	)
	for off := 0; off < len(src); off += BlockSize {
		copy(state[:], src[off:off+BlockSize])
		e.CBCEncrypt(&state, &chain, schedule)
		copy(dst[off:off+BlockSize], state[:])
		chain = IV(state)
	}
	api.Bzero(state[:])

	return nil
}

func (b *blockCipher) encrypt(state *Block) {
	b.engine.ECBEncrypt(state, b.liveSchedule())
}

func selfTestEncrypt(e *Engine, schedule *Schedule) bool {
	state := selfTestPlaintext
	e.ECBEncrypt(&state, schedule)
	return state == selfTestCiphertext
}
