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

import (
	"crypto/cipher"
	"sync"
)

type blockCipher struct {
	mu       sync.Mutex
	engine   *Engine
	schedule *SecureSchedule
}

// NewCipher creates a crypto/cipher.Block backed by an Engine configured
// with cfg, so that the hardened engine can be used with the standard
// library block modes.  Calls are serialized with a mutex.
//
// In a decrypt-only build Encrypt panics with ErrEncryptionDisabled.
func NewCipher(key []byte, cfg Config, rng *Rand) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	if cfg.NeedsRand() && rng == nil {
		return nil, ErrMissingRand
	}

	var k Key
	copy(k[:], key)
	defer func() {
		for i := range k {
			k[i] = 0
		}
	}()

	return &blockCipher{
		engine:   New(cfg, rng),
		schedule: NewSecureSchedule(&k),
	}, nil
}

// BlockSize returns the cipher's block size.
func (b *blockCipher) BlockSize() int {
	return BlockSize
}

// Encrypt encrypts the first block in src into dst.  Dst and src must
// overlap entirely or not at all.
func (b *blockCipher) Encrypt(dst, src []byte) {
	if len(src) < BlockSize || len(dst) < BlockSize {
		panic(errInvalidBlock)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var state Block
	copy(state[:], src)
	b.encrypt(&state)
	copy(dst, state[:])
}

// Decrypt decrypts the first block in src into dst.  Dst and src must
// overlap entirely or not at all.
func (b *blockCipher) Decrypt(dst, src []byte) {
	if len(src) < BlockSize || len(dst) < BlockSize {
		panic(errInvalidBlock)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var state Block
	copy(state[:], src)
	b.engine.ECBDecrypt(&state, b.liveSchedule())
	copy(dst, state[:])
}

func (b *blockCipher) liveSchedule() *Schedule {
	s := b.schedule.Schedule()
	if s == nil {
		panic(errCipherReset)
	}
	return s
}

// Reset clears the key schedule.  The cipher must not be used afterwards.
func (b *blockCipher) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.schedule.Destroy()
}

var _ cipher.Block = (*blockCipher)(nil)
