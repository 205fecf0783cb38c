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

package cli

import (
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/oasisprotocol/aesprotected"
)

var errInvalidHex = errors.New("invalid hex input")

type cipherFlags struct {
	key string
	iv  string
}

func (f *cipherFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.key, "key", "", "AES-128 key (hex, required)")
	cmd.Flags().StringVar(&f.iv, "iv", "", "CBC initialization vector (hex); ECB when empty")
	_ = cmd.MarkFlagRequired("key")
}

func decodeHex(what, s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, errInvalidHex)
	}
	return b, nil
}

func newEncryptCommand(opts *options) *cobra.Command {
	var f cipherFlags

	cmd := &cobra.Command{
		Use:   "encrypt [flags] HEX",
		Short: "Encrypt whole blocks (ECB, or CBC with --iv)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !aesprotected.EncryptionEnabled() {
				return aesprotected.ErrEncryptionDisabled
			}
			return runCipher(cmd, opts, &f, args[0], true)
		},
	}
	f.register(cmd)

	return cmd
}

func newDecryptCommand(opts *options) *cobra.Command {
	var f cipherFlags

	cmd := &cobra.Command{
		Use:   "decrypt [flags] HEX",
		Short: "Decrypt whole blocks (ECB, or CBC with --iv)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCipher(cmd, opts, &f, args[0], false)
		},
	}
	f.register(cmd)

	return cmd
}

func runCipher(cmd *cobra.Command, opts *options, f *cipherFlags, input string, encrypt bool) error {
	key, err := decodeHex("key", f.key)
	if err != nil {
		return err
	}
	defer func() {
		for i := range key {
			key[i] = 0
		}
	}()

	src, err := decodeHex("input", input)
	if err != nil {
		return err
	}
	if len(src)%aesprotected.BlockSize != 0 {
		return fmt.Errorf("input: %w", aesprotected.ErrInvalidLength)
	}

	cfg, rng, err := opts.engineConfig()
	if err != nil {
		return err
	}
	blk, err := aesprotected.NewCipher(key, cfg, rng)
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}
	defer blk.(interface{ Reset() }).Reset()

	dst := make([]byte, len(src))
	switch f.iv {
	case "":
		for off := 0; off < len(src); off += aesprotected.BlockSize {
			if encrypt {
				blk.Encrypt(dst[off:], src[off:])
			} else {
				blk.Decrypt(dst[off:], src[off:])
			}
		}
	default:
		iv, err := decodeHex("iv", f.iv)
		if err != nil {
			return err
		}
		if len(iv) != aesprotected.BlockSize {
			return fmt.Errorf("iv: %w", aesprotected.ErrInvalidLength)
		}
		var mode cipher.BlockMode
		if encrypt {
			mode = cipher.NewCBCEncrypter(blk, iv)
		} else {
			mode = cipher.NewCBCDecrypter(blk, iv)
		}
		mode.CryptBlocks(dst, src)
	}

	glog.V(1).Infof("processed %d blocks", len(src)/aesprotected.BlockSize)

	_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(dst))
	return err
}
