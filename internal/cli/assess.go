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
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/oasisprotocol/aesprotected"
	"github.com/oasisprotocol/aesprotected/internal/assess"
	"github.com/oasisprotocol/aesprotected/internal/config"
)

var errLeakDetected = errors.New("timing leakage detected")

func newAssessCommand(opts *options) *cobra.Command {
	var (
		samples    int
		op         string
		failOnLeak bool
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run a fixed-vs-random timing assessment on a random key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("samples") {
				samples = opts.cfg.Assess.Samples
			}

			cfg, rng, err := opts.engineConfig()
			if err != nil {
				return err
			}

			key := make([]byte, aesprotected.KeySize)
			if _, err = rand.Read(key); err != nil {
				return fmt.Errorf("drawing key: %w", err)
			}
			blk, err := aesprotected.NewCipher(key, cfg, rng)
			for i := range key {
				key[i] = 0
			}
			if err != nil {
				return err
			}
			defer blk.(interface{ Reset() }).Reset()

			var target assess.Operation
			switch op {
			case "encrypt":
				if !aesprotected.EncryptionEnabled() {
					return aesprotected.ErrEncryptionDisabled
				}
				target = func(state *aesprotected.Block) { blk.Encrypt(state[:], state[:]) }
			case "decrypt":
				target = func(state *aesprotected.Block) { blk.Decrypt(state[:], state[:]) }
			default:
				return fmt.Errorf("unknown operation %q", op)
			}

			var fixed aesprotected.Block
			rng.Fill(fixed[:])

			glog.Infof("assessing %s with %d samples", op, samples)
			traces, err := assess.Collect(target, &fixed, samples, rng)
			if err != nil {
				return err
			}
			report, err := assess.Analyze(traces)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fixed:  %v\n", report.Fixed)
			fmt.Fprintf(out, "random: %v\n", report.Random)
			fmt.Fprintf(out, "spread: %.3f\n", report.Spread)
			fmt.Fprintf(out, "t:      %.3f (threshold %.1f)\n", report.T, assess.TThreshold)

			if report.Leaks() {
				glog.Warningf("|t| = %.3f exceeds %.1f", report.T, assess.TThreshold)
				if failOnLeak {
					return errLeakDetected
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&samples, "samples", config.DefaultAssessSamples, "number of timed calls")
	cmd.Flags().StringVar(&op, "op", "encrypt", "operation to time: encrypt or decrypt")
	cmd.Flags().BoolVar(&failOnLeak, "fail-on-leak", false, "exit with an error when |t| exceeds the threshold")

	return cmd
}
