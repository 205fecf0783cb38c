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
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/oasisprotocol/aesprotected"
)

func newSelfTestCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run the FIPS-197 known answer test through the configured engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, rng, err := opts.engineConfig()
			if err != nil {
				return err
			}

			e := aesprotected.New(cfg, rng)
			if err = aesprotected.SelfTest(e); err != nil {
				glog.Warningf("self test failed: %v", err)
				return err
			}
			glog.Infof("self test passed on %s", e.Name())

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok %s (encryption=%v random_delay=%v dummy_rounds=%v antidfa=%v redundancy=%v)\n",
				e.Name(), aesprotected.EncryptionEnabled(), cfg.RandomDelay, cfg.DummyRounds, cfg.AntiDFA, cfg.Redundancy)
			return err
		},
	}
}
