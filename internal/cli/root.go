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

// Package cli implements the aesprotected developer command line.
package cli

import (
	"crypto/rand"
	"flag"
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/oasisprotocol/aesprotected"
	"github.com/oasisprotocol/aesprotected/internal/config"
)

type options struct {
	configPath  string
	randomDelay bool
	dummyRounds bool
	antiDFA     bool
	redundancy  string
	seed        string

	cfg *config.Config
}

// NewRootCommand returns the aesprotected root command.
func NewRootCommand() *cobra.Command {
	opts := new(options)

	cmd := &cobra.Command{
		Use:   "aesprotected",
		Short: "Hardened AES-128 block engine",
		Long: `aesprotected drives the hardened AES-128 engine from the command line.

Countermeasures come from the build tags, a YAML profile (--config), the
AESPROTECTED_* environment variables and the flags below, in that order.

Example:
  aesprotected encrypt --key 000102030405060708090a0b0c0d0e0f 00112233445566778899aabbccddeeff
  aesprotected selftest --antidfa --redundancy diverse
  aesprotected assess --random-delay --dummy-rounds --samples 50000`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML profile path")
	pf.BoolVar(&opts.randomDelay, "random-delay", false, "enable random delays")
	pf.BoolVar(&opts.dummyRounds, "dummy-rounds", false, "enable decoy rounds")
	pf.BoolVar(&opts.antiDFA, "antidfa", false, "enable redundant computation")
	pf.StringVar(&opts.redundancy, "redundancy", "", "second pass of --antidfa: same or diverse")
	pf.StringVar(&opts.seed, "seed", "", "pin the generator seed (hex)")
	pf.AddGoFlagSet(flag.CommandLine)

	cmd.AddCommand(
		newEncryptCommand(opts),
		newDecryptCommand(opts),
		newSelfTestCommand(opts),
		newAssessCommand(opts),
	)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	defer glog.Flush()

	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

func (opts *options) resolve(cmd *cobra.Command) error {
	cfg := config.Defaults()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		glog.V(1).Infof("loaded profile %s", opts.configPath)
	}
	config.ApplyEnvironment(cfg)

	flags := cmd.Flags()
	if flags.Changed("random-delay") {
		cfg.Countermeasures.RandomDelay = opts.randomDelay
	}
	if flags.Changed("dummy-rounds") {
		cfg.Countermeasures.DummyRounds = opts.dummyRounds
	}
	if flags.Changed("antidfa") {
		cfg.Countermeasures.AntiDFA = opts.antiDFA
	}
	if flags.Changed("redundancy") {
		cfg.Countermeasures.Redundancy = opts.redundancy
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	opts.cfg = cfg

	return nil
}

func (opts *options) engineConfig() (aesprotected.Config, *aesprotected.Rand, error) {
	ec, err := opts.cfg.EngineConfig()
	if err != nil {
		return ec, nil, err
	}

	seed, pinned, err := opts.cfg.SeedBytes()
	if err != nil {
		return ec, nil, err
	}
	if !pinned {
		seed = new([aesprotected.SeedSize]byte)
		if _, err = rand.Read(seed[:]); err != nil {
			return ec, nil, fmt.Errorf("drawing seed: %w", err)
		}
	}
	rng := aesprotected.NewRand(seed)
	for i := range seed {
		seed[i] = 0
	}

	glog.V(1).Infof("engine: random_delay=%v dummy_rounds=%v antidfa=%v redundancy=%v pinned_seed=%v",
		ec.RandomDelay, ec.DummyRounds, ec.AntiDFA, ec.Redundancy, pinned)

	return ec, rng, nil
}
