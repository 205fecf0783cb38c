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

package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvRandomDelay = "AESPROTECTED_RANDOM_DELAY"
	EnvDummyRounds = "AESPROTECTED_DUMMY_ROUNDS"
	EnvAntiDFA     = "AESPROTECTED_ANTIDFA"
	EnvRedundancy  = "AESPROTECTED_REDUNDANCY"
	EnvSeed        = "AESPROTECTED_SEED"
	EnvSamples     = "AESPROTECTED_ASSESS_SAMPLES"
)

// ApplyEnvironment applies environment variable overrides to cfg.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvRandomDelay); v != "" {
		cfg.Countermeasures.RandomDelay = parseBool(v)
	}

	if v := os.Getenv(EnvDummyRounds); v != "" {
		cfg.Countermeasures.DummyRounds = parseBool(v)
	}

	if v := os.Getenv(EnvAntiDFA); v != "" {
		cfg.Countermeasures.AntiDFA = parseBool(v)
	}

	if v := os.Getenv(EnvRedundancy); v != "" {
		cfg.Countermeasures.Redundancy = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvSeed); v != "" {
		cfg.Seed = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvSamples); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Assess.Samples = n
		}
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
