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

import "github.com/oasisprotocol/aesprotected"

// DefaultAssessSamples is the default number of timing samples.
const DefaultAssessSamples = 20000

// Defaults returns the default profile: the countermeasures selected by
// build tags and the engine's delay bounds.
func Defaults() *Config {
	bc := aesprotected.DefaultConfig()

	return &Config{
		Version: 1,
		Countermeasures: CountermeasuresConfig{
			RandomDelay: bc.RandomDelay,
			DummyRounds: bc.DummyRounds,
			AntiDFA:     bc.AntiDFA,
			Redundancy:  bc.Redundancy.String(),
		},
		Delays: DelaysConfig{
			RoundMax: aesprotected.DefaultRoundDelayMax,
			ByteMax:  aesprotected.DefaultByteDelayMax,
			Fault:    aesprotected.DefaultFaultDelay,
		},
		Assess: AssessConfig{
			Samples: DefaultAssessSamples,
		},
	}
}
