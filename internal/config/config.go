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

// Package config provides the YAML profile used by the aesprotected CLI.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oasisprotocol/aesprotected"
)

// ErrInvalidSeed is the error returned when the profile seed is not
// SeedSize hex encoded bytes.
var ErrInvalidSeed = errors.New("config: invalid seed")

// Config is a CLI profile.
type Config struct {
	Version         int                   `yaml:"version"`
	Countermeasures CountermeasuresConfig `yaml:"countermeasures"`
	Delays          DelaysConfig          `yaml:"delays"`
	Assess          AssessConfig          `yaml:"assess"`

	// Seed pins the generator seed (hex).  Empty draws a fresh seed from
	// the operating system for every run.
	Seed string `yaml:"seed,omitempty"`
}

// CountermeasuresConfig toggles the countermeasures.
type CountermeasuresConfig struct {
	RandomDelay bool   `yaml:"random_delay"`
	DummyRounds bool   `yaml:"dummy_rounds"`
	AntiDFA     bool   `yaml:"antidfa"`
	Redundancy  string `yaml:"redundancy"`
}

// DelaysConfig holds the delay bounds in busy-wait iterations.  Zero
// selects the engine default.
type DelaysConfig struct {
	RoundMax uint16 `yaml:"round_max"`
	ByteMax  uint16 `yaml:"byte_max"`
	Fault    uint16 `yaml:"fault"`
}

// AssessConfig defines timing assessment settings.
type AssessConfig struct {
	Samples int `yaml:"samples"`
}

// Load reads a profile from path, on top of Defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 -- profile path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks the profile for values the engine cannot use.
func (c *Config) Validate() error {
	if _, err := aesprotected.ParseRedundancy(c.Countermeasures.Redundancy); err != nil {
		return err
	}
	if _, _, err := c.SeedBytes(); err != nil {
		return err
	}
	if c.Assess.Samples < 0 {
		return fmt.Errorf("config: negative assess.samples %d", c.Assess.Samples)
	}
	return nil
}

// EngineConfig converts the profile into an engine configuration.
func (c *Config) EngineConfig() (aesprotected.Config, error) {
	redundancy, err := aesprotected.ParseRedundancy(c.Countermeasures.Redundancy)
	if err != nil {
		return aesprotected.Config{}, err
	}

	return aesprotected.Config{
		RandomDelay:   c.Countermeasures.RandomDelay,
		DummyRounds:   c.Countermeasures.DummyRounds,
		AntiDFA:       c.Countermeasures.AntiDFA,
		Redundancy:    redundancy,
		RoundDelayMax: c.Delays.RoundMax,
		ByteDelayMax:  c.Delays.ByteMax,
		FaultDelay:    c.Delays.Fault,
	}, nil
}

// SeedBytes decodes the pinned seed.  ok is false when no seed is pinned.
func (c *Config) SeedBytes() (seed *[aesprotected.SeedSize]byte, ok bool, err error) {
	if c.Seed == "" {
		return nil, false, nil
	}

	b, err := hex.DecodeString(c.Seed)
	if err != nil || len(b) != aesprotected.SeedSize {
		return nil, false, ErrInvalidSeed
	}

	seed = new([aesprotected.SeedSize]byte)
	copy(seed[:], b)
	return seed, true, nil
}
