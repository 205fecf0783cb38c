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

// Package assess implements a fixed-vs-random timing leakage assessment
// (TVLA) for single block operations.
//
// Calls are interleaved at random between a fixed input block and fresh
// random input blocks.  Welch's t statistic over the two duration classes
// above TThreshold in magnitude indicates first order timing leakage.
package assess

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/oasisprotocol/aesprotected/internal/api"
	"github.com/oasisprotocol/aesprotected/internal/prng"
)

// TThreshold is the conventional TVLA pass/fail bound on |t|.
const TThreshold = 4.5

// MinSamples is the minimum number of samples per class.
const MinSamples = 2

// ErrTooFewSamples is the error returned when a class holds fewer than
// MinSamples measurements.
var ErrTooFewSamples = errors.New("assess: too few samples")

// Operation is a single block operation under assessment.  It must
// process state in place.
type Operation func(state *api.Block)

// Traces is a set of interleaved measurements.
type Traces struct {
	// Durations holds one call duration in nanoseconds per sample.
	Durations *mat.VecDense

	// Fixed is true for samples measured on the fixed input.
	Fixed []bool
}

// Len returns the number of samples.
func (tr *Traces) Len() int {
	return len(tr.Fixed)
}

// Collect measures n calls of op, each on either the fixed block or a
// random block drawn from rng, with the class picked by rng.
func Collect(op Operation, fixed *api.Block, n int, rng *prng.Rand) (*Traces, error) {
	if n < 2*MinSamples {
		return nil, ErrTooFewSamples
	}

	tr := &Traces{
		Durations: mat.NewVecDense(n, nil),
		Fixed:     make([]bool, n),
	}

	var state api.Block
	for i := 0; i < n; i++ {
		isFixed := rng.Byte()&1 == 0
		if isFixed {
			state = *fixed
		} else {
			rng.Fill(state[:])
		}

		start := time.Now()
		op(&state)
		elapsed := time.Since(start)

		tr.Durations.SetVec(i, float64(elapsed.Nanoseconds()))
		tr.Fixed[i] = isFixed
	}
	api.Bzero(state[:])

	glog.V(1).Infof("assess: collected %d samples", n)

	return tr, nil
}

// Class summarizes the durations of one input class.
type Class struct {
	N      int
	Mean   float64
	StdDev float64
}

func (c Class) String() string {
	return fmt.Sprintf("n=%d mean=%.1fns sd=%.1fns", c.N, c.Mean, c.StdDev)
}

// Report is the result of Analyze.
type Report struct {
	Fixed  Class
	Random Class

	// T is Welch's t statistic of the fixed class against the random
	// class.
	T float64

	// Spread is the coefficient of variation of all durations, a measure
	// of how much the random delays smear the timing.
	Spread float64
}

// Leaks returns true iff |T| exceeds TThreshold.
func (r *Report) Leaks() bool {
	return math.Abs(r.T) > TThreshold
}

// splitModel returns 0/1 indicator vectors for the fixed and the random
// class.
func splitModel(tr *Traces) (*mat.VecDense, *mat.VecDense) {
	fixed := mat.NewVecDense(tr.Len(), nil)
	random := mat.NewVecDense(tr.Len(), nil)
	for i, isFixed := range tr.Fixed {
		if isFixed {
			fixed.SetVec(i, 1.0)
		} else {
			random.SetVec(i, 1.0)
		}
	}
	return fixed, random
}

func summarize(durations []float64, weights *mat.VecDense) Class {
	n := int(mat.Sum(weights))
	if n < MinSamples {
		return Class{N: n}
	}
	mean, variance := stat.MeanVariance(durations, weights.RawVector().Data)
	return Class{
		N:      n,
		Mean:   mean,
		StdDev: math.Sqrt(variance),
	}
}

// Analyze computes the per-class statistics and Welch's t.
func Analyze(tr *Traces) (*Report, error) {
	if tr == nil || tr.Durations == nil || tr.Durations.Len() != tr.Len() {
		return nil, ErrTooFewSamples
	}

	s0, s1 := splitModel(tr)
	durations := tr.Durations.RawVector().Data

	r := &Report{
		Fixed:  summarize(durations, s0),
		Random: summarize(durations, s1),
	}
	if r.Fixed.N < MinSamples || r.Random.N < MinSamples {
		return nil, ErrTooFewSamples
	}

	v0 := r.Fixed.StdDev * r.Fixed.StdDev / float64(r.Fixed.N)
	v1 := r.Random.StdDev * r.Random.StdDev / float64(r.Random.N)
	switch se := math.Sqrt(v0 + v1); se {
	case 0:
		if r.Fixed.Mean != r.Random.Mean {
			r.T = math.Inf(int(math.Copysign(1, r.Fixed.Mean-r.Random.Mean)))
		}
	default:
		r.T = (r.Fixed.Mean - r.Random.Mean) / se
	}

	mean, sd := stat.MeanStdDev(durations, nil)
	if mean > 0 {
		r.Spread = sd / mean
	}

	glog.V(1).Infof("assess: fixed %v, random %v, t=%.3f", r.Fixed, r.Random, r.T)

	return r, nil
}
