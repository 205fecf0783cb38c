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
	"runtime"
	"sync"

	"github.com/oasisprotocol/aesprotected/internal/api"
	"github.com/oasisprotocol/aesprotected/internal/memlock"
)

// SecureSchedule is a heap allocated key schedule that is locked in memory
// when the platform allows it and zeroed on Destroy.
type SecureSchedule struct {
	mu       sync.Mutex
	schedule *Schedule
	locked   bool
}

// NewSecureSchedule expands key into a new SecureSchedule.
func NewSecureSchedule(key *Key) *SecureSchedule {
	s := &SecureSchedule{
		schedule: new(Schedule),
	}
	s.locked = memlock.Lock(s.schedule[:])
	ExpandKey(s.schedule, key)

	runtime.SetFinalizer(s, (*SecureSchedule).Destroy)

	return s
}

// Schedule returns the key schedule, or nil after Destroy.
func (s *SecureSchedule) Schedule() *Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule
}

// IsLocked returns true iff the schedule memory is locked.
func (s *SecureSchedule) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Destroy zeroes and unlocks the schedule.  Safe to call multiple times.
func (s *SecureSchedule) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == nil {
		return
	}

	api.Bzero(s.schedule[:])
	if s.locked {
		memlock.Unlock(s.schedule[:])
		s.locked = false
	}
	s.schedule = nil

	runtime.SetFinalizer(s, nil)
}
