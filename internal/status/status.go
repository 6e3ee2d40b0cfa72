// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package status holds the presentation state of a conversion session:
// idle, converting, success or error, each with a message for the user.
package status

import (
	"errors"
	"fmt"
	"sync"
)

// State is the phase of the session.
type State int

const (
	Idle State = iota
	Converting
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Converting:
		return "converting"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// DefaultErrorMessage is shown when a failure carries no message of its own.
const DefaultErrorMessage = "An unexpected error occurred"

// DownloadErrorMessage is shown when the archive could not be delivered.
const DownloadErrorMessage = "Failed to generate download. Please try again."

var (
	// ErrBusy is returned by Begin while a conversion is in flight.
	ErrBusy = errors.New("a conversion is already in progress")
	// ErrNotConverting is returned by Succeed outside a conversion.
	ErrNotConverting = errors.New("no conversion in progress")
)

// Status is a snapshot of the machine.
type Status struct {
	State   State
	Message string
}

// Machine serializes state transitions and reports each one to an observer.
type Machine struct {
	mu       sync.Mutex
	cur      Status
	onChange func(Status)
}

// New returns an idle Machine. onChange, if non-nil, is called with every new
// status while the machine is locked, so it must not call back into it.
func New(onChange func(Status)) *Machine {
	return &Machine{onChange: onChange}
}

// Current returns the current status.
func (m *Machine) Current() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// Begin starts a conversion. It fails with ErrBusy if one is in flight.
func (m *Machine) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur.State == Converting {
		return ErrBusy
	}
	m.set(Status{State: Converting})
	return nil
}

// Succeed finishes the conversion of the named file.
func (m *Machine) Succeed(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur.State != Converting {
		return ErrNotConverting
	}
	m.set(Status{State: Success, Message: SuccessMessage(name)})
	return nil
}

// Fail moves to the error state from any state. Delivery can fail after a
// successful conversion.
func (m *Machine) Fail(message string) {
	if message == "" {
		message = DefaultErrorMessage
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(Status{State: Error, Message: message})
}

// Reset returns to idle, e.g. when a new file is selected.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(Status{State: Idle})
}

func (m *Machine) set(s Status) {
	m.cur = s
	if m.onChange != nil {
		m.onChange(s)
	}
}

// SuccessMessage is the message shown after converting name.
func SuccessMessage(name string) string {
	return fmt.Sprintf("Successfully converted %q. Your download is ready!", name)
}
