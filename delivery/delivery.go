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

// Package delivery hands a finished archive to the user: a direct save when
// the environment offers one, a download into a directory otherwise.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrCancelled is returned by a Saver when the user declines to save. It is a
// handled outcome, not a failure.
var ErrCancelled = errors.New("save cancelled")

// Outcome says how an archive was delivered.
type Outcome int

const (
	Saved Outcome = iota
	Downloaded
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Saved:
		return "saved"
	case Downloaded:
		return "downloaded"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Receipt reports a handled delivery. Path is empty when cancelled.
type Receipt struct {
	Outcome Outcome
	Path    string
}

// Saver writes the archive to a location the user picks.
type Saver interface {
	Save(ctx context.Context, archive []byte, suggested string) (string, error)
}

// Downloader writes the archive without asking.
type Downloader interface {
	Download(ctx context.Context, archive []byte, filename string) (string, error)
}

// Probe reports whether direct save is available in the current environment.
type Probe func() bool

// DeliveryAttempt records one failed strategy.
type DeliveryAttempt struct {
	Strategy string
	Err      error
}

// DeliveryError is returned when every strategy failed.
type DeliveryError struct {
	Attempts []DeliveryAttempt
}

func (e *DeliveryError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Strategy, a.Err)
	}
	return "delivery failed: " + strings.Join(parts, "; ")
}

func (e *DeliveryError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// Sink delivers archives, trying direct save before download.
type Sink struct {
	saver      Saver
	probe      Probe
	downloader Downloader
	logger     *slog.Logger
}

// Option configures a Sink.
type Option func(*Sink)

// WithSaver enables direct save, gated by probe. A nil probe means always
// available.
func WithSaver(saver Saver, probe Probe) Option {
	return func(s *Sink) {
		s.saver = saver
		s.probe = probe
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSink creates a Sink that falls back to downloader.
func NewSink(downloader Downloader, opts ...Option) *Sink {
	s := &Sink{downloader: downloader, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ArchiveName returns the archive file name for a result file name.
func ArchiveName(filename string) string {
	if filename == "" {
		filename = "document"
	}
	return filename + ".zip"
}

// Deliver persists archive as <filename>.zip. A cancelled save is reported as
// Cancelled without falling back; any other save failure falls back to the
// downloader.
func (s *Sink) Deliver(ctx context.Context, archive []byte, filename string) (Receipt, error) {
	name := ArchiveName(filename)
	var attempts []DeliveryAttempt

	if s.saver != nil && (s.probe == nil || s.probe()) {
		path, err := s.saver.Save(ctx, archive, name)
		switch {
		case err == nil:
			s.logger.Info("archive saved", "path", path)
			return Receipt{Outcome: Saved, Path: path}, nil
		case errors.Is(err, ErrCancelled):
			s.logger.Info("save cancelled", "archive", name)
			return Receipt{Outcome: Cancelled}, nil
		case ctx.Err() != nil:
			return Receipt{}, &DeliveryError{Attempts: []DeliveryAttempt{{Strategy: "save", Err: err}}}
		}
		s.logger.Warn("direct save failed, falling back to download", "error", err)
		attempts = append(attempts, DeliveryAttempt{Strategy: "save", Err: err})
	}

	if s.downloader == nil {
		attempts = append(attempts, DeliveryAttempt{Strategy: "download", Err: errors.New("no downloader configured")})
		return Receipt{}, &DeliveryError{Attempts: attempts}
	}
	path, err := s.downloader.Download(ctx, archive, name)
	if err != nil {
		attempts = append(attempts, DeliveryAttempt{Strategy: "download", Err: err})
		return Receipt{}, &DeliveryError{Attempts: attempts}
	}
	s.logger.Info("archive downloaded", "path", path)
	return Receipt{Outcome: Downloaded, Path: path}, nil
}
