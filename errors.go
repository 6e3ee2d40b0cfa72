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

package docx2md

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ParseErrorKind distinguishes input that is not a DOCX package from a DOCX
// package that cannot be read.
type ParseErrorKind int

const (
	// NotDocument means the input is not a DOCX package at all.
	NotDocument ParseErrorKind = iota
	// Corrupt means the package is damaged or a required part is malformed.
	Corrupt
	// Unsupported means the package uses a feature that cannot be read, such as
	// encryption.
	Unsupported
)

func (k ParseErrorKind) String() string {
	switch k {
	case NotDocument:
		return "not a DOCX document"
	case Corrupt:
		return "corrupt document"
	case Unsupported:
		return "unsupported document feature"
	}
	return "parse error"
}

// ParseError is returned when the input cannot be decoded into a document tree.
type ParseError struct {
	Kind ParseErrorKind
	// Part is the package part being read, if any.
	Part string
	// Offset is the byte offset into Part where decoding stopped, or -1.
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	parts := []string{e.Kind.String()}
	if e.Part != "" {
		parts = append(parts, fmt.Sprintf("part=%q", e.Part))
	}
	if e.Offset >= 0 {
		parts = append(parts, fmt.Sprintf("offset=%d", e.Offset))
	}
	msg := strings.Join(parts, " ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func notDocument(err error) *ParseError {
	return &ParseError{Kind: NotDocument, Offset: -1, Err: err}
}

func corrupt(part string, offset int64, err error) *ParseError {
	return &ParseError{Kind: Corrupt, Part: part, Offset: offset, Err: err}
}

// ConversionError is the single failure mode of Converter.Convert. It wraps the
// first fatal error raised by a pipeline stage.
type ConversionError struct {
	Source string
	Stage  string
	Err    error
}

func (e *ConversionError) Error() string {
	var b strings.Builder
	b.WriteString("conversion failed")
	if e.Source != "" {
		fmt.Fprintf(&b, " for %q", e.Source)
	}
	if e.Stage != "" {
		fmt.Fprintf(&b, " during %s", e.Stage)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ConversionError) Unwrap() error { return e.Err }

// BundleError is returned when the archive cannot be assembled.
type BundleError struct {
	Entry string
	Err   error
}

func (e *BundleError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("bundle archive: %v", e.Err)
	}
	return fmt.Sprintf("bundle archive entry %q: %v", e.Entry, e.Err)
}

func (e *BundleError) Unwrap() error { return e.Err }

// IsNotDocument reports whether err was caused by input that is not a DOCX
// package.
func IsNotDocument(err error) bool {
	var target *ParseError
	return errors.As(err, &target) && target.Kind == NotDocument
}

// UserMessage returns a single human-readable sentence for err, suitable for a
// status line. Diagnostic detail stays in the error value.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		parseErr  *ParseError
		bundleErr *BundleError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The conversion was cancelled."
	case errors.As(err, &parseErr) && parseErr.Kind == NotDocument:
		return "This file is not a Word document (.docx)."
	case errors.As(err, &parseErr) && parseErr.Kind == Unsupported:
		return "This Word document uses a feature that cannot be converted, such as password protection."
	case errors.As(err, &parseErr):
		return "This Word document is damaged and could not be read."
	case errors.As(err, &bundleErr):
		return "Failed to generate download. Please try again."
	}
	return "An unexpected error occurred."
}
