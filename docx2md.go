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

// Package docx2md converts Word documents (.docx) into Markdown plus the images
// they embed, and bundles the result into a ZIP archive.
package docx2md

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
)

// Converter turns DOCX bytes into a Result. It is immutable after New and safe
// for concurrent use.
type Converter struct {
	mode        ImageMode
	logger      *slog.Logger
	frontMatter bool
}

// New creates a Converter with the given options.
func New(opts ...Option) *Converter {
	c := &Converter{
		mode:   ImageSeparate,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	mode, err := ParseImageMode(string(c.mode))
	if err != nil {
		c.logger.Warn("unknown image mode, using separate", "mode", c.mode)
		mode = ImageSeparate
	}
	c.mode = mode
	return c
}

// Mode returns the image mode bound at construction.
func (c *Converter) Mode() ImageMode {
	return c.mode
}

// Convert converts a DOCX document held in memory. source is the original
// file name; only its base name is used.
func (c *Converter) Convert(data []byte, source string) (*Result, error) {
	return c.ConvertContext(context.Background(), data, source)
}

// ConvertFile reads and converts the document at path.
func (c *Converter) ConvertFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConversionError{Source: path, Stage: "read", Err: err}
	}
	return c.Convert(data, path)
}

// ConvertContext converts a document, checking ctx between stages. All
// failures are returned as *ConversionError.
func (c *Converter) ConvertContext(ctx context.Context, data []byte, source string) (*Result, error) {
	id := ConversionID(data, c.mode)
	logger := c.logger.With("conversion", id.String(), "source", source)
	fail := func(stage string, err error) (*Result, error) {
		logger.Debug("conversion failed", "stage", stage, "error", err)
		return nil, &ConversionError{Source: source, Stage: stage, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail("parse", err)
	}
	logger.Debug("parsing document", "bytes", len(data), "mode", c.mode)
	pkg, err := openPackage(data, source)
	if err != nil {
		return fail("parse", err)
	}
	doc, err := parseDocument(ctx, pkg)
	if err != nil {
		return fail("parse", err)
	}

	if err := ctx.Err(); err != nil {
		return fail("extract", err)
	}
	assets, imageWarnings := extractImages(pkg, doc)
	logger.Debug("extracted images", "occurrences", len(doc.images), "assets", len(assets))

	if err := ctx.Err(); err != nil {
		return fail("render", err)
	}
	md, used := render(doc, c.mode, assets)
	md = normalizeOutput(md)
	logger.Debug("rendered markdown", "bytes", len(md), "references", len(used))

	if c.frontMatter {
		fm := frontMatter{
			Title:        pkg.props.Title,
			Author:       pkg.props.Creator,
			Source:       path.Base(strings.ReplaceAll(source, "\\", "/")),
			Images:       c.mode,
			ConversionID: id.String(),
		}
		header, err := fm.render()
		if err != nil {
			return fail("render", err)
		}
		md = header + md
	}

	warnings := make([]Warning, 0, len(pkg.warnings)+len(imageWarnings))
	warnings = append(warnings, pkg.warnings...)
	warnings = append(warnings, imageWarnings...)
	for _, w := range warnings {
		logger.Warn(w.Message, "kind", w.Kind, "part", w.Part)
	}

	return &Result{
		Filename: baseFilename(source),
		Markdown: md,
		Images:   assets,
		Warnings: warnings,
		Mode:     c.mode,
		Title:    pkg.props.Title,
	}, nil
}

// String summarizes a result for logs.
func (r *Result) String() string {
	return fmt.Sprintf("%s.md (%d bytes, %d images, %d warnings)", r.Filename, len(r.Markdown), len(r.Images), len(r.Warnings))
}
