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
	"fmt"
	"path"
	"strings"
)

// ImageMode selects what happens to embedded images.
type ImageMode string

const (
	// ImageInline encodes image bytes into the Markdown as data URIs.
	ImageInline ImageMode = "inline"
	// ImageSeparate references images as sibling files under images/.
	ImageSeparate ImageMode = "separate"
	// ImageOmit replaces images with a placeholder.
	ImageOmit ImageMode = "omit"
)

// ParseImageMode parses a mode name. The aliases "embed", "embed-inline",
// "separate-files" and "none" are accepted.
func ParseImageMode(s string) (ImageMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inline", "embed", "embed-inline":
		return ImageInline, nil
	case "separate", "separate-files", "files", "":
		return ImageSeparate, nil
	case "omit", "none":
		return ImageOmit, nil
	}
	return "", fmt.Errorf("unknown image mode %q (want inline, separate or omit)", s)
}

// ImageAsset is an image extracted from the document.
type ImageAsset struct {
	// Name is unique within one Result and safe to use as a file name.
	Name     string
	Data     []byte
	MIMEType string

	id   string
	part string
}

// WarningKind categorizes conversion warnings.
type WarningKind string

const (
	WarningImageSkipped  WarningKind = "image_skipped"
	WarningImageExternal WarningKind = "image_external"
	WarningObjectSkipped WarningKind = "object_skipped"
	WarningPartIgnored   WarningKind = "part_ignored"
)

// Warning is a non-fatal issue encountered during conversion.
type Warning struct {
	Kind    WarningKind
	Part    string
	Message string
}

func (w Warning) String() string {
	if w.Part == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Message, w.Part)
}

// Result holds the output of a conversion.
type Result struct {
	// Filename is the source document name without directory and extension.
	Filename string
	Markdown string
	// Images holds every extracted image, whatever the mode. In omit mode
	// none of them is referenced and Bundle leaves them out.
	Images   []ImageAsset
	Warnings []Warning
	Mode     ImageMode
	// Title comes from the document's core properties, if set.
	Title string
}

// baseFilename derives the output name from a source document name.
func baseFilename(source string) string {
	name := path.Base(strings.ReplaceAll(source, "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	name = strings.TrimSuffix(name, path.Ext(name))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	if strings.TrimSpace(name) == "" {
		return "document"
	}
	return name
}
