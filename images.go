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
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nicholasgasior/docx2md/internal/ooxml"
)

var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".ico":  "image/x-icon",
	".emf":  "image/emf",
	".wmf":  "image/wmf",
}

// extractImages resolves every image occurrence of doc to an asset, in
// document order. Occurrences that cannot be resolved produce warnings and no
// asset; the renderer shows the placeholder for them.
func extractImages(pkg *docxPackage, doc *documentNode) ([]ImageAsset, []Warning) {
	var (
		assets   []ImageAsset
		warnings []Warning
		names    = map[string]bool{}
	)
	skip := func(kind WarningKind, part, format string, args ...any) {
		warnings = append(warnings, Warning{Kind: kind, Part: part, Message: fmt.Sprintf(format, args...)})
	}
	for _, src := range doc.images {
		switch {
		case src.external != "":
			skip(WarningImageExternal, src.external, "linked image is not stored in the document")
			continue
		case src.part == "":
			skip(WarningImageSkipped, "", "image relationship %q not found", src.ref)
			continue
		}
		data, err := pkg.pkg.ReadPart(src.part)
		if err != nil {
			skip(WarningImageSkipped, src.part, "image could not be read: %v", err)
			continue
		}
		if len(data) == 0 {
			skip(WarningImageSkipped, src.part, "image part is empty")
			continue
		}

		ext, mimeType := imageType(pkg.types, src.part, data)
		stem := sanitizeName(strings.TrimSuffix(path.Base(src.part), path.Ext(src.part)))
		assets = append(assets, ImageAsset{
			Name:     uniqueName(names, stem, ext),
			Data:     data,
			MIMEType: mimeType,
			id:       src.id,
			part:     src.part,
		})
	}
	return assets, warnings
}

// imageType picks the file extension and MIME type of an image part. Known
// extensions win; otherwise the content is sniffed.
func imageType(types *ooxml.ContentTypes, part string, data []byte) (ext, mimeType string) {
	ext = strings.ToLower(path.Ext(part))
	sniffed := mimetype.Detect(data)
	if _, known := imageExtensions[ext]; !known {
		ext = ".bin"
		if strings.HasPrefix(sniffed.String(), "image/") && sniffed.Extension() != "" {
			ext = sniffed.Extension()
		}
	}

	mimeType = types.Lookup(part)
	if mimeType == "" {
		mimeType = imageExtensions[ext]
	}
	if mimeType == "" {
		mimeType, _, _ = strings.Cut(sniffed.String(), ";")
	}
	return ext, mimeType
}

// sanitizeName keeps [A-Za-z0-9._-] and replaces everything else with '_'.
func sanitizeName(stem string) string {
	stem = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, stem)
	stem = strings.Trim(stem, ".")
	if stem == "" {
		return "image"
	}
	return stem
}

// uniqueName returns stem+ext, or stem-N+ext for the first free N >= 2.
// Names are compared case-insensitively.
func uniqueName(taken map[string]bool, stem, ext string) string {
	name := stem + ext
	for n := 2; taken[strings.ToLower(name)]; n++ {
		name = stem + "-" + strconv.Itoa(n) + ext
	}
	taken[strings.ToLower(name)] = true
	return name
}
