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
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
)

// ImagesDir is the archive directory holding image assets.
const ImagesDir = "images/"

// archiveEpoch is the modification time of every entry, so equal results give
// equal archives.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// ArchiveEntry is one entry of a bundled archive.
type ArchiveEntry struct {
	Name string
	Dir  bool
	Data []byte
}

// Bundle packages result as a ZIP archive: <Filename>.md at the root and, when
// the Markdown references images, every asset under images/.
func Bundle(result *Result) ([]byte, error) {
	if result == nil {
		return nil, &BundleError{Err: errors.New("nil result")}
	}
	name := result.Filename
	if name == "" {
		name = "document"
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	mdName := name + ".md"
	if err := writeEntry(zw, mdName, []byte(result.Markdown)); err != nil {
		return nil, &BundleError{Entry: mdName, Err: err}
	}

	images := result.Images
	if result.Mode == ImageOmit {
		images = nil
	}
	if len(images) > 0 {
		if _, err := zw.CreateHeader(&zip.FileHeader{Name: ImagesDir, Method: zip.Store, Modified: archiveEpoch}); err != nil {
			return nil, &BundleError{Entry: ImagesDir, Err: err}
		}
		seen := make(map[string]bool, len(images))
		for _, img := range images {
			entry := ImagesDir + img.Name
			if img.Name == "" || strings.ContainsAny(img.Name, `/\`) || seen[img.Name] {
				return nil, &BundleError{Entry: entry, Err: fmt.Errorf("invalid or duplicate image name %q", img.Name)}
			}
			seen[img.Name] = true
			if err := writeEntry(zw, entry, img.Data); err != nil {
				return nil, &BundleError{Entry: entry, Err: err}
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, &BundleError{Err: err}
	}
	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: archiveEpoch})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadArchive lists the entries of an archive in stored order with their
// contents.
func ReadArchive(data []byte) ([]ArchiveEntry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open ZIP: %w", err)
	}
	entries := make([]ArchiveEntry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			entries = append(entries, ArchiveEntry{Name: f.Name, Dir: true})
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", f.Name, err)
		}
		entries = append(entries, ArchiveEntry{Name: f.Name, Data: content})
	}
	return entries, nil
}
