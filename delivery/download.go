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

package delivery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxDuplicates bounds the "name (N).zip" search.
const maxDuplicates = 1000

// DirDownloader writes archives into a downloads directory, never overwriting:
// an existing doc.zip makes the next one doc (1).zip, and so on.
type DirDownloader struct {
	Dir string
}

// DefaultDownloadDir returns ~/Downloads when it exists, else the working
// directory.
func DefaultDownloadDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, "Downloads")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func (d *DirDownloader) Download(ctx context.Context, archive []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := d.Dir
	if dir == "" {
		dir = DefaultDownloadDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	_, err = tmp.Write(archive)
	if err == nil {
		err = tmp.Chmod(0o644)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write download: %w", err)
	}

	for n := 0; n < maxDuplicates; n++ {
		target := filepath.Join(dir, numbered(filename, n))
		err := claim(tmp.Name(), target)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("save download %s: %w", target, err)
		}
		return target, nil
	}
	return "", fmt.Errorf("no free name for %s in %s", filename, dir)
}

// claim moves src to target unless target exists. Hard links make the check
// atomic; file systems without them fall back to an exclusive create.
func claim(src, target string) error {
	err := os.Link(src, target)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	f.Close()
	if err := os.Rename(src, target); err != nil {
		os.Remove(target)
		return err
	}
	return nil
}

// numbered returns filename for n == 0 and "stem (n).ext" otherwise.
func numbered(filename string, n int) string {
	if n == 0 {
		return filename
	}
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(filename, ext), n, ext)
}
