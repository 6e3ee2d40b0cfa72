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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/term"
)

// TerminalProbe reports whether f is an interactive terminal, which is what
// PromptSaver needs to ask for a path.
func TerminalProbe(f *os.File) Probe {
	return func() bool {
		return f != nil && term.IsTerminal(int(f.Fd()))
	}
}

// PromptSaver asks for a destination path on a terminal. An empty answer takes
// the suggested path; "-" or end of input cancels.
type PromptSaver struct {
	in  *bufio.Reader
	out io.Writer
	dir string

	mu sync.Mutex
	// pending is a read still waiting for input after a cancelled Save. The
	// next Save takes its answer instead of starting a second reader.
	pending chan answer
}

// NewPromptSaver creates a PromptSaver suggesting paths inside dir.
func NewPromptSaver(in io.Reader, out io.Writer, dir string) *PromptSaver {
	return &PromptSaver{in: bufio.NewReader(in), out: out, dir: dir}
}

type answer struct {
	line string
	err  error
}

func (p *PromptSaver) Save(ctx context.Context, archive []byte, suggested string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	def := filepath.Join(p.dir, suggested)
	fmt.Fprintf(p.out, "Save %s to [%s] (- to cancel): ", suggested, def)

	a, err := p.readAnswer(ctx)
	if err != nil {
		return "", err
	}
	if a.err != nil {
		if errors.Is(a.err, io.EOF) && a.line == "" {
			return "", ErrCancelled
		}
		if !errors.Is(a.err, io.EOF) {
			return "", fmt.Errorf("read answer: %w", a.err)
		}
	}

	target := strings.TrimSpace(a.line)
	switch target {
	case "-":
		return "", ErrCancelled
	case "":
		target = def
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, suggested)
	}
	if err := writeAtomic(target, archive); err != nil {
		return "", err
	}
	return target, nil
}

// readAnswer waits for one line of input. A blocked read cannot be
// interrupted, so on cancellation it stays pending for the next call.
func (p *PromptSaver) readAnswer(ctx context.Context) (answer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending == nil {
		ch := make(chan answer, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- answer{line: line, err: err}
		}()
		p.pending = ch
	}
	select {
	case <-ctx.Done():
		return answer{}, ctx.Err()
	case a := <-p.pending:
		p.pending = nil
		return a, nil
	}
}

// writeAtomic writes data to a temp file next to path and renames it into
// place. The temp file is removed on failure.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".docx2md-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
