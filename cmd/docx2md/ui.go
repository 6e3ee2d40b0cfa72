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

package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/nicholasgasior/docx2md"
	"github.com/nicholasgasior/docx2md/delivery"
	"github.com/nicholasgasior/docx2md/internal/status"
)

// Theme holds the color scheme for status lines.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// ui prints status transitions and delivery results.
type ui struct {
	out   io.Writer
	theme Theme
}

func newUI(out io.Writer) *ui {
	return &ui{out: out, theme: defaultTheme}
}

// show is the status.Machine observer.
func (u *ui) show(s status.Status) {
	switch s.State {
	case status.Converting:
		fmt.Fprintln(u.out, u.theme.statusStyle().Render("Converting..."))
	case status.Success:
		fmt.Fprintln(u.out, u.theme.completedStyle().Render("✓ "+s.Message))
	case status.Error:
		fmt.Fprintln(u.out, u.theme.errorStyle().Render("✗ "+s.Message))
	}
}

func (u *ui) warning(w docx2md.Warning) {
	fmt.Fprintln(u.out, u.theme.hintStyle().Render("  warning: "+w.String()))
}

func (u *ui) receipt(r delivery.Receipt) {
	switch r.Outcome {
	case delivery.Saved:
		fmt.Fprintln(u.out, u.theme.hintStyle().Render("  saved to "+r.Path))
	case delivery.Downloaded:
		fmt.Fprintln(u.out, u.theme.hintStyle().Render("  downloaded to "+r.Path))
	case delivery.Cancelled:
		fmt.Fprintln(u.out, u.theme.hintStyle().Render("  save cancelled"))
	}
}
