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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nicholasgasior/docx2md"
	"github.com/nicholasgasior/docx2md/delivery"
	"github.com/nicholasgasior/docx2md/internal/config"
	"github.com/nicholasgasior/docx2md/internal/status"
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Convert a .docx file into a Markdown archive",
	Long: `Convert parses FILE, renders it as Markdown and bundles the Markdown with
its images into FILE-NAME.zip. On an interactive terminal the archive path is
asked for; otherwise, or when saving fails, the archive is written to the
download directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		defer closeLog()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		printOnly, _ := cmd.Flags().GetBool("print")
		u := newUI(cmd.ErrOrStderr())
		run := &converter{
			cfg:       cfg,
			logger:    logger,
			ui:        u,
			machine:   status.New(u.show),
			stdout:    cmd.OutOrStdout(),
			printOnly: printOnly,
			sink:      newSink(cfg, cmd.InOrStdin(), cmd.ErrOrStderr(), logger),
		}
		return run.convert(ctx, args[0])
	},
}

func init() {
	convertCmd.Flags().StringP(config.KeyImageMode, "m", "separate", "image handling: inline, separate or omit")
	convertCmd.Flags().StringP(config.KeyOutputDir, "o", ".", "directory suggested by the save prompt")
	convertCmd.Flags().String(config.KeyDownloadDir, "", "directory receiving archives when saving is unavailable (default: ~/Downloads)")
	convertCmd.Flags().Bool(config.KeyFrontMatter, false, "prepend YAML front matter with document properties")
	convertCmd.Flags().Bool(config.KeyNoPrompt, false, "never prompt; write straight to the download directory")
	convertCmd.Flags().Bool("print", false, "print the Markdown to stdout instead of writing an archive")

	rootCmd.AddCommand(convertCmd)
}

func newSink(cfg config.Config, in io.Reader, prompt io.Writer, logger *slog.Logger) *delivery.Sink {
	opts := []delivery.Option{delivery.WithLogger(logger)}
	if !cfg.NoPrompt {
		saver := delivery.NewPromptSaver(in, prompt, cfg.OutputDir)
		opts = append(opts, delivery.WithSaver(saver, delivery.TerminalProbe(os.Stdin)))
	}
	return delivery.NewSink(&delivery.DirDownloader{Dir: cfg.DownloadDir}, opts...)
}

// converter runs one conversion session from file to delivered archive.
type converter struct {
	cfg       config.Config
	logger    *slog.Logger
	ui        *ui
	machine   *status.Machine
	sink      *delivery.Sink
	stdout    io.Writer
	printOnly bool
}

type outcome struct {
	result *docx2md.Result
	err    error
}

func (c *converter) convert(ctx context.Context, path string) error {
	if err := c.machine.Begin(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		c.machine.Fail(fmt.Sprintf("Could not read %s.", filepath.Base(path)))
		c.logger.Debug("read input", "error", err)
		return errReported
	}

	conv := docx2md.New(
		docx2md.WithImageMode(c.cfg.ImageMode),
		docx2md.WithLogger(c.logger),
		docx2md.WithFrontMatter(c.cfg.FrontMatter),
	)
	done := make(chan outcome, 1)
	go func() {
		result, err := conv.ConvertContext(ctx, data, path)
		done <- outcome{result: result, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out = outcome{err: ctx.Err()}
	}
	if out.err != nil {
		c.machine.Fail(docx2md.UserMessage(out.err))
		c.logger.Debug("conversion error", "error", out.err)
		return errReported
	}
	result := out.result
	for _, w := range result.Warnings {
		c.ui.warning(w)
	}

	if c.printOnly {
		if _, err := io.WriteString(c.stdout, result.Markdown); err != nil {
			return err
		}
		return c.machine.Succeed(filepath.Base(path))
	}

	archive, err := docx2md.Bundle(result)
	if err != nil {
		c.machine.Fail(docx2md.UserMessage(err))
		c.logger.Debug("bundle error", "error", err)
		return errReported
	}
	if err := c.machine.Succeed(filepath.Base(path)); err != nil {
		return err
	}

	receipt, err := c.sink.Deliver(ctx, archive, result.Filename)
	if err != nil {
		c.machine.Fail(status.DownloadErrorMessage)
		c.logger.Debug("delivery error", "error", err)
		return errReported
	}
	c.ui.receipt(receipt)
	c.logger.Debug("session finished", "result", result.String(), "outcome", receipt.Outcome)
	return nil
}
