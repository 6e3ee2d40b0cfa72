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

// Package main is the docx2md command line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nicholasgasior/docx2md/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// v holds the merged flag, environment and file configuration.
var v *viper.Viper

// errReported marks failures already shown to the user in a status line.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "docx2md",
	Short: "Convert Word documents to Markdown archives",
	Long: `docx2md converts a .docx document into Markdown plus its images and
packages both into a ZIP archive. Images can be embedded as data URIs, written
as separate files under images/, or omitted.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		var err error
		if v, err = config.NewViper(cfgFile); err != nil {
			return err
		}
		return v.BindPFlags(cmd.Flags())
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docx2md.yaml or ~/.config/docx2md/docx2md.yaml)")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String(config.KeyLogFile, "", "also write JSON logs to this file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
