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
	"os"

	"github.com/spf13/cobra"

	"github.com/nicholasgasior/docx2md"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect ARCHIVE",
	Short: "List the entries of a docx2md archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}
		entries, err := docx2md.ReadArchive(data)
		if err != nil {
			return err
		}
		theme := defaultTheme
		out := cmd.OutOrStdout()
		for _, e := range entries {
			if e.Dir {
				fmt.Fprintln(out, theme.statusStyle().Render(e.Name))
				continue
			}
			fmt.Fprintf(out, "%s %s\n", e.Name, theme.hintStyle().Render(fmt.Sprintf("(%d bytes)", len(e.Data))))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
