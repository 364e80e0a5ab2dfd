// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory's entries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/"
		if len(args) == 1 {
			path = args[0]
		}

		fsys, err := newFileSystem()
		if err != nil {
			return err
		}
		view := fsys.NewView()

		entries, err := view.ReadDirectory(fsys.ParsePath(path))
		if err != nil {
			return err
		}
		for _, e := range entries {
			kind := "-"
			switch {
			case e.Inode.IsDirectory():
				kind = "d"
			case e.Inode.IsSymbolicLink():
				kind = "l"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %8d %s\n", kind, e.Inode.Size(), e.Name.Display())
		}
		return nil
	},
}
