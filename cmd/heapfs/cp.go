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
	"github.com/spf13/cobra"

	"github.com/heapfs-project/heapfs/internal/store"
)

var cpCmd = &cobra.Command{
	Use:   "cp <src> <dst>",
	Short: "Copy a file, symlink, or directory (recursively) within a fresh FileSystem",
	Long: `cp runs store.Copy against the FileSystem this invocation starts
with. Since nothing persists between process invocations, src and dst
are only meaningful here against paths this same command is wired to
produce elsewhere (e.g. a config-file root already carrying data); the
shell subcommand is where cp is useful interactively, since its
FileSystem survives across commands.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, err := newFileSystem()
		if err != nil {
			return err
		}
		view := fsys.NewView()
		return store.Copy(view, fsys.ParsePath(args[0]), view, fsys.ParsePath(args[1]), 0)
	},
}
