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

var mvCmd = &cobra.Command{
	Use:   "mv <src> <dst>",
	Short: "Rename or relocate a path within a fresh FileSystem",
	Long: `mv runs store.Move, the same constant-time unlink/relink the shell
subcommand's own mv uses when src and dst share a FileSystem, falling
back to copy-then-delete across FileSystem instances.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, err := newFileSystem()
		if err != nil {
			return err
		}
		view := fsys.NewView()
		return store.Move(view, fsys.ParsePath(args[0]), view, fsys.ParsePath(args[1]), 0)
	},
}
