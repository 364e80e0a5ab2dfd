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
	"sort"

	"github.com/spf13/cobra"

	"github.com/heapfs-project/heapfs/internal/store"
)

var statView string

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Print a path's attributes for one attribute view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, err := newFileSystem()
		if err != nil {
			return err
		}
		view := fsys.NewView()

		inode, err := view.Lookup(fsys.ParsePath(args[0]), store.FollowLinks)
		if err != nil {
			return err
		}

		attrs, err := fsys.Attributes().ReadAll(inode, statView)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", name, attrs[name])
		}
		return nil
	},
}

func init() {
	statCmd.Flags().StringVar(&statView, "view", "basic", "Attribute view to read (basic, owner, posix, dos, user).")
}
