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

	"github.com/heapfs-project/heapfs/internal/store"
)

var mkfsCmd = &cobra.Command{
	Use:   "mkfs",
	Short: "Validate configuration and report the layout a FileSystem would start with",
	Long: `mkfs builds a FileSystem from the bound configuration the same way
every other subcommand does, then discards it. There is nothing to
persist — the point is to catch a bad configuration (an unknown
case-sensitivity mode, a zero block size, an unsupported attribute
view) before a long-running shell session starts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, err := newFileSystem()
		if err != nil {
			return err
		}

		root, err := fsys.NewView().Lookup(fsys.ParsePath("/"), store.FollowLinks)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "roots: %v\n", fsConfig.FileSystem.Roots)
		fmt.Fprintf(cmd.OutOrStdout(), "separator: %q\n", fsConfig.FileSystem.Separator)
		fmt.Fprintf(cmd.OutOrStdout(), "case-sensitivity: %s\n", fsConfig.FileSystem.CaseSensitivity)
		fmt.Fprintf(cmd.OutOrStdout(), "normalization: %s\n", fsConfig.FileSystem.Normalization)
		fmt.Fprintf(cmd.OutOrStdout(), "block-size: %s\n", fsConfig.FileSystem.BlockSize.String())
		fmt.Fprintf(cmd.OutOrStdout(), "max-blocks: %d\n", fsConfig.FileSystem.MaxBlocks)
		fmt.Fprintf(cmd.OutOrStdout(), "attribute-views: %v\n", fsConfig.FileSystem.AttributeViews)
		fmt.Fprintf(cmd.OutOrStdout(), "root inode: id=%d isDirectory=%t\n", root.ID(), root.IsDirectory())
		return nil
	},
}
