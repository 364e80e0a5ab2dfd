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
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heapfs-project/heapfs"
	"github.com/heapfs-project/heapfs/internal/store"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Drive one FileSystem interactively from stdin",
	Long: `shell reads one command per line from stdin until EOF or "exit",
keeping a single FileSystemView alive across commands so cd, cp and mv
carry real state the one-shot subcommands cannot. Recognized commands:
pwd, cd, ls, stat, mkdir, touch, write, cat, ln, symlink, rm, cp, mv,
exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, err := newFileSystem()
		if err != nil {
			return err
		}
		sh := &shell{fsys: fsys, view: fsys.NewView(), out: cmd.OutOrStdout()}
		return sh.run(cmd.InOrStdin())
	},
}

type shell struct {
	fsys *heapfs.FileSystem
	view *store.FileSystemView
	out  io.Writer
}

func (sh *shell) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			return nil
		}
		if err := sh.dispatch(fields[0], fields[1:]); err != nil {
			fmt.Fprintf(sh.out, "%s: %v\n", fields[0], err)
		}
	}
	return scanner.Err()
}

func (sh *shell) dispatch(verb string, args []string) error {
	switch verb {
	case "pwd":
		fmt.Fprintln(sh.out, sh.fsys.FormatPath(sh.view.WorkingDirPath()))
		return nil
	case "cd":
		return sh.cd(requireOne(args, "/"))
	case "ls":
		return sh.ls(requireOne(args, "."))
	case "stat":
		if len(args) < 1 {
			return fmt.Errorf("usage: stat <path> [view]")
		}
		view := "basic"
		if len(args) > 1 {
			view = args[1]
		}
		return sh.stat(args[0], view)
	case "mkdir":
		return sh.forEachPath(args, sh.view.CreateDirectory)
	case "touch":
		return sh.forEachPath(args, func(p store.Path) error {
			_, err := sh.view.GetOrCreateRegularFile(p)
			return err
		})
	case "write":
		if len(args) < 1 {
			return fmt.Errorf("usage: write <path> [text...]")
		}
		return sh.write(args[0], strings.Join(args[1:], " "))
	case "cat":
		if len(args) != 1 {
			return fmt.Errorf("usage: cat <path>")
		}
		return sh.cat(args[0])
	case "ln":
		if len(args) != 2 {
			return fmt.Errorf("usage: ln <existing> <new>")
		}
		return sh.view.Link(sh.fsys.ParsePath(args[1]), sh.fsys.ParsePath(args[0]))
	case "symlink":
		if len(args) != 2 {
			return fmt.Errorf("usage: symlink <target> <new>")
		}
		return sh.view.CreateSymlink(sh.fsys.ParsePath(args[1]), sh.fsys.ParsePath(args[0]))
	case "rm":
		return sh.forEachPath(args, func(p store.Path) error { return sh.view.Delete(p, store.NoFollowLinks) })
	case "cp":
		if len(args) != 2 {
			return fmt.Errorf("usage: cp <src> <dst>")
		}
		return store.Copy(sh.view, sh.fsys.ParsePath(args[0]), sh.view, sh.fsys.ParsePath(args[1]), 0)
	case "mv":
		if len(args) != 2 {
			return fmt.Errorf("usage: mv <src> <dst>")
		}
		return store.Move(sh.view, sh.fsys.ParsePath(args[0]), sh.view, sh.fsys.ParsePath(args[1]), 0)
	default:
		return fmt.Errorf("unknown command %q", verb)
	}
}

func requireOne(args []string, fallback string) string {
	if len(args) == 0 {
		return fallback
	}
	return args[0]
}

func (sh *shell) forEachPath(args []string, fn func(store.Path) error) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one path is required")
	}
	for _, a := range args {
		if err := fn(sh.fsys.ParsePath(a)); err != nil {
			return err
		}
	}
	return nil
}

func (sh *shell) cd(path string) error {
	v, err := sh.view.WithWorkingDirectory(sh.fsys.ParsePath(path))
	if err != nil {
		return err
	}
	sh.view = v
	return nil
}

func (sh *shell) ls(path string) error {
	entries, err := sh.view.ReadDirectory(sh.fsys.ParsePath(path))
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
		fmt.Fprintf(sh.out, "%s %8d %s\n", kind, e.Inode.Size(), e.Name.Display())
	}
	return nil
}

func (sh *shell) stat(path, view string) error {
	inode, err := sh.view.Lookup(sh.fsys.ParsePath(path), store.FollowLinks)
	if err != nil {
		return err
	}
	attrs, err := sh.fsys.Attributes().ReadAll(inode, view)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(sh.out, "%s: %v\n", name, attrs[name])
	}
	return nil
}

func (sh *shell) write(path, text string) error {
	inode, err := sh.view.GetOrCreateRegularFile(sh.fsys.ParsePath(path))
	if err != nil {
		return err
	}
	ch := store.NewChannel(inode.Content(), false, true, false)
	defer ch.Close()
	_, err = ch.Write([]byte(text))
	return err
}

func (sh *shell) cat(path string) error {
	inode, err := sh.view.Lookup(sh.fsys.ParsePath(path), store.FollowLinks)
	if err != nil {
		return err
	}
	ch := store.NewChannel(inode.Content(), true, false, false)
	defer ch.Close()
	if _, err := io.Copy(sh.out, ch); err != nil {
		return err
	}
	fmt.Fprintln(sh.out)
	return nil
}
