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

package store

import "fmt"

// LinkOption controls whether Lookup follows a symbolic link found at the
// final name of the path being resolved. Intermediate components are
// always followed regardless of this option — only a direct path to the
// link itself is affected.
type LinkOption int

const (
	// FollowLinks resolves a symlink at the final component to its target.
	FollowLinks LinkOption = iota
	// NoFollowLinks returns the symlink inode itself as the final component.
	NoFollowLinks
)

// maxSymlinkDepth bounds the number of symlinks followed while resolving a
// single path, guarding against cycles (a -> b -> a).
const maxSymlinkDepth = 10

// FileTree resolves paths against a fixed root directory inode.
type FileTree struct {
	root *Inode
}

// NewFileTree wraps root, which must be a directory inode.
func NewFileTree(root *Inode) *FileTree {
	if !root.IsDirectory() {
		panic("store: file tree root must be a directory inode")
	}
	return &FileTree{root: root}
}

// Root returns the tree's root directory inode.
func (t *FileTree) Root() *Inode { return t.root }

// Lookup resolves path against workingDir (used when path is relative),
// following intermediate symlinks unconditionally and the final component
// according to opts.
func (t *FileTree) Lookup(workingDir *Inode, path Path, opts LinkOption) (*Inode, error) {
	depth := 0
	return t.lookup(workingDir, path, opts, &depth)
}

func (t *FileTree) lookup(workingDir *Inode, path Path, opts LinkOption, depth *int) (*Inode, error) {
	current := workingDir
	if path.IsAbsolute() {
		current = t.root
	}

	names := path.Names()
	for i, name := range names {
		if name.IsEmpty() || name.IsSelf() {
			continue
		}
		if name.IsParent() {
			if current.Kind() != KindDirectory {
				return nil, ErrNotDirectory
			}
			parent, ok := current.Directory().Get(Parent)
			if !ok {
				return nil, ErrNotFound
			}
			current = parent
			continue
		}

		if current.Kind() != KindDirectory {
			return nil, ErrNotDirectory
		}
		child, ok := current.Directory().Get(name)
		if !ok {
			return nil, ErrNotFound
		}

		isLast := i == len(names)-1
		if child.IsSymbolicLink() && (!isLast || opts == FollowLinks) {
			*depth++
			if *depth > maxSymlinkDepth {
				return nil, ErrTooManyLinks
			}
			resolved, err := t.lookup(current, child.Target(), FollowLinks, depth)
			if err != nil {
				return nil, err
			}
			child = resolved
		}
		current = child
	}
	return current, nil
}

// LookupParent resolves path's parent directory, requiring it to exist and
// be a directory, and returns it along with path's final name. Used by
// every creating/removing operation, which needs the parent locked-in
// before it decides whether the final name may be created or removed.
func (t *FileTree) LookupParent(workingDir *Inode, path Path) (*Inode, Name, error) {
	parentPath, ok := path.Parent()
	if !ok {
		if path.FinalName().IsEmpty() {
			return nil, Name{}, fmt.Errorf("%w: path has no parent", ErrInvalid)
		}
		// A single-name path lives in the root (absolute) or in the
		// working directory (relative).
		parentPath = EmptyPath
		if root, isAbsolute := path.Root(); isAbsolute {
			parentPath = NewAbsolutePath(root)
		}
	}
	parent, err := t.lookup(workingDir, parentPath, FollowLinks, new(int))
	if err != nil {
		return nil, Name{}, err
	}
	if err := RequireDirectory(parent); err != nil {
		return nil, Name{}, err
	}
	return parent, path.FinalName(), nil
}

// RequireDirectory returns ErrNotDirectory unless inode is a directory.
func RequireDirectory(inode *Inode) error {
	if !inode.IsDirectory() {
		return ErrNotDirectory
	}
	return nil
}

// RequireRegularFile returns ErrNotRegularFile unless inode is a regular
// file.
func RequireRegularFile(inode *Inode) error {
	if !inode.IsRegularFile() {
		return ErrNotRegularFile
	}
	return nil
}

// RequireSymbolicLink returns ErrNotSymbolicLink unless inode is a symlink.
func RequireSymbolicLink(inode *Inode) error {
	if !inode.IsSymbolicLink() {
		return ErrNotSymbolicLink
	}
	return nil
}

// RequireDoesNotExist looks path up (without following its final component)
// and turns a successful resolution into ErrAlreadyExists; ErrNotFound is
// the expected, non-error outcome and is swallowed.
func (t *FileTree) RequireDoesNotExist(workingDir *Inode, path Path) error {
	_, err := t.Lookup(workingDir, path, NoFollowLinks)
	switch {
	case err == nil:
		return ErrAlreadyExists
	case err == ErrNotFound:
		return nil
	default:
		return err
	}
}
