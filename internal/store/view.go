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

import (
	"bytes"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// FileSystemView is the per-client handle onto a FileStore: a working
// directory plus the store it resolves paths against. Every exported
// method is safe for concurrent use by multiple views sharing one store.
type FileSystemView struct {
	store      *FileStore
	workingDir *Inode
	// workingDirPath is the absolute path workingDir was reached by, kept
	// only for ToRealPath and diagnostics — it plays no part in resolution,
	// which always walks from the inode.
	workingDirPath Path
}

// NewFileSystemView returns a view rooted at the store's root directory.
func NewFileSystemView(s *FileStore) *FileSystemView {
	return &FileSystemView{store: s, workingDir: s.Tree().Root(), workingDirPath: NewAbsolutePath("/")}
}

// WithWorkingDirectory returns a new view over the same store rooted at
// path, which must resolve to a directory.
func (v *FileSystemView) WithWorkingDirectory(path Path) (*FileSystemView, error) {
	v.store.RLock()
	defer v.store.RUnlock()
	inode, err := v.store.Tree().Lookup(v.workingDir, path, FollowLinks)
	if err != nil {
		return nil, wrapPath(path, err)
	}
	if err := RequireDirectory(inode); err != nil {
		return nil, wrapPath(path, err)
	}
	return &FileSystemView{store: v.store, workingDir: inode, workingDirPath: v.toRealPath(path)}, nil
}

// Store returns the view's backing store.
func (v *FileSystemView) Store() *FileStore { return v.store }

// WorkingDirPath returns the absolute path this view's working directory
// was reached by, for hosts (e.g. a shell's pwd) that need to display it.
func (v *FileSystemView) WorkingDirPath() Path { return v.workingDirPath }

func wrapPath(p Path, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", p.String(), err)
}

// toRealPath resolves path to an absolute path rooted at "/", for reporting
// and for the basic attribute view's fileKey. It does not touch the store.
func (v *FileSystemView) toRealPath(path Path) Path {
	return v.workingDirPath.Resolve(path).Normalize()
}

// Exists reports whether path resolves to something, treating every error
// (not just ErrNotFound) as "does not exist" — callers that need to
// distinguish a permission-style failure from absence should call Lookup
// directly instead.
func (v *FileSystemView) Exists(path Path, opts LinkOption) bool {
	v.store.RLock()
	defer v.store.RUnlock()
	_, err := v.store.Tree().Lookup(v.workingDir, path, opts)
	return err == nil
}

// Lookup resolves path and returns its inode, for callers (attribute
// service, channel open) that need the inode itself.
func (v *FileSystemView) Lookup(path Path, opts LinkOption) (*Inode, error) {
	v.store.RLock()
	defer v.store.RUnlock()
	inode, err := v.store.Tree().Lookup(v.workingDir, path, opts)
	if err != nil {
		return nil, wrapPath(path, err)
	}
	return inode, nil
}

// ReadSymlink returns the target of the symlink at path without following
// it.
func (v *FileSystemView) ReadSymlink(path Path) (Path, error) {
	inode, err := v.Lookup(path, NoFollowLinks)
	if err != nil {
		return Path{}, err
	}
	if err := RequireSymbolicLink(inode); err != nil {
		return Path{}, wrapPath(path, err)
	}
	inode.TouchAccess()
	return inode.Target(), nil
}

// CreateDirectory creates an empty directory at path. The parent must
// already exist; path itself must not.
func (v *FileSystemView) CreateDirectory(path Path) error {
	v.store.Lock()
	defer v.store.Unlock()

	parent, name, err := v.store.Tree().LookupParent(v.workingDir, path)
	if err != nil {
		return wrapPath(path, err)
	}
	if _, ok := parent.Directory().Get(name); ok {
		return wrapPath(path, ErrAlreadyExists)
	}

	dir := v.store.NewDirectory()
	dir.Directory().SetParent(parent)
	parent.Directory().Link(name, dir)
	parent.linked() // the new subdirectory's ".." entry is a reference to parent
	parent.TouchModified()
	v.store.BumpMutationSeq()
	return nil
}

// CreateSymlink creates a symlink at path pointing at target, which is
// stored verbatim and resolved lazily on each lookup.
func (v *FileSystemView) CreateSymlink(path Path, target Path) error {
	v.store.Lock()
	defer v.store.Unlock()

	parent, name, err := v.store.Tree().LookupParent(v.workingDir, path)
	if err != nil {
		return wrapPath(path, err)
	}
	if _, ok := parent.Directory().Get(name); ok {
		return wrapPath(path, ErrAlreadyExists)
	}

	link := v.store.NewSymlink(target)
	parent.Directory().Link(name, link)
	parent.TouchModified()
	v.store.BumpMutationSeq()
	return nil
}

// CreateRegularFile creates a new, empty regular file at path. path must
// not already exist.
func (v *FileSystemView) CreateRegularFile(path Path) (*Inode, error) {
	v.store.Lock()
	defer v.store.Unlock()
	return v.createRegularFileLocked(path, true)
}

// GetOrCreateRegularFile returns path's inode if it already names a regular
// file, or creates one if path does not exist yet (the O_CREAT-without-
// O_EXCL open contract).
func (v *FileSystemView) GetOrCreateRegularFile(path Path) (*Inode, error) {
	v.store.Lock()
	defer v.store.Unlock()

	if existing, err := v.store.Tree().Lookup(v.workingDir, path, FollowLinks); err == nil {
		if err := RequireRegularFile(existing); err != nil {
			return nil, wrapPath(path, err)
		}
		return existing, nil
	}
	return v.createRegularFileLocked(path, false)
}

func (v *FileSystemView) createRegularFileLocked(path Path, mustNotExist bool) (*Inode, error) {
	parent, name, err := v.store.Tree().LookupParent(v.workingDir, path)
	if err != nil {
		return nil, wrapPath(path, err)
	}
	if _, ok := parent.Directory().Get(name); ok {
		if mustNotExist {
			return nil, wrapPath(path, ErrAlreadyExists)
		}
	}

	file := v.store.NewRegularFile()
	parent.Directory().Link(name, file)
	parent.TouchModified()
	v.store.BumpMutationSeq()
	return file, nil
}

// Link creates newPath as an additional hard link to the file named by
// existingPath (both resolved within this store). A directory cannot be
// linked; that fails with ErrUnsupported.
func (v *FileSystemView) Link(newPath, existingPath Path) error {
	v.store.Lock()
	defer v.store.Unlock()

	target, err := v.store.Tree().Lookup(v.workingDir, existingPath, FollowLinks)
	if err != nil {
		return wrapPath(existingPath, err)
	}
	if target.IsDirectory() {
		return wrapPath(existingPath, fmt.Errorf("%w: cannot link a directory", ErrUnsupported))
	}

	parent, name, err := v.store.Tree().LookupParent(v.workingDir, newPath)
	if err != nil {
		return wrapPath(newPath, err)
	}
	if _, ok := parent.Directory().Get(name); ok {
		return wrapPath(newPath, ErrAlreadyExists)
	}

	parent.Directory().Link(name, target)
	parent.TouchModified()
	v.store.BumpMutationSeq()
	return nil
}

// Delete removes the entry at path. A directory may only be removed when
// empty. opts controls whether a trailing symlink is deleted itself
// (NoFollowLinks, the default POSIX unlink/rmdir behavior) or resolved
// first (FollowLinks), in which case the entry the link chain ends at is
// removed and the link itself is kept.
func (v *FileSystemView) Delete(path Path, opts LinkOption) error {
	v.store.Lock()
	defer v.store.Unlock()

	parent, name, err := v.store.Tree().LookupParent(v.workingDir, path)
	if err != nil {
		return wrapPath(path, err)
	}
	target, ok := parent.Directory().Get(name)
	if !ok {
		return wrapPath(path, ErrNotFound)
	}
	for depth := 0; opts == FollowLinks && target.IsSymbolicLink(); depth++ {
		if depth >= maxSymlinkDepth {
			return wrapPath(path, ErrTooManyLinks)
		}
		parent, name, err = v.store.Tree().LookupParent(parent, target.Target())
		if err != nil {
			return wrapPath(path, err)
		}
		if target, ok = parent.Directory().Get(name); !ok {
			return wrapPath(path, ErrNotFound)
		}
	}

	if err := removeEntry(v, parent, name, target); err != nil {
		return wrapPath(path, err)
	}
	parent.TouchModified()
	v.store.BumpMutationSeq()
	return nil
}

// removeEntry unlinks name (resolving to target) from parent, applying the
// same directory-emptiness and working-directory guards Delete always has.
// Shared with the REPLACE_EXISTING destination-clearing path in copyLocked
// and Move, which need exactly this check before overwriting a destination.
func removeEntry(v *FileSystemView, parent *Inode, name Name, target *Inode) error {
	if target.IsDirectory() {
		if target.Directory().Size() > 0 {
			return ErrDirectoryNotEmpty
		}
		if target == v.workingDir {
			return fmt.Errorf("%w: cannot delete the working directory", ErrInvalid)
		}
	}

	parent.Directory().Unlink(name)
	if target.IsDirectory() {
		parent.unlinked() // target's ".." entry no longer references parent
	}
	if target.IsRegularFile() && target.LinkCount() == 0 {
		target.Content().Delete()
	}
	return nil
}

// IsSameFile reports whether pathA (in view a) and pathB (in view b)
// resolve to the same inode in the same store.
func IsSameFile(a *FileSystemView, pathA Path, b *FileSystemView, pathB Path) (bool, error) {
	ia, err := a.Lookup(pathA, FollowLinks)
	if err != nil {
		return false, err
	}
	ib, err := b.Lookup(pathB, FollowLinks)
	if err != nil {
		return false, err
	}
	return a.store == b.store && ia.ID() == ib.ID(), nil
}

// ReadDirectory lists path's children, ordered by display string (per
// DirectoryTable.Snapshot).
func (v *FileSystemView) ReadDirectory(path Path) ([]DirEntryInfo, error) {
	v.store.RLock()
	defer v.store.RUnlock()

	inode, err := v.store.Tree().Lookup(v.workingDir, path, FollowLinks)
	if err != nil {
		return nil, wrapPath(path, err)
	}
	if err := RequireDirectory(inode); err != nil {
		return nil, wrapPath(path, err)
	}
	inode.TouchAccess()
	return inode.Directory().Snapshot(), nil
}

// WalkFunc is called for every entry WalkFileTree visits.
type WalkFunc func(path Path, inode *Inode) error

// WalkFileTree walks the tree rooted at path depth-first, calling fn for
// path itself and every descendant. It never follows symlinks on its own;
// fn receives the symlink inode itself and may choose to recurse manually.
func (v *FileSystemView) WalkFileTree(path Path, fn WalkFunc) error {
	root, err := v.Lookup(path, NoFollowLinks)
	if err != nil {
		return err
	}
	return v.walk(path, root, fn)
}

func (v *FileSystemView) walk(path Path, inode *Inode, fn WalkFunc) error {
	if err := fn(path, inode); err != nil {
		return err
	}
	if !inode.IsDirectory() {
		return nil
	}
	v.store.RLock()
	entries := inode.Directory().Snapshot()
	v.store.RUnlock()

	for _, e := range entries {
		childPath := path.Resolve(NewRelativePath(e.Name))
		if err := v.walk(childPath, e.Inode, fn); err != nil {
			return err
		}
	}
	return nil
}

// CopyOption is a bitset of the copy/move option vocabulary: REPLACE_EXISTING,
// COPY_ATTRIBUTES, ATOMIC_MOVE and NOFOLLOW_LINKS.
type CopyOption int

const (
	// ReplaceExisting deletes an existing destination (applying the usual
	// directory-emptiness and working-directory guards) before linking
	// the copy or move result in its place. Without it, an existing
	// destination fails with ErrAlreadyExists.
	ReplaceExisting CopyOption = 1 << iota
	// CopyAttributes propagates the source inode's timestamps and
	// attribute map onto the copy. Copy only — Move never needs it: a
	// same-store move relinks the original inode, and a cross-store move
	// copies timestamps unconditionally regardless of this bit.
	CopyAttributes
	// AtomicMove is legal only on Move, and only within a single store,
	// where the whole relink already happens under one write-lock
	// critical section. Copy rejects it with ErrUnsupported.
	AtomicMove
	// CopyNoFollowLinks copies/moves the symlink named by the final path
	// segment itself rather than following it to its target. Without it,
	// a trailing symlink is resolved before copying, matching the
	// default Files.copy-style behavior the vocabulary is modeled on.
	CopyNoFollowLinks
)

func (o CopyOption) has(bit CopyOption) bool { return o&bit != 0 }

// Copy copies the file, directory (recursively) or symlink at srcPath in
// src to dstPath in dst, which may be a different store entirely. Cross-store
// copies acquire both stores' locks using a deterministic-order,
// try-and-back-off protocol rather than relying on a fixed global order
// holding forever (a third store never joins mid-copy here, but the
// protocol is what the teacher's equivalent cross-resource lock acquisition
// uses, and it costs nothing extra). ATOMIC_MOVE is not valid here and is
// rejected with ErrUnsupported.
func Copy(src *FileSystemView, srcPath Path, dst *FileSystemView, dstPath Path, opts CopyOption) error {
	if opts.has(AtomicMove) {
		return wrapPath(dstPath, fmt.Errorf("%w: ATOMIC_MOVE is not valid for Copy", ErrUnsupported))
	}

	if src.store == dst.store {
		src.store.Lock()
		defer src.store.Unlock()
		return copyLocked(src, srcPath, dst, dstPath, opts)
	}

	unlock := lockStorePair(src.store, dst.store)
	defer unlock()
	return copyLocked(src, srcPath, dst, dstPath, opts)
}

// lockStorePair locks both stores without risking deadlock against a
// concurrent copy in the opposite direction: it always acquires them in a
// fixed order (by instance id), but uses TryLock plus a short back-off on
// the second store rather than a blocking Lock, so a store that is
// momentarily held elsewhere (e.g. by a same-store operation already in
// flight) doesn't wedge this goroutine holding the first lock forever.
func lockStorePair(a, b *FileStore) (unlock func()) {
	first, second := a, b
	if bytes.Compare(a.instanceID[:], b.instanceID[:]) > 0 {
		first, second = b, a
	}
	for {
		first.Lock()
		if second.TryLock() {
			break
		}
		first.Unlock()
		runtime.Gosched()
	}
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

// copyLocked performs the actual copy with both (or the one) relevant
// store locks already held.
func copyLocked(src *FileSystemView, srcPath Path, dst *FileSystemView, dstPath Path, opts CopyOption) error {
	srcLinkOpt := FollowLinks
	if opts.has(CopyNoFollowLinks) {
		srcLinkOpt = NoFollowLinks
	}
	srcInode, err := src.store.Tree().Lookup(src.workingDir, srcPath, srcLinkOpt)
	if err != nil {
		return wrapPath(srcPath, err)
	}
	dstParent, dstName, err := dst.store.Tree().LookupParent(dst.workingDir, dstPath)
	if err != nil {
		return wrapPath(dstPath, err)
	}

	if existing, ok := dstParent.Directory().Get(dstName); ok {
		if existing == srcInode {
			return nil
		}
		if !opts.has(ReplaceExisting) {
			return wrapPath(dstPath, ErrAlreadyExists)
		}
		if err := removeEntry(dst, dstParent, dstName, existing); err != nil {
			return wrapPath(dstPath, err)
		}
	}

	return copyInto(src, srcInode, dst, dstParent, dstName, opts)
}

// copyInto creates dstParent/dstName as a copy of srcInode and, for
// directories, recurses over children through an errgroup limited to one
// goroutine at a time: every child is linked into the same new
// DirectoryTable, which has no lock of its own, so the child copies must
// not overlap. No lock is dropped and reacquired inside the group, so
// errgroup's first-error semantics are safe to use here, unlike the
// store-pair back-off above.
func copyInto(src *FileSystemView, srcInode *Inode, dst *FileSystemView, dstParent *Inode, dstName Name, opts CopyOption) error {
	switch srcInode.Kind() {
	case KindSymlink:
		link := dst.store.NewSymlink(srcInode.Target())
		dstParent.Directory().Link(dstName, link)
		applyCopyAttributes(srcInode, link, opts)
	case KindRegular:
		cp, err := srcInode.Content().Copy()
		if err != nil {
			return err
		}
		file := newInode(dst.store.allocateInodeID(), KindRegular, dst.store.clock)
		file.content = cp
		dstParent.Directory().Link(dstName, file)
		applyCopyAttributes(srcInode, file, opts)
	case KindDirectory:
		dir := dst.store.NewDirectory()
		dir.Directory().SetParent(dstParent)
		dstParent.Directory().Link(dstName, dir)
		dstParent.linked()
		applyCopyAttributes(srcInode, dir, opts)

		entries := srcInode.Directory().Snapshot()
		var g errgroup.Group
		g.SetLimit(1)
		for _, e := range entries {
			e := e
			g.Go(func() error {
				return copyInto(src, e.Inode, dst, dir, e.Name, opts)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	dstParent.TouchModified()
	dst.store.BumpMutationSeq()
	return nil
}

// attributeViewNames are the non-basic views an inode's attribute map may
// carry — basic's fields are plain struct fields (CreatedAt/ModifiedAt/...)
// copied directly by applyCopyAttributes, not routed through this map.
var attributeViewNames = []string{"owner", "posix", "dos", "user"}

// applyCopyAttributes propagates srcInode's timestamps and attribute map
// onto dstInode when CopyAttributes is set, per the COPY_ATTRIBUTES
// round-trip: copy(a, b, COPY_ATTRIBUTES); stat(a) ≈ stat(b).
func applyCopyAttributes(srcInode, dstInode *Inode, opts CopyOption) {
	if !opts.has(CopyAttributes) {
		return
	}
	created := srcInode.CreatedAt()
	accessed := srcInode.AccessedAt()
	modified := srcInode.ModifiedAt()
	dstInode.SetTimes(&created, &accessed, &modified)
	for _, view := range attributeViewNames {
		for name, value := range srcInode.AttributesForView(view) {
			dstInode.SetAttribute(view, name, value)
		}
	}
}

// Move relocates srcPath to dstPath. Within a single store this is a
// constant-time unlink/relink, already atomic under the store's write lock
// regardless of whether AtomicMove is set; across stores it falls back to
// copy-then-delete, and AtomicMove there is rejected with ErrUnsupported
// since that fallback cannot offer move atomicity.
func Move(src *FileSystemView, srcPath Path, dst *FileSystemView, dstPath Path, opts CopyOption) error {
	if src.store == dst.store {
		src.store.Lock()
		defer src.store.Unlock()

		srcParent, srcName, err := src.store.Tree().LookupParent(src.workingDir, srcPath)
		if err != nil {
			return wrapPath(srcPath, err)
		}
		target, ok := srcParent.Directory().Get(srcName)
		if !ok {
			return wrapPath(srcPath, ErrNotFound)
		}
		dstParent, dstName, err := dst.store.Tree().LookupParent(dst.workingDir, dstPath)
		if err != nil {
			return wrapPath(dstPath, err)
		}

		if target.IsDirectory() {
			if err := requireNotAncestor(target, dstParent); err != nil {
				return wrapPath(dstPath, err)
			}
		}

		if existing, ok := dstParent.Directory().Get(dstName); ok {
			if existing == target {
				return nil
			}
			if !opts.has(ReplaceExisting) {
				return wrapPath(dstPath, ErrAlreadyExists)
			}
			if err := removeEntry(dst, dstParent, dstName, existing); err != nil {
				return wrapPath(dstPath, err)
			}
		}

		srcParent.Directory().Unlink(srcName)
		dstParent.Directory().Link(dstName, target)
		if target.IsDirectory() {
			srcParent.unlinked()
			target.Directory().SetParent(dstParent)
			dstParent.linked()
		}
		srcParent.TouchModified()
		dstParent.TouchModified()
		src.store.BumpMutationSeq()
		return nil
	}

	if opts.has(AtomicMove) {
		return wrapPath(dstPath, fmt.Errorf("%w: ATOMIC_MOVE requires src and dst to share a store", ErrUnsupported))
	}

	if err := Copy(src, srcPath, dst, dstPath, opts|CopyAttributes); err != nil {
		return err
	}
	return src.Delete(srcPath, NoFollowLinks)
}

// requireNotAncestor walks from dstParent up through ".." looking for src,
// refusing a move that would relocate a directory into its own subtree —
// which SetParent would otherwise turn into an unreachable cycle, since src
// would end up pointing ".." at a descendant of itself.
func requireNotAncestor(src, dstParent *Inode) error {
	for current := dstParent; ; {
		if current == src {
			return fmt.Errorf("%w: cannot move a directory into its own subtree", ErrInvalid)
		}
		parent, ok := current.Directory().Get(Parent)
		if !ok || parent == current {
			return nil
		}
		current = parent
	}
}
