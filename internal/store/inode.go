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
	"sync"
	"sync/atomic"
	"time"

	"github.com/heapfs-project/heapfs/clock"
)

// Kind tags the content variant an Inode carries, the Go translation of the
// teacher's tagged inode hierarchy (fs/inode/inode.go distinguishes
// DirInode, FileInode and SymlinkInode by Go type; here a single struct
// carries a Kind tag plus the one content field that kind uses, since the
// three variants share the rest of the inode — timestamps, link count,
// attributes — and a sealed interface would just force a type switch back
// at every call site).
type Kind int

const (
	KindDirectory Kind = iota
	KindRegular
	KindSymlink
)

// Inode is the identity- and metadata-bearing unit of storage: every
// directory entry in a FileTree resolves to one. Its content (directory
// table, byte store, or symlink target) is fixed at construction; only the
// link count, timestamps and attribute map mutate afterward.
type Inode struct {
	id   uint64
	kind Kind

	dir     *DirectoryTable
	content *ByteStore
	target  Path

	linkCount int32 // atomic

	clock      clock.Clock
	createdAt  int64 // atomic, UnixNano
	accessedAt int64 // atomic, UnixNano
	modifiedAt int64 // atomic, UnixNano

	attrMu sync.RWMutex
	attrs  map[string]map[string]any // view name -> attribute name -> value
}

func newInode(id uint64, kind Kind, c clock.Clock) *Inode {
	now := c.Now().UnixNano()
	return &Inode{
		id:         id,
		kind:       kind,
		clock:      c,
		createdAt:  now,
		accessedAt: now,
		modifiedAt: now,
		attrs:      make(map[string]map[string]any),
	}
}

// NewDirectoryInode creates an inode whose content is an empty
// DirectoryTable whose "." entry already points at the new inode. The
// caller is responsible for calling SetParent on the returned table.
func NewDirectoryInode(id uint64, c clock.Clock) *Inode {
	n := newInode(id, KindDirectory, c)
	n.dir = NewDirectoryTable()
	n.dir.SetSelf(n)
	return n
}

// NewRegularInode creates an inode with an empty ByteStore backed by disk.
func NewRegularInode(id uint64, c clock.Clock, disk *HeapDisk) *Inode {
	n := newInode(id, KindRegular, c)
	n.content = NewByteStore(disk)
	return n
}

// NewSymlinkInode creates an inode whose content is an immutable target
// path.
func NewSymlinkInode(id uint64, c clock.Clock, target Path) *Inode {
	n := newInode(id, KindSymlink, c)
	n.target = target
	return n
}

// ID returns the inode's file key, stable for its lifetime and unique
// within its owning FileStore.
func (n *Inode) ID() uint64 { return n.id }

// Kind reports which content variant this inode carries.
func (n *Inode) Kind() Kind { return n.kind }

func (n *Inode) IsDirectory() bool  { return n.kind == KindDirectory }
func (n *Inode) IsRegularFile() bool { return n.kind == KindRegular }
func (n *Inode) IsSymbolicLink() bool { return n.kind == KindSymlink }

// Directory returns the directory table. Panics if this is not a directory
// inode; callers must check Kind first (mirrors the teacher's inode
// type-assertion-or-panic convention at internal boundaries).
func (n *Inode) Directory() *DirectoryTable {
	if n.kind != KindDirectory {
		panic("store: Directory() on non-directory inode")
	}
	return n.dir
}

// Content returns the byte store. Panics if this is not a regular file.
func (n *Inode) Content() *ByteStore {
	if n.kind != KindRegular {
		panic("store: Content() on non-regular inode")
	}
	return n.content
}

// Target returns the symlink target. Panics if this is not a symlink.
func (n *Inode) Target() Path {
	if n.kind != KindSymlink {
		panic("store: Target() on non-symlink inode")
	}
	return n.target
}

// LinkCount returns the number of directory entries referencing this inode.
func (n *Inode) LinkCount() int { return int(atomic.LoadInt32(&n.linkCount)) }

// linked is called by DirectoryTable.Link when this inode gains a new
// directory entry.
func (n *Inode) linked() { atomic.AddInt32(&n.linkCount, 1) }

// unlinked is called by DirectoryTable.Unlink when a directory entry
// pointing at this inode is removed. The caller (removeEntry in view.go) is
// responsible for reclaiming content once the count reaches zero.
func (n *Inode) unlinked() { atomic.AddInt32(&n.linkCount, -1) }

// CreatedAt, AccessedAt and ModifiedAt report the inode's basic timestamps.
func (n *Inode) CreatedAt() time.Time  { return time.Unix(0, atomic.LoadInt64(&n.createdAt)) }
func (n *Inode) AccessedAt() time.Time { return time.Unix(0, atomic.LoadInt64(&n.accessedAt)) }
func (n *Inode) ModifiedAt() time.Time { return time.Unix(0, atomic.LoadInt64(&n.modifiedAt)) }

// TouchAccess records a read of this inode's content or metadata.
func (n *Inode) TouchAccess() {
	atomic.StoreInt64(&n.accessedAt, n.clock.Now().UnixNano())
}

// TouchModified records a structural or content mutation, which also counts
// as an access.
func (n *Inode) TouchModified() {
	now := n.clock.Now().UnixNano()
	atomic.StoreInt64(&n.modifiedAt, now)
	atomic.StoreInt64(&n.accessedAt, now)
}

// SetTimes overrides one or more timestamps; a nil pointer leaves that
// timestamp untouched. Used by the basic attribute view's setTimes and by
// copy operations that propagate a source's timestamps.
func (n *Inode) SetTimes(created, accessed, modified *time.Time) {
	if created != nil {
		atomic.StoreInt64(&n.createdAt, created.UnixNano())
	}
	if accessed != nil {
		atomic.StoreInt64(&n.accessedAt, accessed.UnixNano())
	}
	if modified != nil {
		atomic.StoreInt64(&n.modifiedAt, modified.UnixNano())
	}
}

// Size reports the content size in bytes: the byte store's size for a
// regular file, the byte length of the target as rendered by Path.String
// for a symlink, or 0 for a directory, matching the attribute service's
// size() contract.
func (n *Inode) Size() int64 {
	switch n.kind {
	case KindRegular:
		return n.content.Size()
	case KindSymlink:
		return int64(len(n.target.String()))
	default:
		return 0
	}
}

// GetAttribute returns a previously set attribute value for the given
// view/name pair.
func (n *Inode) GetAttribute(view, name string) (any, bool) {
	n.attrMu.RLock()
	defer n.attrMu.RUnlock()
	v, ok := n.attrs[view]
	if !ok {
		return nil, false
	}
	val, ok := v[name]
	return val, ok
}

// SetAttribute stores an attribute value under the given view/name pair.
func (n *Inode) SetAttribute(view, name string, value any) {
	n.attrMu.Lock()
	defer n.attrMu.Unlock()
	v, ok := n.attrs[view]
	if !ok {
		v = make(map[string]any)
		n.attrs[view] = v
	}
	v[name] = value
}

// AttributesForView returns a snapshot copy of every attribute stored under
// view.
func (n *Inode) AttributesForView(view string) map[string]any {
	n.attrMu.RLock()
	defer n.attrMu.RUnlock()
	out := make(map[string]any, len(n.attrs[view]))
	for k, v := range n.attrs[view] {
		out[k] = v
	}
	return out
}
