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
	"hash/fnv"
	"sort"
)

// dirEntry is one link in a DirectoryTable bucket's intrusive chain.
type dirEntry struct {
	name  Name
	inode *Inode
	next  *dirEntry
}

// DirectoryTable maps child names to inodes for one directory. It is an
// open-hashed table with power-of-two bucket counts, growing at a 0.75 load
// factor, matching the teacher's directory-table sizing discipline
// (fs/inode/dir.go keeps its own child-entry map pre-sized and only grows it
// in bulk, never per entry).
//
// A DirectoryTable carries no lock of its own: every mutation happens with
// the owning FileStore's write lock held, the same discipline the teacher's
// DirInode applies to its entries map.
type DirectoryTable struct {
	buckets []*dirEntry
	size    int

	self   *Inode
	parent *Inode
}

const initialDirTableBuckets = 16

// NewDirectoryTable returns an empty table. SetSelf and SetParent must be
// called before the table is usable, mirroring the two-phase construction a
// directory inode goes through (allocate, then link into its parent).
func NewDirectoryTable() *DirectoryTable {
	return &DirectoryTable{buckets: make([]*dirEntry, initialDirTableBuckets)}
}

// SetSelf records the inode "." resolves to (this directory's own inode).
func (t *DirectoryTable) SetSelf(inode *Inode) { t.self = inode }

// SetParent records the inode ".." resolves to.
func (t *DirectoryTable) SetParent(inode *Inode) { t.parent = inode }

// Self returns the "." inode.
func (t *DirectoryTable) Self() *Inode { return t.self }

// ParentInode returns the ".." inode.
func (t *DirectoryTable) ParentInode() *Inode { return t.parent }

func bucketHash(n Name) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(n.Canonical()))
	return h.Sum32()
}

func (t *DirectoryTable) bucketFor(n Name) int {
	return int(bucketHash(n)) & (len(t.buckets) - 1)
}

// Get looks up a child by name, including the synthetic "." and ".." names.
func (t *DirectoryTable) Get(name Name) (*Inode, bool) {
	if name.IsSelf() {
		return t.self, t.self != nil
	}
	if name.IsParent() {
		return t.parent, t.parent != nil
	}
	for e := t.buckets[t.bucketFor(name)]; e != nil; e = e.next {
		if e.name.Equal(name) {
			return e.inode, true
		}
	}
	return nil, false
}

// Link adds a name -> inode mapping, bumping the target's link count. name
// must not be "." or "..".
func (t *DirectoryTable) Link(name Name, inode *Inode) {
	if name.IsDotOrDotDot() {
		panic("store: cannot link reserved name " + name.Display())
	}
	idx := t.bucketFor(name)
	t.buckets[idx] = &dirEntry{name: name, inode: inode, next: t.buckets[idx]}
	t.size++
	inode.linked()

	if t.size > (len(t.buckets)*3)/4 {
		t.grow()
	}
}

// Unlink removes name's mapping, dropping the target's link count. Reports
// whether the name was present.
func (t *DirectoryTable) Unlink(name Name) (*Inode, bool) {
	idx := t.bucketFor(name)
	var prev *dirEntry
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.name.Equal(name) {
			if prev == nil {
				t.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			t.size--
			e.inode.unlinked()
			return e.inode, true
		}
		prev = e
	}
	return nil, false
}

func (t *DirectoryTable) grow() {
	newBuckets := make([]*dirEntry, len(t.buckets)*2)
	for _, head := range t.buckets {
		for e := head; e != nil; {
			next := e.next
			idx := int(bucketHash(e.name)) & (len(newBuckets) - 1)
			e.next = newBuckets[idx]
			newBuckets[idx] = e
			e = next
		}
	}
	t.buckets = newBuckets
}

// Size returns the number of real (non "."/"..") entries.
func (t *DirectoryTable) Size() int { return t.size }

// DirEntryInfo is a snapshot of one directory entry, safe to retain after
// the owning lock is released.
type DirEntryInfo struct {
	Name  Name
	Inode *Inode
}

// Snapshot returns every real entry (excluding "." and "..") ordered by
// display string, so directory listings and the watch poller's successive
// diffs see a deterministic order rather than bucket-iteration order.
func (t *DirectoryTable) Snapshot() []DirEntryInfo {
	out := make([]DirEntryInfo, 0, t.size)
	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			out = append(out, DirEntryInfo{Name: e.name, Inode: e.inode})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name.Display() < out[j].Name.Display() })
	return out
}
