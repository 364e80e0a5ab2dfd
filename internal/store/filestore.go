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

	"github.com/google/uuid"

	"github.com/heapfs-project/heapfs/clock"
)

// FileStore owns one file tree, its backing disk, and the inode id
// namespace, all behind a single RWMutex — the lock any FileSystemView
// operation takes before touching the tree, per the lock-ordering rule
// (store lock, then any per-ByteStore lock, never the reverse).
//
// Its InstanceID identifies the store; lockStorePair in view.go orders
// cross-store locking by it. Paths and open handles carry no store
// identity, so no operation detects one that came from a different
// FileStore instance, and ErrProviderMismatch is not returned here.
type FileStore struct {
	mu sync.RWMutex

	disk  *HeapDisk
	clock clock.Clock
	tree  *FileTree

	instanceID uuid.UUID

	nextInodeID uint64 // atomic
	mutationSeq uint64 // atomic; bumped on every structural mutation
}

// NewFileStore creates a store with a fresh empty root directory.
func NewFileStore(disk *HeapDisk, c clock.Clock) *FileStore {
	s := &FileStore{
		disk:       disk,
		clock:      c,
		instanceID: uuid.New(),
	}
	root := NewDirectoryInode(s.allocateInodeID(), c)
	root.Directory().SetParent(root)
	s.tree = NewFileTree(root)
	return s
}

// InstanceID uniquely identifies this store instance; lockStorePair uses it
// to order the locks of a cross-store copy or move.
func (s *FileStore) InstanceID() uuid.UUID { return s.instanceID }

// Disk returns the backing HeapDisk.
func (s *FileStore) Disk() *HeapDisk { return s.disk }

// Clock returns the time source new inodes are stamped from.
func (s *FileStore) Clock() clock.Clock { return s.clock }

// Tree returns the store's file tree. Callers must hold the store's lock
// (for writing, if the call will mutate the tree) before using it.
func (s *FileStore) Tree() *FileTree { return s.tree }

// Lock/Unlock/RLock/RUnlock/TryLock expose the store's single RWMutex.
// TryLock backs the copy/move lock-acquisition-order back-off loop (§5):
// that loop cannot be expressed with errgroup, since it needs to drop lock
// A and retry, not just fan out independent work.
func (s *FileStore) Lock()         { s.mu.Lock() }
func (s *FileStore) Unlock()       { s.mu.Unlock() }
func (s *FileStore) RLock()        { s.mu.RLock() }
func (s *FileStore) RUnlock()      { s.mu.RUnlock() }
func (s *FileStore) TryLock() bool { return s.mu.TryLock() }

func (s *FileStore) allocateInodeID() uint64 {
	return atomic.AddUint64(&s.nextInodeID, 1)
}

// NewDirectory allocates an unlinked directory inode.
func (s *FileStore) NewDirectory() *Inode {
	return NewDirectoryInode(s.allocateInodeID(), s.clock)
}

// NewRegularFile allocates an unlinked, empty regular-file inode.
func (s *FileStore) NewRegularFile() *Inode {
	return NewRegularInode(s.allocateInodeID(), s.clock, s.disk)
}

// NewSymlink allocates an unlinked symlink inode pointing at target.
func (s *FileStore) NewSymlink(target Path) *Inode {
	return NewSymlinkInode(s.allocateInodeID(), s.clock, target)
}

// BumpMutationSeq records a structural change (create, link, delete, copy,
// move) and returns the new sequence value. The watch package does not
// read it; its poller diffs directory listings instead.
func (s *FileStore) BumpMutationSeq() uint64 {
	return atomic.AddUint64(&s.mutationSeq, 1)
}

// MutationSeq returns the current mutation sequence without bumping it.
func (s *FileStore) MutationSeq() uint64 {
	return atomic.LoadUint64(&s.mutationSeq)
}
