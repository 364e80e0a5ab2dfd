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
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// HeapDisk allocates and caches fixed-size byte blocks on the Go heap,
// enforcing a maximum-size cap. It never takes a FileStore lock; it is
// protected entirely by its own state, matching the teacher's block-pool
// isolation (internal/block/block_pool_test.go: a weighted semaphore gates
// total outstanding blocks, a free channel/slice caches released ones for
// reuse).
type HeapDisk struct {
	blockSize       int
	maxBlocks       int64
	maxCachedBlocks int

	sem *semaphore.Weighted

	mu        sync.Mutex
	free      [][]byte
	allocated int64
}

const invalidHeapDiskConfigError = "heapfs: invalid HeapDisk configuration: block_size=%d, max_blocks=%d, max_cached_blocks=%d"

// NewHeapDisk builds a disk of maxBlocks blocks of blockSize bytes each,
// caching up to maxCachedBlocks freed blocks for reuse.
func NewHeapDisk(blockSize int, maxBlocks int, maxCachedBlocks int) (*HeapDisk, error) {
	if blockSize <= 0 || maxBlocks < 1 || maxCachedBlocks < 0 {
		return nil, fmt.Errorf(invalidHeapDiskConfigError, blockSize, maxBlocks, maxCachedBlocks)
	}
	return &HeapDisk{
		blockSize:       blockSize,
		maxBlocks:       int64(maxBlocks),
		maxCachedBlocks: maxCachedBlocks,
		sem:             semaphore.NewWeighted(int64(maxBlocks)),
	}, nil
}

// BlockSize returns the fixed size, in bytes, of every block on this disk.
func (d *HeapDisk) BlockSize() int { return d.blockSize }

// TotalSpace returns max_blocks * block_size.
func (d *HeapDisk) TotalSpace() int64 { return d.maxBlocks * int64(d.blockSize) }

// Unallocated returns (max_blocks - allocated) * block_size.
func (d *HeapDisk) Unallocated() int64 {
	return (d.maxBlocks - atomic.LoadInt64(&d.allocated)) * int64(d.blockSize)
}

// AllocatedBlocks returns the number of blocks currently held by live byte
// stores (the disk-accounting invariant's left-hand side).
func (d *HeapDisk) AllocatedBlocks() int64 { return atomic.LoadInt64(&d.allocated) }

// Allocate appends count zeroed blocks to list, reusing cached blocks first
// and minting new ones to make up any shortfall. It fails with ErrOutOfSpace
// without blocking if that would push allocated past max_blocks — disk
// allocation must never block a caller holding the file-store write lock.
func (d *HeapDisk) Allocate(list *BlockList, count int) error {
	if count <= 0 {
		return nil
	}
	if !d.sem.TryAcquire(int64(count)) {
		return ErrOutOfSpace
	}
	atomic.AddInt64(&d.allocated, int64(count))

	d.mu.Lock()
	taken := 0
	for taken < count && len(d.free) > 0 {
		b := d.free[len(d.free)-1]
		d.free = d.free[:len(d.free)-1]
		taken++
		for i := range b {
			b[i] = 0
		}
		list.append(b)
	}
	d.mu.Unlock()

	for ; taken < count; taken++ {
		list.append(make([]byte, d.blockSize))
	}
	return nil
}

// Free detaches the last count blocks from list, caching up to the
// remaining cache capacity and discarding the rest, then releases the
// disk's capacity for reuse by Allocate.
func (d *HeapDisk) Free(list *BlockList, count int) {
	if count <= 0 {
		return
	}
	removed := list.removeLast(count)

	d.mu.Lock()
	room := d.maxCachedBlocks - len(d.free)
	if room > 0 {
		n := room
		if n > len(removed) {
			n = len(removed)
		}
		d.free = append(d.free, removed[:n]...)
	}
	d.mu.Unlock()

	atomic.AddInt64(&d.allocated, -int64(len(removed)))
	d.sem.Release(int64(len(removed)))
}

// FreeAll is a convenience for returning an entire list's blocks, e.g. when
// a ByteStore is deleted.
func (d *HeapDisk) FreeAll(list *BlockList) {
	d.Free(list, list.Count())
}
