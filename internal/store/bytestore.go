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
	"io"
	"sync"
)

// ByteStore is a resizable mutable byte container backed by a BlockList on a
// HeapDisk. It implements io.ReaderAt/io.WriterAt (the Go-idiomatic
// expression of the spec's positional read/write contract: a short read
// past size surfaces as io.EOF rather than the -1 sentinel the spec's
// source language uses — see DESIGN.md's Open Question on this).
//
// The read/write lock here is distinct from, and always acquired after, any
// FileStore lock (§5's lock-ordering rule).
type ByteStore struct {
	disk   *HeapDisk
	mu     sync.RWMutex
	blocks BlockList
	size   int64

	lifecycleMu sync.Mutex
	openCount   int
	deleted     bool
}

// NewByteStore creates an empty store backed by disk.
func NewByteStore(disk *HeapDisk) *ByteStore {
	return &ByteStore{disk: disk}
}

// Size returns the current logical size.
func (b *ByteStore) Size() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

func (b *ByteStore) blockSize() int64 { return int64(b.disk.BlockSize()) }

// requiredBlocksFor returns ceil(bytes / blockSize).
func (b *ByteStore) requiredBlocksFor(bytes int64) int64 {
	bs := b.blockSize()
	if bytes <= 0 {
		return 0
	}
	return (bytes + bs - 1) / bs
}

// prepareForWrite ensures the store has enough blocks to hold [0, pos+length)
// and, if pos is past the current size, zero-fills the gap [size, pos).
// Must be called with mu held for writing.
func (b *ByteStore) prepareForWrite(pos, length int64) error {
	needed := b.requiredBlocksFor(pos + length)
	have := int64(b.blocks.Count())
	if needed > have {
		if err := b.disk.Allocate(&b.blocks, int(needed-have)); err != nil {
			return err
		}
	}
	if pos > b.size {
		b.zeroRange(b.size, pos)
		b.size = pos
	}
	return nil
}

// zeroRange zeroes bytes in [from, to) across the block list. Requires mu
// held for writing and enough blocks already allocated to cover `to`.
func (b *ByteStore) zeroRange(from, to int64) {
	bs := b.blockSize()
	for pos := from; pos < to; {
		idx := pos / bs
		off := pos % bs
		blk := b.blocks.At(int(idx))
		n := bs - off
		if remaining := to - pos; n > remaining {
			n = remaining
		}
		for i := int64(0); i < n; i++ {
			blk[off+i] = 0
		}
		pos += n
	}
}

// ReadAt implements io.ReaderAt. Per the spec's boundary rule, a read at or
// beyond size reports io.EOF with n == 0.
func (b *ByteStore) ReadAt(p []byte, pos int64) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readAtLocked(p, pos)
}

func (b *ByteStore) readAtLocked(p []byte, pos int64) (int, error) {
	if pos < 0 {
		return 0, ErrInvalid
	}
	if pos >= b.size {
		return 0, io.EOF
	}
	avail := b.size - pos
	want := int64(len(p))
	if want > avail {
		want = avail
	}
	bs := b.blockSize()
	var n int64
	for n < want {
		abs := pos + n
		idx := abs / bs
		off := abs % bs
		blk := b.blocks.At(int(idx))
		chunk := bs - off
		if remaining := want - n; chunk > remaining {
			chunk = remaining
		}
		copy(p[n:n+chunk], blk[off:off+chunk])
		n += chunk
	}
	var err error
	if want < int64(len(p)) {
		err = io.EOF
	}
	return int(n), err
}

// GatherReadAt reads into each buffer in turn starting at pos, stopping at
// the first short read (including the first one that hits EOF).
func (b *ByteStore) GatherReadAt(bufs [][]byte, pos int64) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var total int64
	for _, buf := range bufs {
		n, err := b.readAtLocked(buf, pos+total)
		total += int64(n)
		if err != nil || n < len(buf) {
			return total, err
		}
	}
	return total, nil
}

// WriteAt implements io.WriterAt.
func (b *ByteStore) WriteAt(p []byte, pos int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeAtLocked(p, pos)
}

func (b *ByteStore) writeAtLocked(p []byte, pos int64) (int, error) {
	if pos < 0 {
		return 0, ErrInvalid
	}
	if err := b.prepareForWrite(pos, int64(len(p))); err != nil {
		return 0, err
	}
	bs := b.blockSize()
	var n int64
	want := int64(len(p))
	for n < want {
		abs := pos + n
		idx := abs / bs
		off := abs % bs
		blk := b.blocks.At(int(idx))
		chunk := bs - off
		if remaining := want - n; chunk > remaining {
			chunk = remaining
		}
		copy(blk[off:off+chunk], p[n:n+chunk])
		n += chunk
	}
	if end := pos + n; end > b.size {
		b.size = end
	}
	return int(n), nil
}

// ScatterWriteAt writes each buffer in turn starting at pos, as a single
// logical write (one allocation pass covering the whole span).
func (b *ByteStore) ScatterWriteAt(bufs [][]byte, pos int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pos < 0 {
		return 0, ErrInvalid
	}
	var span int64
	for _, buf := range bufs {
		span += int64(len(buf))
	}
	if err := b.prepareForWrite(pos, span); err != nil {
		return 0, err
	}
	var total int64
	for _, buf := range bufs {
		n, err := b.writeAtLocked(buf, pos+total)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// TransferFrom reads up to count bytes from r into the store starting at
// pos, preparing storage for the full span up front. Partial transfers
// (r returns fewer bytes, or io.EOF) are reported via the returned count,
// never as an error.
func (b *ByteStore) TransferFrom(r io.Reader, pos int64, count int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.prepareForWrite(pos, count); err != nil {
		return 0, err
	}
	bs := b.blockSize()
	var n int64
	for n < count {
		abs := pos + n
		idx := abs / bs
		off := abs % bs
		blk := b.blocks.At(int(idx))
		chunk := bs - off
		if remaining := count - n; chunk > remaining {
			chunk = remaining
		}
		read, err := io.ReadFull(r, blk[off:off+chunk])
		n += int64(read)
		if end := pos + n; end > b.size {
			b.size = end
		}
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return n, nil
			}
			return n, err
		}
	}
	return n, nil
}

// TransferTo writes up to count bytes starting at pos to w. Unlike ReadAt,
// running past the end of the store is not an error: it simply yields 0,
// for compatibility with the transferTo contract the spec calls out
// (FileChannel.transferTo never reports EOF).
func (b *ByteStore) TransferTo(pos int64, count int64, w io.Writer) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if pos >= b.size {
		return 0, nil
	}
	avail := b.size - pos
	if count > avail {
		count = avail
	}
	bs := b.blockSize()
	var n int64
	for n < count {
		abs := pos + n
		idx := abs / bs
		off := abs % bs
		blk := b.blocks.At(int(idx))
		chunk := bs - off
		if remaining := count - n; chunk > remaining {
			chunk = remaining
		}
		written, err := w.Write(blk[off : off+chunk])
		n += int64(written)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Truncate shrinks the store to newSize, releasing trailing blocks to the
// disk, and returns true. A newSize >= the current size is a no-op that
// returns false.
func (b *ByteStore) Truncate(newSize int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if newSize >= b.size {
		return false
	}
	needed := b.requiredBlocksFor(newSize)
	have := int64(b.blocks.Count())
	if have > needed {
		b.disk.Free(&b.blocks, int(have-needed))
	}
	b.size = newSize
	return true
}

// Copy returns a new, independent ByteStore with the same contents. It
// holds the read lock for the duration of the block-level memcopy.
func (b *ByteStore) Copy() (*ByteStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := NewByteStore(b.disk)
	count := b.blocks.Count()
	if count > 0 {
		if err := b.disk.Allocate(&out.blocks, count); err != nil {
			return nil, err
		}
		for i := 0; i < count; i++ {
			copy(out.blocks.At(i), b.blocks.At(i))
		}
	}
	out.size = b.size
	return out, nil
}

// Opened records a new open handle on this store.
func (b *ByteStore) Opened() {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()
	b.openCount++
}

// Closed records that an open handle has been released, reclaiming the
// store's blocks if it has also been marked deleted and this was the last
// handle.
func (b *ByteStore) Closed() {
	b.lifecycleMu.Lock()
	shouldReclaim := false
	if b.openCount > 0 {
		b.openCount--
	}
	if b.openCount == 0 && b.deleted {
		shouldReclaim = true
	}
	b.lifecycleMu.Unlock()

	if shouldReclaim {
		b.reclaim()
	}
}

// Delete marks the store deleted. If there are no open handles, its blocks
// are reclaimed immediately; otherwise reclamation happens when the last
// handle closes.
func (b *ByteStore) Delete() {
	b.lifecycleMu.Lock()
	b.deleted = true
	shouldReclaim := b.openCount == 0
	b.lifecycleMu.Unlock()

	if shouldReclaim {
		b.reclaim()
	}
}

func (b *ByteStore) reclaim() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disk.FreeAll(&b.blocks)
	b.size = 0
}

// OpenCount returns the number of outstanding open handles. Exposed for
// tests asserting the ByteStore lifecycle invariant.
func (b *ByteStore) OpenCount() int {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()
	return b.openCount
}
