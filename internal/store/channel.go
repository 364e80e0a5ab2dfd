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

// Channel is a seekable, position-tracking handle onto a regular file's
// ByteStore, the rough equivalent of a FileChannel: one Channel per open()
// call, each with its own cursor, independent of any other open handle on
// the same file.
//
// The source material expresses a closed-during-blocking-read channel by
// interrupting the reader's thread; Go has no thread to interrupt, so a
// Close here instead flips a mutex-guarded "closed" flag that every
// subsequent call checks cooperatively before touching the ByteStore,
// surfacing ErrClosedByInterrupt. An operation already in progress is not
// interrupted: it runs to completion (Close waits for the cursor-based
// ones, which hold the channel mutex). The guarantee is that the next
// operation on a closed channel always fails fast.
type Channel struct {
	content   *ByteStore
	readable  bool
	writable  bool
	appending bool

	mu     sync.Mutex
	pos    int64
	closed bool
}

// NewChannel opens content for the given access mode. The inode's open
// count is bumped for the lifetime of the channel.
func NewChannel(content *ByteStore, readable, writable, appending bool) *Channel {
	content.Opened()
	pos := int64(0)
	if appending {
		pos = content.Size()
	}
	return &Channel{content: content, readable: readable, writable: writable, appending: appending, pos: pos}
}

func (c *Channel) checkOpen() error {
	if c.closed {
		return ErrClosedByInterrupt
	}
	return nil
}

// Position returns the channel's current cursor.
func (c *Channel) Position() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// Seek repositions the cursor, per io.Seeker. Seeking past the current size
// is permitted; a read there reports io.EOF, and a write there zero-fills
// the gap between the old size and the cursor.
func (c *Channel) Seek(offset int64, whence int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return 0, err
	}
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = c.pos
	case io.SeekEnd:
		base = c.content.Size()
	default:
		return 0, ErrInvalid
	}
	newPos := base + offset
	if newPos < 0 {
		return 0, ErrInvalid
	}
	c.pos = newPos
	return newPos, nil
}

// Read implements io.Reader, advancing the cursor by the number of bytes
// read.
func (c *Channel) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return 0, err
	}
	if !c.readable {
		return 0, ErrNonReadable
	}
	n, err := c.content.ReadAt(p, c.pos)
	c.pos += int64(n)
	return n, err
}

// Write implements io.Writer. In append mode the cursor is forced to the
// current end of file before every write, matching O_APPEND semantics.
func (c *Channel) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return 0, err
	}
	if !c.writable {
		return 0, ErrNonWritable
	}
	if c.appending {
		c.pos = c.content.Size()
	}
	n, err := c.content.WriteAt(p, c.pos)
	c.pos += int64(n)
	return n, err
}

// ReadAt and WriteAt implement io.ReaderAt/io.WriterAt directly against the
// backing store, bypassing and not moving the cursor.
func (c *Channel) ReadAt(p []byte, off int64) (int, error) {
	c.mu.Lock()
	closed := c.closed
	readable := c.readable
	c.mu.Unlock()
	if closed {
		return 0, ErrClosedByInterrupt
	}
	if !readable {
		return 0, ErrNonReadable
	}
	return c.content.ReadAt(p, off)
}

func (c *Channel) WriteAt(p []byte, off int64) (int, error) {
	c.mu.Lock()
	closed := c.closed
	writable := c.writable
	c.mu.Unlock()
	if closed {
		return 0, ErrClosedByInterrupt
	}
	if !writable {
		return 0, ErrNonWritable
	}
	return c.content.WriteAt(p, off)
}

// Truncate resizes the backing store. Shrinking past the cursor leaves the
// cursor where it is (matching FileChannel.truncate, which does not clamp
// position when shrinking past it — only when the new size is smaller than
// the position does a subsequent write need to zero-fill the gap again).
func (c *Channel) Truncate(size int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return err
	}
	if !c.writable {
		return ErrNonWritable
	}
	c.content.Truncate(size)
	return nil
}

// Size returns the backing store's current logical size.
func (c *Channel) Size() int64 { return c.content.Size() }

// TransferTo writes up to count bytes starting at pos directly to w,
// without touching the cursor.
func (c *Channel) TransferTo(pos, count int64, w io.Writer) (int64, error) {
	if c.closed {
		return 0, ErrClosedByInterrupt
	}
	return c.content.TransferTo(pos, count, w)
}

// TransferFrom reads up to count bytes from r into the store starting at
// pos, without touching the cursor.
func (c *Channel) TransferFrom(r io.Reader, pos, count int64) (int64, error) {
	if c.closed {
		return 0, ErrClosedByInterrupt
	}
	if !c.writable {
		return 0, ErrNonWritable
	}
	return c.content.TransferFrom(r, pos, count)
}

// Close marks the channel closed; any operation subsequently attempted
// against the channel fails with ErrClosedByInterrupt, while one already
// in progress completes normally. It is safe to call Close more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	already := c.closed
	c.closed = true
	c.mu.Unlock()
	if !already {
		c.content.Closed()
	}
	return nil
}
