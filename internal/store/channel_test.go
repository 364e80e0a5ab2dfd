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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelWriteThenReadAdvancesCursor(t *testing.T) {
	b := newTestByteStore(t)
	c := NewChannel(b, true, true, false)

	n, err := c.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.EqualValues(t, 3, c.Position())

	_, err = c.Seek(0, io.SeekStart)
	require.NoError(t, err)
	buf := make([]byte, 3)
	n, err = c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))
	assert.EqualValues(t, 3, c.Position())
}

func TestChannelNonReadableRejectsRead(t *testing.T) {
	b := newTestByteStore(t)
	c := NewChannel(b, false, true, false)
	_, err := c.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrNonReadable)
}

func TestChannelNonWritableRejectsWrite(t *testing.T) {
	b := newTestByteStore(t)
	c := NewChannel(b, true, false, false)
	_, err := c.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrNonWritable)
}

func TestChannelAppendModeForcesPositionToEnd(t *testing.T) {
	b := newTestByteStore(t)
	require.NoError(t, must(b.WriteAt([]byte("1234"), 0)))

	c := NewChannel(b, true, true, true)
	assert.EqualValues(t, 4, c.Position())

	_, err := c.Seek(0, io.SeekStart)
	require.NoError(t, err)
	n, err := c.Write([]byte("5"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.EqualValues(t, 5, b.Size())
}

func TestChannelSeekWhenceVariants(t *testing.T) {
	b := newTestByteStore(t)
	require.NoError(t, must(b.WriteAt([]byte("01234"), 0)))
	c := NewChannel(b, true, true, false)

	pos, err := c.Seek(2, io.SeekStart)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pos)

	pos, err = c.Seek(1, io.SeekCurrent)
	require.NoError(t, err)
	assert.EqualValues(t, 3, pos)

	pos, err = c.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	assert.EqualValues(t, 5, pos)

	_, err = c.Seek(-100, io.SeekStart)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestChannelReadAtWriteAtDoNotMoveCursor(t *testing.T) {
	b := newTestByteStore(t)
	c := NewChannel(b, true, true, false)

	_, err := c.WriteAt([]byte("xyz"), 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, c.Position())

	buf := make([]byte, 3)
	_, err = c.ReadAt(buf, 10)
	require.NoError(t, err)
	assert.Equal(t, "xyz", string(buf))
	assert.EqualValues(t, 0, c.Position())
}

func TestChannelCloseFailsFastOnSubsequentOps(t *testing.T) {
	b := newTestByteStore(t)
	c := NewChannel(b, true, true, false)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close()) // idempotent

	_, err := c.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosedByInterrupt)
	_, err = c.Write([]byte("a"))
	assert.ErrorIs(t, err, ErrClosedByInterrupt)
	_, err = c.Seek(0, io.SeekStart)
	assert.ErrorIs(t, err, ErrClosedByInterrupt)
}

func TestChannelTruncateRequiresWritable(t *testing.T) {
	b := newTestByteStore(t)
	require.NoError(t, must(b.WriteAt([]byte("hello"), 0)))
	ro := NewChannel(b, true, false, false)
	assert.ErrorIs(t, ro.Truncate(1), ErrNonWritable)
}
