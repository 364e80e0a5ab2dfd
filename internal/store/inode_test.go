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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapfs-project/heapfs/clock"
)

func TestNewDirectoryInodeLinksSelf(t *testing.T) {
	n := NewDirectoryInode(1, clock.RealClock{})
	assert.True(t, n.IsDirectory())
	assert.False(t, n.IsRegularFile())
	assert.False(t, n.IsSymbolicLink())
	assert.Equal(t, uint64(1), n.ID())

	self, ok := n.Directory().Get(Self)
	require.True(t, ok)
	assert.Same(t, n, self)
}

func TestNewRegularInodeStartsEmpty(t *testing.T) {
	disk, err := NewHeapDisk(4, 16, 4)
	require.NoError(t, err)
	n := NewRegularInode(2, clock.RealClock{}, disk)
	assert.True(t, n.IsRegularFile())
	assert.EqualValues(t, 0, n.Size())
}

func TestNewSymlinkInodeSizeIsTargetLength(t *testing.T) {
	target := NewAbsolutePath("/", n2("a"), n2("bc"))
	s := NewSymlinkInode(3, clock.RealClock{}, target)
	assert.True(t, s.IsSymbolicLink())
	assert.Equal(t, target, s.Target())
	assert.EqualValues(t, len(target.String()), s.Size())
}

func TestInodeAccessorsPanicOnWrongKind(t *testing.T) {
	dirInode := NewDirectoryInode(1, clock.RealClock{})
	assert.Panics(t, func() { dirInode.Content() })
	assert.Panics(t, func() { dirInode.Target() })

	disk, err := NewHeapDisk(4, 16, 4)
	require.NoError(t, err)
	fileInode := NewRegularInode(2, clock.RealClock{}, disk)
	assert.Panics(t, func() { fileInode.Directory() })
	assert.Panics(t, func() { fileInode.Target() })
}

func TestInodeLinkCountTracksLinkedUnlinked(t *testing.T) {
	n := NewDirectoryInode(1, clock.RealClock{})
	assert.Equal(t, 0, n.LinkCount())
	n.linked()
	n.linked()
	assert.Equal(t, 2, n.LinkCount())
	n.unlinked()
	assert.Equal(t, 1, n.LinkCount())
}

func TestInodeTouchModifiedAlsoTouchesAccess(t *testing.T) {
	n := NewDirectoryInode(1, clock.RealClock{})
	before := n.ModifiedAt()
	time.Sleep(time.Millisecond)
	n.TouchModified()
	assert.True(t, n.ModifiedAt().After(before))
	assert.Equal(t, n.ModifiedAt(), n.AccessedAt())
}

func TestInodeSetTimesLeavesNilFieldsUntouched(t *testing.T) {
	n := NewDirectoryInode(1, clock.RealClock{})
	created := n.CreatedAt()
	newModified := created.Add(time.Hour)
	n.SetTimes(nil, nil, &newModified)
	assert.Equal(t, created, n.CreatedAt())
	assert.Equal(t, newModified, n.ModifiedAt())
}

func TestInodeAttributeRoundTrip(t *testing.T) {
	n := NewDirectoryInode(1, clock.RealClock{})
	_, ok := n.GetAttribute("posix", "mode")
	assert.False(t, ok)

	n.SetAttribute("posix", "mode", PosixPermission(0o755))
	v, ok := n.GetAttribute("posix", "mode")
	require.True(t, ok)
	assert.Equal(t, PosixPermission(0o755), v)

	snap := n.AttributesForView("posix")
	assert.Equal(t, PosixPermission(0o755), snap["mode"])
}

func n2(s string) Name { return NewName(s, s) }
