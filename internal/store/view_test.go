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

func newTestView(t *testing.T) *FileSystemView {
	t.Helper()
	disk, err := NewHeapDisk(4, 4096, 64)
	require.NoError(t, err)
	return NewFileSystemView(NewFileStore(disk, clock.RealClock{}))
}

func TestViewCreateDirectoryThenLookup(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.CreateDirectory(NewAbsolutePath("/", n2("a"))))

	inode, err := v.Lookup(NewAbsolutePath("/", n2("a")), FollowLinks)
	require.NoError(t, err)
	assert.True(t, inode.IsDirectory())
}

func TestViewCreateDirectoryRejectsExisting(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.CreateDirectory(NewAbsolutePath("/", n2("a"))))
	err := v.CreateDirectory(NewAbsolutePath("/", n2("a")))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestViewCreateDirectoryRequiresExistingParent(t *testing.T) {
	v := newTestView(t)
	err := v.CreateDirectory(NewAbsolutePath("/", n2("missing"), n2("a")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestViewCreateRegularFileRejectsExisting(t *testing.T) {
	v := newTestView(t)
	_, err := v.CreateRegularFile(NewAbsolutePath("/", n2("f")))
	require.NoError(t, err)
	_, err = v.CreateRegularFile(NewAbsolutePath("/", n2("f")))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestViewGetOrCreateRegularFileCreatesThenReturnsExisting(t *testing.T) {
	v := newTestView(t)
	path := NewAbsolutePath("/", n2("f"))
	created, err := v.GetOrCreateRegularFile(path)
	require.NoError(t, err)

	got, err := v.GetOrCreateRegularFile(path)
	require.NoError(t, err)
	assert.Same(t, created, got)
}

func TestViewGetOrCreateRegularFileRejectsNonRegularExisting(t *testing.T) {
	v := newTestView(t)
	path := NewAbsolutePath("/", n2("d"))
	require.NoError(t, v.CreateDirectory(path))
	_, err := v.GetOrCreateRegularFile(path)
	assert.ErrorIs(t, err, ErrNotRegularFile)
}

func TestViewCreateSymlinkAndReadSymlink(t *testing.T) {
	v := newTestView(t)
	_, err := v.CreateRegularFile(NewAbsolutePath("/", n2("target")))
	require.NoError(t, err)
	require.NoError(t, v.CreateSymlink(NewAbsolutePath("/", n2("link")), NewAbsolutePath("/", n2("target"))))

	target, err := v.ReadSymlink(NewAbsolutePath("/", n2("link")))
	require.NoError(t, err)
	assert.Equal(t, "/target", target.String())

	resolved, err := v.Lookup(NewAbsolutePath("/", n2("link")), FollowLinks)
	require.NoError(t, err)
	assert.True(t, resolved.IsRegularFile())
}

func TestViewLinkCreatesHardLinkSharingInode(t *testing.T) {
	v := newTestView(t)
	file, err := v.CreateRegularFile(NewAbsolutePath("/", n2("a")))
	require.NoError(t, err)

	require.NoError(t, v.Link(NewAbsolutePath("/", n2("b")), NewAbsolutePath("/", n2("a"))))
	same, err := IsSameFile(v, NewAbsolutePath("/", n2("a")), v, NewAbsolutePath("/", n2("b")))
	require.NoError(t, err)
	assert.True(t, same)
	assert.Equal(t, 2, file.LinkCount())
}

func TestViewLinkRejectsDirectories(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.CreateDirectory(NewAbsolutePath("/", n2("d"))))
	err := v.Link(NewAbsolutePath("/", n2("e")), NewAbsolutePath("/", n2("d")))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestViewDeleteRemovesEntry(t *testing.T) {
	v := newTestView(t)
	path := NewAbsolutePath("/", n2("f"))
	_, err := v.CreateRegularFile(path)
	require.NoError(t, err)

	require.NoError(t, v.Delete(path, NoFollowLinks))
	assert.False(t, v.Exists(path, FollowLinks))
}

func TestViewDeleteRejectsNonEmptyDirectory(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.CreateDirectory(NewAbsolutePath("/", n2("d"))))
	_, err := v.CreateRegularFile(NewAbsolutePath("/", n2("d"), n2("f")))
	require.NoError(t, err)

	err = v.Delete(NewAbsolutePath("/", n2("d")), NoFollowLinks)
	assert.ErrorIs(t, err, ErrDirectoryNotEmpty)
}

func TestViewDeleteRejectsWorkingDirectory(t *testing.T) {
	v := newTestView(t)
	path := NewAbsolutePath("/", n2("d"))
	require.NoError(t, v.CreateDirectory(path))
	sub, err := v.WithWorkingDirectory(path)
	require.NoError(t, err)

	err = sub.Delete(NewAbsolutePath("/", n2("d")), NoFollowLinks)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestViewDeleteOfLastHardLinkReclaimsContent(t *testing.T) {
	v := newTestView(t)
	path := NewAbsolutePath("/", n2("f"))
	file, err := v.CreateRegularFile(path)
	require.NoError(t, err)
	require.NoError(t, must(file.Content().WriteAt([]byte("data"), 0)))

	require.NoError(t, v.Delete(path, NoFollowLinks))
	assert.Equal(t, 0, file.LinkCount())
	assert.EqualValues(t, 0, v.Store().Disk().AllocatedBlocks())
}

func TestViewReadDirectoryListsChildren(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.CreateDirectory(NewAbsolutePath("/", n2("d"))))
	_, err := v.CreateRegularFile(NewAbsolutePath("/", n2("d"), n2("a")))
	require.NoError(t, err)
	_, err = v.CreateRegularFile(NewAbsolutePath("/", n2("d"), n2("b")))
	require.NoError(t, err)

	entries, err := v.ReadDirectory(NewAbsolutePath("/", n2("d")))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestViewWalkFileTreeVisitsEveryDescendant(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.CreateDirectory(NewAbsolutePath("/", n2("d"))))
	require.NoError(t, v.CreateDirectory(NewAbsolutePath("/", n2("d"), n2("sub"))))
	_, err := v.CreateRegularFile(NewAbsolutePath("/", n2("d"), n2("sub"), n2("f")))
	require.NoError(t, err)

	var visited []string
	err = v.WalkFileTree(NewAbsolutePath("/", n2("d")), func(p Path, inode *Inode) error {
		visited = append(visited, p.String())
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/d", "/d/sub", "/d/sub/f"}, visited)
}

func TestCopySameStoreDuplicatesRegularFileContent(t *testing.T) {
	v := newTestView(t)
	src := NewAbsolutePath("/", n2("a"))
	file, err := v.CreateRegularFile(src)
	require.NoError(t, err)
	require.NoError(t, must(file.Content().WriteAt([]byte("hi"), 0)))

	dst := NewAbsolutePath("/", n2("b"))
	require.NoError(t, Copy(v, src, v, dst, 0))

	same, err := IsSameFile(v, src, v, dst)
	require.NoError(t, err)
	assert.False(t, same)

	copied, err := v.Lookup(dst, FollowLinks)
	require.NoError(t, err)
	buf := make([]byte, 2)
	_, err = copied.Content().ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(buf))
}

func TestCopyDirectoryRecursesOverChildren(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.CreateDirectory(NewAbsolutePath("/", n2("src"))))
	_, err := v.CreateRegularFile(NewAbsolutePath("/", n2("src"), n2("f")))
	require.NoError(t, err)

	require.NoError(t, Copy(v, NewAbsolutePath("/", n2("src")), v, NewAbsolutePath("/", n2("dst")), 0))

	entries, err := v.ReadDirectory(NewAbsolutePath("/", n2("dst")))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "f", entries[0].Name.Display())
}

func TestCopyRejectsExistingDestination(t *testing.T) {
	v := newTestView(t)
	_, err := v.CreateRegularFile(NewAbsolutePath("/", n2("a")))
	require.NoError(t, err)
	_, err = v.CreateRegularFile(NewAbsolutePath("/", n2("b")))
	require.NoError(t, err)

	err = Copy(v, NewAbsolutePath("/", n2("a")), v, NewAbsolutePath("/", n2("b")), 0)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCopyAtomicMoveIsUnsupported(t *testing.T) {
	v := newTestView(t)
	_, err := v.CreateRegularFile(NewAbsolutePath("/", n2("a")))
	require.NoError(t, err)

	err = Copy(v, NewAbsolutePath("/", n2("a")), v, NewAbsolutePath("/", n2("b")), AtomicMove)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCopyReplaceExistingOverwritesDestination(t *testing.T) {
	v := newTestView(t)
	src := NewAbsolutePath("/", n2("a"))
	file, err := v.CreateRegularFile(src)
	require.NoError(t, err)
	require.NoError(t, must(file.Content().WriteAt([]byte("new"), 0)))

	dst := NewAbsolutePath("/", n2("b"))
	_, err = v.CreateRegularFile(dst)
	require.NoError(t, err)

	require.NoError(t, Copy(v, src, v, dst, ReplaceExisting))

	copied, err := v.Lookup(dst, FollowLinks)
	require.NoError(t, err)
	buf := make([]byte, 3)
	_, err = copied.Content().ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "new", string(buf))
}

func TestCopySameInodeDestinationIsNoop(t *testing.T) {
	v := newTestView(t)
	path := NewAbsolutePath("/", n2("a"))
	_, err := v.CreateRegularFile(path)
	require.NoError(t, err)
	linked := NewAbsolutePath("/", n2("b"))
	require.NoError(t, v.Link(linked, path))

	require.NoError(t, Copy(v, path, v, linked, 0))
}

func TestCopyAttributesPropagatesTimestamps(t *testing.T) {
	v := newTestView(t)
	src := NewAbsolutePath("/", n2("a"))
	file, err := v.CreateRegularFile(src)
	require.NoError(t, err)
	past := file.CreatedAt().Add(-time.Hour)
	file.SetTimes(&past, &past, &past)

	dst := NewAbsolutePath("/", n2("b"))
	require.NoError(t, Copy(v, src, v, dst, CopyAttributes))

	copied, err := v.Lookup(dst, FollowLinks)
	require.NoError(t, err)
	assert.True(t, copied.CreatedAt().Equal(past))
	assert.True(t, copied.ModifiedAt().Equal(past))
}

func TestMoveSameStoreIsRelinkNotCopy(t *testing.T) {
	v := newTestView(t)
	src := NewAbsolutePath("/", n2("a"))
	file, err := v.CreateRegularFile(src)
	require.NoError(t, err)

	dst := NewAbsolutePath("/", n2("b"))
	require.NoError(t, Move(v, src, v, dst, 0))

	assert.False(t, v.Exists(src, FollowLinks))
	moved, err := v.Lookup(dst, FollowLinks)
	require.NoError(t, err)
	assert.Same(t, file, moved)
}

func TestMoveSameStoreAtomicMoveSucceeds(t *testing.T) {
	v := newTestView(t)
	src := NewAbsolutePath("/", n2("a"))
	_, err := v.CreateRegularFile(src)
	require.NoError(t, err)

	dst := NewAbsolutePath("/", n2("b"))
	require.NoError(t, Move(v, src, v, dst, AtomicMove))
	assert.True(t, v.Exists(dst, FollowLinks))
}

func TestMoveAcrossStoresAtomicMoveIsUnsupported(t *testing.T) {
	v1 := newTestView(t)
	v2 := newTestView(t)
	src := NewAbsolutePath("/", n2("a"))
	_, err := v1.CreateRegularFile(src)
	require.NoError(t, err)

	err = Move(v1, src, v2, NewAbsolutePath("/", n2("b")), AtomicMove)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestMoveRejectsDirectoryIntoOwnSubtree(t *testing.T) {
	v := newTestView(t)
	a := NewAbsolutePath("/", n2("a"))
	require.NoError(t, v.CreateDirectory(a))
	b := NewAbsolutePath("/", n2("a"), n2("b"))
	require.NoError(t, v.CreateDirectory(b))

	err := Move(v, a, v, NewAbsolutePath("/", n2("a"), n2("b"), n2("x")), 0)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMoveReplaceExistingOverwritesDestination(t *testing.T) {
	v := newTestView(t)
	src := NewAbsolutePath("/", n2("a"))
	_, err := v.CreateRegularFile(src)
	require.NoError(t, err)
	dst := NewAbsolutePath("/", n2("b"))
	_, err = v.CreateRegularFile(dst)
	require.NoError(t, err)

	require.NoError(t, Move(v, src, v, dst, ReplaceExisting))
	assert.False(t, v.Exists(src, FollowLinks))
	assert.True(t, v.Exists(dst, FollowLinks))
}

func TestMoveSameInodeDestinationIsNoop(t *testing.T) {
	v := newTestView(t)
	path := NewAbsolutePath("/", n2("a"))
	_, err := v.CreateRegularFile(path)
	require.NoError(t, err)
	linked := NewAbsolutePath("/", n2("b"))
	require.NoError(t, v.Link(linked, path))

	require.NoError(t, Move(v, path, v, linked, 0))
	assert.True(t, v.Exists(path, FollowLinks))
	assert.True(t, v.Exists(linked, FollowLinks))
}

func TestMoveAcrossStoresCopiesThenDeletesSource(t *testing.T) {
	v1 := newTestView(t)
	v2 := newTestView(t)

	src := NewAbsolutePath("/", n2("a"))
	file, err := v1.CreateRegularFile(src)
	require.NoError(t, err)
	require.NoError(t, must(file.Content().WriteAt([]byte("x"), 0)))

	dst := NewAbsolutePath("/", n2("b"))
	require.NoError(t, Move(v1, src, v2, dst, 0))

	assert.False(t, v1.Exists(src, FollowLinks))
	assert.True(t, v2.Exists(dst, FollowLinks))
}

func TestIsSameFileFalseAcrossDifferentStores(t *testing.T) {
	v1 := newTestView(t)
	v2 := newTestView(t)
	p := NewAbsolutePath("/", n2("a"))
	_, err := v1.CreateRegularFile(p)
	require.NoError(t, err)
	_, err = v2.CreateRegularFile(p)
	require.NoError(t, err)

	same, err := IsSameFile(v1, p, v2, p)
	require.NoError(t, err)
	assert.False(t, same)
}

func TestWithWorkingDirectoryResolvesRelativePaths(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.CreateDirectory(NewAbsolutePath("/", n2("d"))))
	sub, err := v.WithWorkingDirectory(NewAbsolutePath("/", n2("d")))
	require.NoError(t, err)

	_, err = sub.CreateRegularFile(NewRelativePath(n2("f")))
	require.NoError(t, err)
	assert.True(t, v.Exists(NewAbsolutePath("/", n2("d"), n2("f")), FollowLinks))
}

func TestWithWorkingDirectoryRejectsNonDirectory(t *testing.T) {
	v := newTestView(t)
	_, err := v.CreateRegularFile(NewAbsolutePath("/", n2("f")))
	require.NoError(t, err)
	_, err = v.WithWorkingDirectory(NewAbsolutePath("/", n2("f")))
	assert.ErrorIs(t, err, ErrNotDirectory)
}
