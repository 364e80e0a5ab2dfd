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

package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapfs-project/heapfs/clock"
	"github.com/heapfs-project/heapfs/internal/store"
)

func n(s string) store.Name { return store.NewName(s, s) }

func newTestViewForWatch(t *testing.T) *store.FileSystemView {
	t.Helper()
	disk, err := store.NewHeapDisk(4, 4096, 64)
	require.NoError(t, err)
	return store.NewFileSystemView(store.NewFileStore(disk, clock.RealClock{}))
}

// waitForEvent repeatedly advances the simulated clock and polls ch with a
// short real-time timeout per attempt, since the poller's goroutine races
// with the test to register its next clock.After call. The simulated clock
// makes the poll *interval* deterministic; only the scheduling of the
// goroutine that waits on it is not, which this retry loop absorbs.
func waitForEvent(t *testing.T, ch <-chan Event, clk *clock.SimulatedClock, interval time.Duration) Event {
	t.Helper()
	for i := 0; i < 200; i++ {
		clk.AdvanceTime(interval)
		select {
		case e := <-ch:
			return e
		case <-time.After(2 * time.Millisecond):
		}
	}
	t.Fatal("timed out waiting for watch event")
	return Event{}
}

func TestPollServiceReportsCreate(t *testing.T) {
	v := newTestViewForWatch(t)
	require.NoError(t, v.CreateDirectory(store.NewAbsolutePath("/", n("d"))))

	clk := clock.NewSimulatedClock(time.Unix(0, 0))
	svc := NewPollService(v, clk, time.Second)

	key, ch, err := svc.Register(store.NewAbsolutePath("/", n("d")), []EventKind{EventCreate})
	require.NoError(t, err)
	defer key.Cancel()

	_, err = v.CreateRegularFile(store.NewAbsolutePath("/", n("d"), n("f")))
	require.NoError(t, err)

	e := waitForEvent(t, ch, clk, time.Second)
	assert.Equal(t, EventCreate, e.Kind)
	assert.Equal(t, "/d/f", e.Path.String())
}

func TestPollServiceReportsDelete(t *testing.T) {
	v := newTestViewForWatch(t)
	require.NoError(t, v.CreateDirectory(store.NewAbsolutePath("/", n("d"))))
	_, err := v.CreateRegularFile(store.NewAbsolutePath("/", n("d"), n("f")))
	require.NoError(t, err)

	clk := clock.NewSimulatedClock(time.Unix(0, 0))
	svc := NewPollService(v, clk, time.Second)

	key, ch, err := svc.Register(store.NewAbsolutePath("/", n("d")), []EventKind{EventDelete})
	require.NoError(t, err)
	defer key.Cancel()

	require.NoError(t, v.Delete(store.NewAbsolutePath("/", n("d"), n("f")), store.NoFollowLinks))

	e := waitForEvent(t, ch, clk, time.Second)
	assert.Equal(t, EventDelete, e.Kind)
}

func TestPollServiceRegisterRejectsMissingDirectory(t *testing.T) {
	v := newTestViewForWatch(t)
	clk := clock.NewSimulatedClock(time.Unix(0, 0))
	svc := NewPollService(v, clk, time.Second)

	_, _, err := svc.Register(store.NewAbsolutePath("/", n("nope")), []EventKind{EventCreate})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPollServiceCancelClosesChannel(t *testing.T) {
	v := newTestViewForWatch(t)
	require.NoError(t, v.CreateDirectory(store.NewAbsolutePath("/", n("d"))))

	clk := clock.NewSimulatedClock(time.Unix(0, 0))
	svc := NewPollService(v, clk, time.Second)

	key, ch, err := svc.Register(store.NewAbsolutePath("/", n("d")), nil)
	require.NoError(t, err)
	key.Cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after Cancel")
	}
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "create", EventCreate.String())
	assert.Equal(t, "delete", EventDelete.String())
	assert.Equal(t, "modify", EventModify.String())
	assert.Equal(t, "overflow", EventOverflow.String())
}
