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

// eventQueue is a FIFO of pending Events, decoupling a registration's poll
// tick (which discovers zero or more events at once) from its delivery
// goroutine (which sends them one at a time on a possibly-slow-to-drain
// channel). Backed by a singly linked list so Push never reallocates,
// unlike a slice-backed ring that would need resizing under an unbounded
// producer.
type eventQueue struct {
	start, end *eventNode
	size       int
}

type eventNode struct {
	value Event
	next  *eventNode
}

func (q *eventQueue) isEmpty() bool { return q.size == 0 }

func (q *eventQueue) push(e Event) {
	n := &eventNode{value: e}
	if q.size == 0 {
		q.start, q.end = n, n
	} else {
		q.end.next = n
		q.end = n
	}
	q.size++
}

// pop removes and returns the oldest event. Panics if the queue is empty;
// callers must check isEmpty first.
func (q *eventQueue) pop() Event {
	if q.size == 0 {
		panic("watch: pop called on an empty event queue")
	}
	n := q.start
	if q.size == 1 {
		q.start, q.end = nil, nil
	} else {
		q.start = q.start.next
	}
	q.size--
	return n.value
}

func (q *eventQueue) len() int { return q.size }
