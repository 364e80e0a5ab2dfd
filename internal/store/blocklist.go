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

// BlockList is an ordered sequence of fixed-size byte blocks backing a
// ByteStore. It owns no lock of its own; callers (ByteStore) serialize
// access to it.
type BlockList struct {
	blocks [][]byte
}

// Count returns the number of blocks currently held.
func (l *BlockList) Count() int { return len(l.blocks) }

// At returns the block at index i.
func (l *BlockList) At(i int) []byte { return l.blocks[i] }

func (l *BlockList) append(b []byte) { l.blocks = append(l.blocks, b) }

// removeLast detaches and returns the last n blocks, shrinking the list.
func (l *BlockList) removeLast(n int) [][]byte {
	if n > len(l.blocks) {
		n = len(l.blocks)
	}
	split := len(l.blocks) - n
	removed := append([][]byte(nil), l.blocks[split:]...)
	l.blocks = l.blocks[:split]
	return removed
}
