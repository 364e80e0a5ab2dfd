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

// Name is a single path component. display is how it renders back to the
// host; canonical is what lookup and hashing use, after whatever folding the
// file system's Normalization applies.
//
// INVARIANT: the zero Name is the empty name, not ".".
type Name struct {
	display   string
	canonical string
}

// Self and Parent are the singleton "." and ".." sentinels. They must
// canonicalize to themselves regardless of normalization, and every dot /
// dot-dot name in the system is one of these two values so that equality
// checks can shortcut to a pointer-free ==.
var (
	Self   = Name{display: ".", canonical: "."}
	Parent = Name{display: "..", canonical: ".."}
	empty  = Name{}
)

// NewName builds a Name from its display and canonical forms. "." and ".."
// always produce the shared Self / Parent sentinels, irrespective of what
// canonicalize produced, since sentinels must canonicalize to themselves.
func NewName(display, canonical string) Name {
	switch display {
	case ".":
		return Self
	case "..":
		return Parent
	}
	return Name{display: display, canonical: canonical}
}

// Display returns the form of the name suitable for rendering to the host.
func (n Name) Display() string { return n.display }

// Canonical returns the form of the name used for equality and hashing.
func (n Name) Canonical() string { return n.canonical }

// IsEmpty reports whether this is the zero Name.
func (n Name) IsEmpty() bool { return n == empty }

// IsSelf reports whether n is the "." sentinel.
func (n Name) IsSelf() bool { return n == Self }

// IsParent reports whether n is the ".." sentinel.
func (n Name) IsParent() bool { return n == Parent }

// IsDotOrDotDot reports whether n is "." or "..", the two names a
// DirectoryTable manages itself and refuses as caller-supplied link/unlink
// targets.
func (n Name) IsDotOrDotDot() bool { return n == Self || n == Parent }

// Equal compares two names by canonical form, as lookup does.
func (n Name) Equal(other Name) bool { return n.canonical == other.canonical }

func (n Name) String() string { return n.display }
