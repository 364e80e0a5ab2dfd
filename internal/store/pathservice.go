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
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CaseSensitivity controls how two names compare for equality when
// building a Name's canonical form.
type CaseSensitivity int

const (
	CaseSensitive CaseSensitivity = iota
	CaseInsensitiveASCII
	CaseInsensitiveUnicode
)

// Normalization controls Unicode normalization applied to a name's
// canonical form, so e.g. combining-character and precomposed spellings of
// the same grapheme collide.
type Normalization int

const (
	NormalizationNone Normalization = iota
	NormalizationNFC
	NormalizationNFD
)

// PathService parses and formats Paths for one root set and canonicalizes
// Names according to the configured case-sensitivity and Unicode
// normalization.
type PathService struct {
	separator string
	roots     []string
	caseMode  CaseSensitivity
	normMode  Normalization
}

// NewPathService builds a service. separator must be a single character;
// roots lists the recognized root strings (e.g. ["/"] or ["C:\\", "D:\\"]).
func NewPathService(separator string, roots []string, caseMode CaseSensitivity, normMode Normalization) (*PathService, error) {
	if len(separator) != 1 {
		return nil, fmt.Errorf("%w: separator must be a single character, got %q", ErrInvalid, separator)
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: at least one root is required", ErrInvalid)
	}
	return &PathService{separator: separator, roots: append([]string(nil), roots...), caseMode: caseMode, normMode: normMode}, nil
}

// Separator returns the configured path separator.
func (s *PathService) Separator() string { return s.separator }

// Roots returns the configured root strings.
func (s *PathService) Roots() []string { return append([]string(nil), s.roots...) }

// canonicalize derives a Name's canonical form from its display form,
// applying Unicode normalization first and then case folding, matching the
// teacher's ordering for display-vs-canonical name comparisons.
func (s *PathService) canonicalize(display string) string {
	out := display
	switch s.normMode {
	case NormalizationNFC:
		out = norm.NFC.String(out)
	case NormalizationNFD:
		out = norm.NFD.String(out)
	}
	switch s.caseMode {
	case CaseInsensitiveASCII:
		out = toLowerASCII(out)
	case CaseInsensitiveUnicode:
		out = strings.ToLower(out)
	}
	return out
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// NewName builds a Name from display text, deriving its canonical form.
func (s *PathService) NewName(display string) Name {
	return NewName(display, s.canonicalize(display))
}

func (s *PathService) matchRoot(str string) (root string, rest string, ok bool) {
	for _, r := range s.roots {
		if strings.HasPrefix(str, r) {
			return r, str[len(r):], true
		}
	}
	return "", str, false
}

// Parse splits str into a Path, recognizing a configured root prefix as an
// absolute path and everything else as relative.
func (s *PathService) Parse(str string) Path {
	root, rest, isAbsolute := s.matchRoot(str)

	var names []Name
	for _, part := range strings.Split(rest, s.separator) {
		if part == "" {
			continue
		}
		names = append(names, s.NewName(part))
	}
	if len(names) == 0 {
		names = []Name{empty}
	}
	if isAbsolute {
		return Path{hasRoot: true, root: root, names: names}
	}
	return Path{names: names}
}

// Format renders path using this service's separator, the inverse of
// Parse for a path produced by it.
func (s *PathService) Format(path Path) string {
	var b strings.Builder
	if path.hasRoot {
		b.WriteString(path.root)
	}
	for i, n := range path.Names() {
		if n.IsEmpty() {
			continue
		}
		if i > 0 {
			b.WriteString(s.separator)
		}
		b.WriteString(n.Display())
	}
	return b.String()
}
