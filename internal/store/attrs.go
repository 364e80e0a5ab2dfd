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
	"time"
)

// PosixPermission is one bit of a POSIX-style rwx permission set, stored
// but never enforced (permission checks are out of scope — this engine has
// no notion of a calling user).
type PosixPermission uint16

const (
	PermOwnerRead PosixPermission = 1 << iota
	PermOwnerWrite
	PermOwnerExecute
	PermGroupRead
	PermGroupWrite
	PermGroupExecute
	PermOthersRead
	PermOthersWrite
	PermOthersExecute
)

// AttributeProvider answers reads and writes for one named attribute view.
// Views other than "basic" inherit basic's attributes in addition to their
// own, per Read/ReadAll below.
type AttributeProvider interface {
	Name() string
	Names() []string
	Read(inode *Inode, name string) (any, bool)
	// Set stores name := value, returning ErrUnsupported for a read-only or
	// unrecognized attribute name.
	Set(inode *Inode, name string, value any) error
}

type basicProvider struct{}

func (basicProvider) Name() string { return "basic" }
func (basicProvider) Names() []string {
	return []string{"size", "isDirectory", "isRegularFile", "isSymbolicLink", "fileKey", "creationTime", "lastAccessTime", "lastModifiedTime"}
}

func (basicProvider) Read(n *Inode, name string) (any, bool) {
	switch name {
	case "size":
		return n.Size(), true
	case "isDirectory":
		return n.IsDirectory(), true
	case "isRegularFile":
		return n.IsRegularFile(), true
	case "isSymbolicLink":
		return n.IsSymbolicLink(), true
	case "fileKey":
		return n.ID(), true
	case "creationTime":
		return n.CreatedAt(), true
	case "lastAccessTime":
		return n.AccessedAt(), true
	case "lastModifiedTime":
		return n.ModifiedAt(), true
	}
	return nil, false
}

func (basicProvider) Set(n *Inode, name string, value any) error {
	switch name {
	case "lastModifiedTime", "lastAccessTime", "creationTime":
		t, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("%w: %s requires a time.Time value", ErrInvalid, name)
		}
		switch name {
		case "creationTime":
			n.SetTimes(&t, nil, nil)
		case "lastAccessTime":
			n.SetTimes(nil, &t, nil)
		case "lastModifiedTime":
			n.SetTimes(nil, nil, &t)
		}
		return nil
	}
	return ErrUnsupported
}

type ownerProvider struct{}

func (ownerProvider) Name() string   { return "owner" }
func (ownerProvider) Names() []string { return []string{"owner"} }

func (ownerProvider) Read(n *Inode, name string) (any, bool) {
	if name != "owner" {
		return nil, false
	}
	v, ok := n.GetAttribute("owner", "owner")
	if !ok {
		return "", true
	}
	return v, true
}

func (ownerProvider) Set(n *Inode, name string, value any) error {
	if name != "owner" {
		return ErrUnsupported
	}
	n.SetAttribute("owner", "owner", value)
	return nil
}

type posixProvider struct{ ownerProvider }

func (posixProvider) Name() string { return "posix" }
func (posixProvider) Names() []string {
	return append([]string{"permissions", "group"}, ownerProvider{}.Names()...)
}

func (p posixProvider) Read(n *Inode, name string) (any, bool) {
	switch name {
	case "permissions":
		v, ok := n.GetAttribute("posix", "permissions")
		if !ok {
			return PosixPermission(0), true
		}
		return v, true
	case "group":
		v, ok := n.GetAttribute("posix", "group")
		if !ok {
			return "", true
		}
		return v, true
	}
	return p.ownerProvider.Read(n, name)
}

func (p posixProvider) Set(n *Inode, name string, value any) error {
	switch name {
	case "permissions":
		perm, ok := value.(PosixPermission)
		if !ok {
			return fmt.Errorf("%w: permissions requires a PosixPermission value", ErrInvalid)
		}
		n.SetAttribute("posix", "permissions", perm)
		return nil
	case "group":
		n.SetAttribute("posix", "group", value)
		return nil
	}
	return p.ownerProvider.Set(n, name, value)
}

type dosProvider struct{}

func (dosProvider) Name() string   { return "dos" }
func (dosProvider) Names() []string { return []string{"readonly", "hidden", "archive", "system"} }

func (dosProvider) Read(n *Inode, name string) (any, bool) {
	switch name {
	case "readonly", "hidden", "archive", "system":
		v, ok := n.GetAttribute("dos", name)
		if !ok {
			return false, true
		}
		return v, true
	}
	return nil, false
}

func (dosProvider) Set(n *Inode, name string, value any) error {
	switch name {
	case "readonly", "hidden", "archive", "system":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s requires a bool value", ErrInvalid, name)
		}
		n.SetAttribute("dos", name, b)
		return nil
	}
	return ErrUnsupported
}

// userProvider is the open "user" view: arbitrary string-valued attributes
// with no fixed name set and no defaults.
type userProvider struct{}

func (userProvider) Name() string    { return "user" }
func (userProvider) Names() []string { return nil }

func (userProvider) Read(n *Inode, name string) (any, bool) {
	return n.GetAttribute("user", name)
}

func (userProvider) Set(n *Inode, name string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: user attributes are string-valued", ErrInvalid)
	}
	n.SetAttribute("user", name, s)
	return nil
}

// AttributeService dispatches "view:name" attribute reads/writes (a bare
// name with no "view:" prefix is treated as "basic:name") to the providers
// configured for a file store.
type AttributeService struct {
	providers map[string]AttributeProvider
}

// NewAttributeService builds a service exposing the named views. "basic"
// is always included regardless of views.
func NewAttributeService(views []string) *AttributeService {
	s := &AttributeService{providers: map[string]AttributeProvider{
		"basic": basicProvider{},
	}}
	for _, v := range views {
		switch v {
		case "basic":
		case "owner":
			s.providers["owner"] = ownerProvider{}
		case "posix":
			s.providers["posix"] = posixProvider{}
		case "dos":
			s.providers["dos"] = dosProvider{}
		case "user":
			s.providers["user"] = userProvider{}
		}
	}
	return s
}

func splitAttributeSpec(spec string) (view, name string) {
	if i := strings.IndexByte(spec, ':'); i >= 0 {
		return spec[:i], spec[i+1:]
	}
	return "basic", spec
}

// Read returns a single attribute's value, e.g. Read(inode, "posix:group")
// or Read(inode, "size") (implicitly "basic:size").
func (s *AttributeService) Read(inode *Inode, spec string) (any, error) {
	view, name := splitAttributeSpec(spec)
	p, ok := s.providers[view]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported attribute view %q", ErrUnsupported, view)
	}
	v, ok := p.Read(inode, name)
	if !ok && view != "basic" {
		v, ok = basicProvider{}.Read(inode, name)
	}
	if !ok {
		return nil, fmt.Errorf("%w: unknown attribute %q", ErrInvalid, spec)
	}
	return v, nil
}

// parseAttributeListSpec parses the ReadAll grammar: a bare view name (e.g.
// "posix"), "view:*", or "view:a,b,c" — all three select every attribute of
// view except the last, which restricts the result to the named attributes.
// Mixing "*" with explicit names (e.g. "posix:*,group") is rejected.
func parseAttributeListSpec(spec string) (view string, names []string, err error) {
	i := strings.IndexByte(spec, ':')
	if i < 0 {
		return spec, nil, nil
	}
	view, rest := spec[:i], spec[i+1:]
	if rest == "" || rest == "*" {
		return view, nil, nil
	}
	for _, tok := range strings.Split(rest, ",") {
		if tok == "*" {
			return "", nil, fmt.Errorf("%w: cannot mix \"*\" with explicit attribute names in %q", ErrUnsupported, spec)
		}
	}
	return view, strings.Split(rest, ","), nil
}

// ReadAll returns the attributes named by spec (see parseAttributeListSpec),
// plus basic's own attributes when view isn't already "basic" (basic is
// implicitly inherited by every other view).
func (s *AttributeService) ReadAll(inode *Inode, spec string) (map[string]any, error) {
	view, names, err := parseAttributeListSpec(spec)
	if err != nil {
		return nil, err
	}
	p, ok := s.providers[view]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported attribute view %q", ErrUnsupported, view)
	}

	var wanted map[string]bool
	if names != nil {
		wanted = make(map[string]bool, len(names))
		for _, n := range names {
			wanted[n] = true
		}
	}
	include := func(n string) bool { return wanted == nil || wanted[n] }

	out := make(map[string]any)
	if view != "basic" {
		for _, n := range basicProvider{}.Names() {
			if !include(n) {
				continue
			}
			if v, ok := basicProvider{}.Read(inode, n); ok {
				out[n] = v
			}
		}
	}
	for _, n := range p.Names() {
		if !include(n) {
			continue
		}
		if v, ok := p.Read(inode, n); ok {
			out[n] = v
		}
	}
	return out, nil
}

// Set stores a single attribute's value.
func (s *AttributeService) Set(inode *Inode, spec string, value any) error {
	view, name := splitAttributeSpec(spec)
	p, ok := s.providers[view]
	if !ok {
		return fmt.Errorf("%w: unsupported attribute view %q", ErrUnsupported, view)
	}
	return p.Set(inode, name, value)
}

// SupportsView reports whether view is configured on this service.
func (s *AttributeService) SupportsView(view string) bool {
	_, ok := s.providers[view]
	return ok
}
