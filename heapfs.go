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

// Package heapfs is an embeddable, in-memory, POSIX-flavored hierarchical
// file system. A FileSystem owns one FileStore and exposes the pieces a
// host program wires together itself: a FileSystemView for path
// resolution and mutation, an AttributeService for metadata views, a
// PathService for parsing/formatting paths in the host's own syntax, and
// a telemetry Handle recording operation counts and latencies.
package heapfs

import (
	"context"

	"github.com/heapfs-project/heapfs/cfg"
	"github.com/heapfs-project/heapfs/clock"
	"github.com/heapfs-project/heapfs/internal/store"
	"github.com/heapfs-project/heapfs/internal/telemetry"
)

// FileSystem bundles one FileStore with the collaborators SPEC_FULL's
// external-interfaces section names: a path service for the configured
// separator/roots/normalization, an attribute service for the configured
// views, and a telemetry handle that operations run through Observe
// report to.
type FileSystem struct {
	store     *store.FileStore
	paths     *store.PathService
	attrs     *store.AttributeService
	telemetry telemetry.Handle
}

// New builds a FileSystem from c, using RealClock as the time source.
func New(c cfg.Config) (*FileSystem, error) {
	return NewWithClock(c, clock.RealClock{})
}

// NewWithClock builds a FileSystem whose inode timestamps are driven by
// clk, letting tests substitute clock.FakeClock or clock.SimulatedClock.
func NewWithClock(c cfg.Config, clk clock.Clock) (*FileSystem, error) {
	if err := cfg.ValidateConfig(&c); err != nil {
		return nil, err
	}

	disk, err := store.NewHeapDisk(int(c.FileSystem.BlockSize), c.FileSystem.MaxBlocks, c.FileSystem.MaxCachedBlocks)
	if err != nil {
		return nil, err
	}

	caseMode, normMode := caseAndNormFromConfig(c.FileSystem)
	paths, err := store.NewPathService(c.FileSystem.Separator, c.FileSystem.Roots, caseMode, normMode)
	if err != nil {
		return nil, err
	}

	return &FileSystem{
		store:     store.NewFileStore(disk, clk),
		paths:     paths,
		attrs:     store.NewAttributeService(c.FileSystem.AttributeViews),
		telemetry: telemetry.NewNoop(),
	}, nil
}

func caseAndNormFromConfig(fc cfg.FileSystemConfig) (store.CaseSensitivity, store.Normalization) {
	caseMode := store.CaseSensitive
	switch fc.CaseSensitivity {
	case cfg.CaseInsensitiveASCII:
		caseMode = store.CaseInsensitiveASCII
	case cfg.CaseInsensitiveUnicode:
		caseMode = store.CaseInsensitiveUnicode
	}
	normMode := store.NormalizationNone
	switch fc.Normalization {
	case cfg.NormalizationNFC:
		normMode = store.NormalizationNFC
	case cfg.NormalizationNFD:
		normMode = store.NormalizationNFD
	}
	return caseMode, normMode
}

// WithTelemetry replaces the default no-op telemetry handle, e.g. with
// one built by internal/telemetry.NewOTel.
func (fsys *FileSystem) WithTelemetry(h telemetry.Handle) { fsys.telemetry = h }

// Telemetry returns the handle every operation started via Observe
// reports through.
func (fsys *FileSystem) Telemetry() telemetry.Handle { return fsys.telemetry }

// Paths returns the path service parsing/formatting paths for this file
// system's configured separator, roots, case-sensitivity and
// normalization.
func (fsys *FileSystem) Paths() *store.PathService { return fsys.paths }

// Attributes returns the attribute service for this file system's
// configured views.
func (fsys *FileSystem) Attributes() *store.AttributeService { return fsys.attrs }

// Store returns the backing FileStore, for callers that need its
// instance id or disk accounting directly.
func (fsys *FileSystem) Store() *store.FileStore { return fsys.store }

// NewView returns a FileSystemView rooted at the store's root directory.
func (fsys *FileSystem) NewView() *store.FileSystemView {
	return store.NewFileSystemView(fsys.store)
}

// Observe times fn as the named operation, recording its count, latency
// and (if it returns a non-nil error) error category through the file
// system's telemetry handle.
func (fsys *FileSystem) Observe(ctx context.Context, op string, fn func() error) error {
	return telemetry.Observe(ctx, fsys.telemetry, op, store.ErrorCategory, fn)
}

// ParsePath parses str using this file system's PathService.
func (fsys *FileSystem) ParsePath(str string) store.Path { return fsys.paths.Parse(str) }

// FormatPath renders p using this file system's PathService.
func (fsys *FileSystem) FormatPath(p store.Path) string { return fsys.paths.Format(p) }
