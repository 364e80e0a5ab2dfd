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

import "errors"

// Sentinel errors for the error kinds in the file-store contract. Callers
// should match them with errors.Is; call sites wrap them with positional
// context via fmt.Errorf("%s: %w", path, ErrNotFound).
var (
	ErrNotFound         = errors.New("no such file or directory")
	ErrAlreadyExists    = errors.New("file already exists")
	ErrNotDirectory     = errors.New("not a directory")
	ErrNotRegularFile   = errors.New("not a regular file")
	ErrNotSymbolicLink  = errors.New("not a symbolic link")
	ErrDirectoryNotEmpty = errors.New("directory not empty")
	ErrTooManyLinks     = errors.New("too many levels of symbolic links")
	ErrInvalid          = errors.New("invalid argument")
	ErrOutOfSpace       = errors.New("no space left on device")
	ErrUnsupported      = errors.New("operation not supported")
	ErrChannelClosed    = errors.New("channel closed")
	ErrClosedByInterrupt = errors.New("channel closed by interrupt")
	ErrNonReadable      = errors.New("channel is not open for reading")
	ErrNonWritable      = errors.New("channel is not open for writing")
	ErrProviderMismatch = errors.New("path belongs to a different file system instance")
)

// ErrorCategory buckets an error into the low-cardinality label the
// telemetry package attaches to the fs_error_category metric, mirroring the
// teacher's common.FSErrCategoryKey grouping.
func ErrorCategory(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "exists"
	case errors.Is(err, ErrNotDirectory):
		return "not_directory"
	case errors.Is(err, ErrNotRegularFile):
		return "not_regular_file"
	case errors.Is(err, ErrNotSymbolicLink):
		return "not_symlink"
	case errors.Is(err, ErrDirectoryNotEmpty):
		return "directory_not_empty"
	case errors.Is(err, ErrTooManyLinks):
		return "too_many_links"
	case errors.Is(err, ErrInvalid):
		return "invalid"
	case errors.Is(err, ErrOutOfSpace):
		return "out_of_space"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	case errors.Is(err, ErrChannelClosed), errors.Is(err, ErrClosedByInterrupt):
		return "channel_closed"
	case errors.Is(err, ErrNonReadable), errors.Is(err, ErrNonWritable):
		return "non_permitted_io"
	case errors.Is(err, ErrProviderMismatch):
		return "provider_mismatch"
	default:
		return "other"
	}
}
