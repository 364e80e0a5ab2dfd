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

package cfg

// GetDefaultLoggingConfig returns the logging defaults used before any
// configuration file or flags have been parsed.
func GetDefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Severity: InfoLogSeverity,
		Format:   "text",
		LogRotate: LogRotateLoggingConfig{
			BackupFileCount: 10,
			Compress:        true,
			MaxFileSizeMB:   512,
		},
	}
}

// GetDefaultConfig returns the full configuration defaults, matching
// BindFlags's flag defaults (BindFlags exists for the CLI path; this
// exists for programmatic construction of a FileSystem without Cobra).
func GetDefaultConfig() Config {
	return Config{
		FileSystem: FileSystemConfig{
			Roots:            []string{"/"},
			Separator:        "/",
			CaseSensitivity:  CaseSensitive,
			Normalization:    NormalizationNone,
			BlockSize:        8 * 1024,
			MaxBlocks:        16384,
			MaxCachedBlocks:  64,
			AttributeViews:   []string{"basic", "posix"},
			WorkingDirectory: "/",
			DefaultFileMode:  0644,
		},
		Logging: GetDefaultLoggingConfig(),
	}
}
