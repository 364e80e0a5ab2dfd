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

import (
	"fmt"
	"slices"
)

func isValidLoggingConfig(config *LoggingConfig) error {
	if config.Format != "text" && config.Format != "json" {
		return fmt.Errorf("log-format must be one of text, json, got %q", config.Format)
	}
	return isValidLogRotateConfig(&config.LogRotate)
}

func isValidLogRotateConfig(config *LogRotateLoggingConfig) error {
	if config.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max-file-size-mb should be at least 1")
	}
	if config.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (to retain all backup files) or a positive value")
	}
	return nil
}

func isValidFileSystemConfig(c *FileSystemConfig) error {
	if len(c.Roots) == 0 {
		return fmt.Errorf("at least one root is required")
	}
	if len(c.Separator) != 1 {
		return fmt.Errorf("separator must be exactly one character, got %q", c.Separator)
	}
	validCase := []string{CaseSensitive, CaseInsensitiveASCII, CaseInsensitiveUnicode}
	if !slices.Contains(validCase, c.CaseSensitivity) {
		return fmt.Errorf("case-sensitivity must be one of %v, got %q", validCase, c.CaseSensitivity)
	}
	validNorm := []string{NormalizationNone, NormalizationNFC, NormalizationNFD}
	if !slices.Contains(validNorm, c.Normalization) {
		return fmt.Errorf("normalization must be one of %v, got %q", validNorm, c.Normalization)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("block-size must be positive")
	}
	if c.MaxBlocks < 1 {
		return fmt.Errorf("max-blocks must be at least 1")
	}
	if c.MaxCachedBlocks < 0 {
		return fmt.Errorf("max-cached-blocks cannot be negative")
	}
	for _, v := range c.AttributeViews {
		if v == "basic" {
			continue
		}
		if !slices.Contains(SupportedAttributeViews, v) {
			return fmt.Errorf("unsupported attribute view %q", v)
		}
	}
	return nil
}

// ValidateConfig returns a non-nil error if the config is invalid.
func ValidateConfig(config *Config) error {
	if err := isValidLoggingConfig(&config.Logging); err != nil {
		return fmt.Errorf("error parsing logging config: %w", err)
	}
	if err := isValidFileSystemConfig(&config.FileSystem); err != nil {
		return fmt.Errorf("error parsing file-system config: %w", err)
	}
	return nil
}
