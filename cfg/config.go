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

// Package cfg declares heapfs's configuration surface and how it is bound
// to command-line flags, following the teacher's cfg package: a plain
// struct tagged for YAML, a BindFlags that registers each field as a pflag
// and binds it into viper under the same key, and a DecodeHook so viper's
// mapstructure decode step understands the package's custom types.
package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full configuration for one FileSystem instance.
type Config struct {
	FileSystem FileSystemConfig `yaml:"file-system"`
	Logging    LoggingConfig    `yaml:"logging"`
	Debug      DebugConfig      `yaml:"debug"`
}

// FileSystemConfig controls the path, storage and attribute semantics of
// the engine itself.
type FileSystemConfig struct {
	// Roots lists the recognized root strings, e.g. ["/"] or ["C:\\","D:\\"].
	Roots []string `yaml:"roots"`
	// Separator is the path component separator.
	Separator string `yaml:"separator"`
	// CaseSensitivity is one of "sensitive", "insensitive-ascii", "insensitive-unicode".
	CaseSensitivity string `yaml:"case-sensitivity"`
	// Normalization is one of "none", "nfc", "nfd".
	Normalization string `yaml:"normalization"`
	// BlockSize is the fixed size of each block the disk allocates.
	BlockSize ByteSize `yaml:"block-size"`
	// MaxBlocks caps the total number of blocks the disk will allocate.
	MaxBlocks int `yaml:"max-blocks"`
	// MaxCachedBlocks caps the number of freed blocks kept for reuse.
	MaxCachedBlocks int `yaml:"max-cached-blocks"`
	// AttributeViews lists the attribute views exposed beyond "basic",
	// which is always available.
	AttributeViews []string `yaml:"attribute-views"`
	// WorkingDirectory is the initial working directory new views start from.
	WorkingDirectory string `yaml:"working-directory"`
	// DefaultFileMode is the permissions bits newly created files report
	// under the posix attribute view.
	DefaultFileMode Octal `yaml:"default-file-mode"`
}

// LoggingConfig controls the structured/rotating debug log of structural
// mutations.
type LoggingConfig struct {
	Severity LogSeverity `yaml:"severity"`
	// Format is one of "text" or "json".
	Format    string                 `yaml:"format"`
	FilePath  string                 `yaml:"file-path"`
	LogRotate LogRotateLoggingConfig `yaml:"log-rotate"`
}

// LogRotateLoggingConfig mirrors lumberjack.Logger's own knobs.
type LogRotateLoggingConfig struct {
	MaxFileSizeMB  int  `yaml:"max-file-size-mb"`
	BackupFileCount int `yaml:"backup-file-count"`
	Compress       bool `yaml:"compress"`
}

// DebugConfig enables extra runtime checking useful while developing
// against the engine.
type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`
}

// BindFlags registers every Config field as a flag on flagSet and binds it
// into viper under the matching dotted key.
func BindFlags(flagSet *pflag.FlagSet) error {
	var err error

	flagSet.StringSliceP("roots", "", []string{"/"}, "Recognized path roots.")
	if err = viper.BindPFlag("file-system.roots", flagSet.Lookup("roots")); err != nil {
		return err
	}

	flagSet.StringP("separator", "", "/", "Path component separator.")
	if err = viper.BindPFlag("file-system.separator", flagSet.Lookup("separator")); err != nil {
		return err
	}

	flagSet.StringP("case-sensitivity", "", "sensitive", "One of sensitive, insensitive-ascii, insensitive-unicode.")
	if err = viper.BindPFlag("file-system.case-sensitivity", flagSet.Lookup("case-sensitivity")); err != nil {
		return err
	}

	flagSet.StringP("normalization", "", "none", "One of none, nfc, nfd.")
	if err = viper.BindPFlag("file-system.normalization", flagSet.Lookup("normalization")); err != nil {
		return err
	}

	flagSet.StringP("block-size", "", "8Ki", "Size of each allocation block, e.g. 8Ki, 1Mi.")
	if err = viper.BindPFlag("file-system.block-size", flagSet.Lookup("block-size")); err != nil {
		return err
	}

	flagSet.IntP("max-blocks", "", 16384, "Maximum number of blocks the disk will allocate.")
	if err = viper.BindPFlag("file-system.max-blocks", flagSet.Lookup("max-blocks")); err != nil {
		return err
	}

	flagSet.IntP("max-cached-blocks", "", 64, "Number of freed blocks kept for reuse.")
	if err = viper.BindPFlag("file-system.max-cached-blocks", flagSet.Lookup("max-cached-blocks")); err != nil {
		return err
	}

	flagSet.StringSliceP("attribute-views", "", []string{"basic", "posix"}, "Attribute views to expose beyond basic.")
	if err = viper.BindPFlag("file-system.attribute-views", flagSet.Lookup("attribute-views")); err != nil {
		return err
	}

	flagSet.StringP("working-directory", "", "/", "Initial working directory for new views.")
	if err = viper.BindPFlag("file-system.working-directory", flagSet.Lookup("working-directory")); err != nil {
		return err
	}

	flagSet.StringP("default-file-mode", "", "644", "Permissions bits reported for new files, in octal.")
	if err = viper.BindPFlag("file-system.default-file-mode", flagSet.Lookup("default-file-mode")); err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", "INFO", "One of TRACE, DEBUG, INFO, WARNING, ERROR, OFF.")
	if err = viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.StringP("log-format", "", "text", "One of text, json.")
	if err = viper.BindPFlag("logging.format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.StringP("log-file", "", "", "Path to a rotating debug log file; empty disables file logging.")
	if err = viper.BindPFlag("logging.file-path", flagSet.Lookup("log-file")); err != nil {
		return err
	}

	flagSet.IntP("log-rotate-max-file-size-mb", "", 512, "Size in MB at which the log file is rotated.")
	if err = viper.BindPFlag("logging.log-rotate.max-file-size-mb", flagSet.Lookup("log-rotate-max-file-size-mb")); err != nil {
		return err
	}

	flagSet.IntP("log-rotate-backup-file-count", "", 10, "Number of rotated log files to retain; 0 retains all.")
	if err = viper.BindPFlag("logging.log-rotate.backup-file-count", flagSet.Lookup("log-rotate-backup-file-count")); err != nil {
		return err
	}

	flagSet.BoolP("log-rotate-compress", "", true, "Compress rotated log files.")
	if err = viper.BindPFlag("logging.log-rotate.compress", flagSet.Lookup("log-rotate-compress")); err != nil {
		return err
	}

	flagSet.BoolP("debug-invariants", "", false, "Panic when an internal invariant is violated, instead of continuing.")
	if err = viper.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug-invariants")); err != nil {
		return err
	}

	return nil
}
