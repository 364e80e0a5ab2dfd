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
	"strconv"
	"strings"
)

// Octal is the datatype for params such as permission defaults that accept
// a base-8 value on the command line or in config.
type Octal int

func (o *Octal) UnmarshalText(text []byte) error {
	v, err := strconv.ParseInt(string(text) /*base=*/, 8 /*bitSize=*/, 32)
	if err != nil {
		return err
	}
	*o = Octal(v)
	return nil
}

func (o Octal) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(o), 8)), nil
}

// ByteSize parses sizes like "64Ki", "8Mi", "1Gi" or a bare byte count,
// using binary (1024-based) suffixes for the block-size and cache-size
// configuration values.
type ByteSize int64

var byteSizeSuffixes = []struct {
	suffix string
	factor int64
}{
	{"Gi", 1 << 30},
	{"Mi", 1 << 20},
	{"Ki", 1 << 10},
}

func (b *ByteSize) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	for _, suf := range byteSizeSuffixes {
		if strings.HasSuffix(s, suf.suffix) {
			n, err := strconv.ParseInt(strings.TrimSuffix(s, suf.suffix), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid byte size %q: %w", s, err)
			}
			*b = ByteSize(n * suf.factor)
			return nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	*b = ByteSize(n)
	return nil
}

func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(b), 10)), nil
}

func (b ByteSize) String() string { return strconv.FormatInt(int64(b), 10) }

// LogSeverity is the logging verbosity, mirroring the teacher's severity
// ranking: TRACE, DEBUG, INFO, WARNING, ERROR, OFF.
type LogSeverity string

const (
	TraceLogSeverity   LogSeverity = "TRACE"
	DebugLogSeverity   LogSeverity = "DEBUG"
	InfoLogSeverity    LogSeverity = "INFO"
	WarningLogSeverity LogSeverity = "WARNING"
	ErrorLogSeverity   LogSeverity = "ERROR"
	OffLogSeverity     LogSeverity = "OFF"
)

var severityRank = map[LogSeverity]int{
	TraceLogSeverity:   0,
	DebugLogSeverity:   1,
	InfoLogSeverity:    2,
	WarningLogSeverity: 3,
	ErrorLogSeverity:   4,
	OffLogSeverity:     5,
}

func (l *LogSeverity) UnmarshalText(text []byte) error {
	v := LogSeverity(strings.ToUpper(string(text)))
	if _, ok := severityRank[v]; !ok {
		return fmt.Errorf("invalid log severity %q: must be one of TRACE, DEBUG, INFO, WARNING, ERROR, OFF", text)
	}
	*l = v
	return nil
}

// Rank returns the integer representation of the severity rank, or -1 for
// an unrecognized value (which should never reach here, since config is
// validated before a FileSystem is built from it).
func (l LogSeverity) Rank() int {
	if r, ok := severityRank[l]; ok {
		return r
	}
	return -1
}
