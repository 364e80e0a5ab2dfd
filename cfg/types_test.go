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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOctalUnmarshalAndMarshal(t *testing.T) {
	var o Octal
	require.NoError(t, o.UnmarshalText([]byte("644")))
	assert.Equal(t, Octal(0644), o)

	text, err := o.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "644", string(text))
}

func TestOctalUnmarshalInvalid(t *testing.T) {
	var o Octal
	assert.Error(t, o.UnmarshalText([]byte("not-octal")))
}

func TestByteSizeUnmarshalSuffixes(t *testing.T) {
	cases := []struct {
		in   string
		want ByteSize
	}{
		{"8Ki", 8 * 1024},
		{"4Mi", 4 * 1024 * 1024},
		{"2Gi", 2 * 1024 * 1024 * 1024},
		{"512", 512},
	}
	for _, tc := range cases {
		var b ByteSize
		require.NoError(t, b.UnmarshalText([]byte(tc.in)), tc.in)
		assert.Equal(t, tc.want, b, tc.in)
	}
}

func TestByteSizeUnmarshalInvalid(t *testing.T) {
	var b ByteSize
	assert.Error(t, b.UnmarshalText([]byte("lots")))
}

func TestByteSizeMarshalAndString(t *testing.T) {
	b := ByteSize(8192)
	text, err := b.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "8192", string(text))
	assert.Equal(t, "8192", b.String())
}

func TestLogSeverityUnmarshalCaseFolds(t *testing.T) {
	var l LogSeverity
	require.NoError(t, l.UnmarshalText([]byte("warning")))
	assert.Equal(t, WarningLogSeverity, l)
}

func TestLogSeverityUnmarshalInvalid(t *testing.T) {
	var l LogSeverity
	assert.Error(t, l.UnmarshalText([]byte("VERBOSE")))
}

func TestLogSeverityRank(t *testing.T) {
	assert.Less(t, TraceLogSeverity.Rank(), DebugLogSeverity.Rank())
	assert.Less(t, DebugLogSeverity.Rank(), InfoLogSeverity.Rank())
	assert.Less(t, InfoLogSeverity.Rank(), WarningLogSeverity.Rank())
	assert.Less(t, WarningLogSeverity.Rank(), ErrorLogSeverity.Rank())
	assert.Less(t, ErrorLogSeverity.Rank(), OffLogSeverity.Rank())
	assert.Equal(t, -1, LogSeverity("bogus").Rank())
}
