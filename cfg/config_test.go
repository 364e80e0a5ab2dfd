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

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// yamlTagName makes viper's mapstructure decode match Config's yaml tags.
func yamlTagName(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }

func TestBindFlagsRegistersEveryDefault(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse(nil))

	var c Config
	require.NoError(t, viper.Unmarshal(&c, viper.DecodeHook(DecodeHook()), yamlTagName))

	assert.Equal(t, GetDefaultConfig(), c)
}

func TestBindFlagsHonorsOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse([]string{
		"--roots=C:\\,D:\\",
		"--separator=\\",
		"--case-sensitivity=insensitive-ascii",
		"--normalization=nfc",
		"--block-size=1Mi",
		"--max-blocks=4096",
		"--max-cached-blocks=0",
		"--attribute-views=posix,dos",
		"--working-directory=C:\\",
		"--default-file-mode=755",
		"--log-severity=debug",
		"--log-format=json",
		"--log-file=/var/log/heapfs.log",
		"--debug-invariants",
	}))

	var c Config
	require.NoError(t, viper.Unmarshal(&c, viper.DecodeHook(DecodeHook()), yamlTagName))

	assert.Equal(t, []string{"C:\\", "D:\\"}, c.FileSystem.Roots)
	assert.Equal(t, "\\", c.FileSystem.Separator)
	assert.Equal(t, CaseInsensitiveASCII, c.FileSystem.CaseSensitivity)
	assert.Equal(t, NormalizationNFC, c.FileSystem.Normalization)
	assert.Equal(t, ByteSize(1024*1024), c.FileSystem.BlockSize)
	assert.Equal(t, 4096, c.FileSystem.MaxBlocks)
	assert.Equal(t, 0, c.FileSystem.MaxCachedBlocks)
	assert.ElementsMatch(t, []string{"posix", "dos"}, c.FileSystem.AttributeViews)
	assert.Equal(t, "C:\\", c.FileSystem.WorkingDirectory)
	assert.Equal(t, Octal(0755), c.FileSystem.DefaultFileMode)
	assert.Equal(t, LogSeverity("DEBUG"), c.Logging.Severity)
	assert.Equal(t, "json", c.Logging.Format)
	assert.Equal(t, "/var/log/heapfs.log", c.Logging.FilePath)
	assert.True(t, c.Debug.ExitOnInvariantViolation)
}

func TestGetDefaultConfigIsValid(t *testing.T) {
	c := GetDefaultConfig()
	assert.NoError(t, ValidateConfig(&c))
}
