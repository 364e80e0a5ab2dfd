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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/heapfs-project/heapfs"
	"github.com/heapfs-project/heapfs/cfg"
	"github.com/heapfs-project/heapfs/internal/logger"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	unmarshalErr  error
	fsConfig      cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "heapfs",
	Short: "Drive an in-memory, POSIX-flavored file system",
	Long: `heapfs hosts one in-memory FileSystem and lets you inspect or
mutate it either through one-shot subcommands (mkfs, stat, ls, cp, mv)
or an interactive shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}
		if err := cfg.ValidateConfig(&fsConfig); err != nil {
			return err
		}
		closer, err := logger.Init(fsConfig.Logging)
		if err != nil {
			return err
		}
		cobra.OnFinalize(func() { closer.Close() })
		return nil
	},
}

// Execute runs the root command, printing any error to stderr and exiting
// non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file.")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(mkfsCmd, shellCmd, statCmd, lsCmd, cpCmd, mvCmd)
}

func initConfig() {
	if cfgFile == "" {
		unmarshalErr = viper.Unmarshal(&fsConfig, viper.DecodeHook(cfg.DecodeHook()), yamlTagName)
		return
	}
	resolved, err := filepath.Abs(cfgFile)
	if err != nil {
		configFileErr = fmt.Errorf("resolving config file path: %w", err)
		return
	}
	viper.SetConfigFile(resolved)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("reading config file: %w", err)
		return
	}
	unmarshalErr = viper.Unmarshal(&fsConfig, viper.DecodeHook(cfg.DecodeHook()), yamlTagName)
}

// yamlTagName makes viper's mapstructure decode match cfg.Config's yaml tags.
func yamlTagName(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }

// newFileSystem builds a FileSystem from the bound configuration, for every
// subcommand that touches the engine.
func newFileSystem() (*heapfs.FileSystem, error) {
	return heapfs.New(fsConfig)
}
