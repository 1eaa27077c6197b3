// Copyright 2024 The Rustbelt Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the engine's layered configuration: a documented
// zero value, overridable by a config file and then by environment
// variables.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/tenxhq/rustbelt/internal/semdb"
)

// Config holds every setting the engine needs beyond the workspace root
// supplied on the command line.
type Config struct {
	// CacheDir is where derived caches may be written, relative to the
	// user's home directory.
	CacheDir string `mapstructure:"cache_dir"`
	// WatchInterval is how often the file watcher polls for changes.
	WatchInterval time.Duration `mapstructure:"watch_interval"`
	// LogLevel is the zerolog level name ("debug", "info", "warn", ...).
	LogLevel string `mapstructure:"log_level"`
	// Load holds the semantic-DB load-time toggles (§6).
	Load semdb.LoadConfig `mapstructure:"load"`
}

const (
	defaultCacheDir      = ".rustbelt/cache"
	defaultWatchInterval = 100 * time.Millisecond
	defaultLogLevel      = "info"

	envPrefix = "RUSTBELT"
)

// Default returns the documented zero value for Config.
func Default() Config {
	return Config{
		CacheDir:      defaultCacheDir,
		WatchInterval: defaultWatchInterval,
		LogLevel:      defaultLogLevel,
		Load:          semdb.DefaultLoadConfig(),
	}
}

// Load reads configuration from an optional file at path (if non-empty and
// present), then layers environment variables prefixed RUSTBELT_ on top,
// following viper's standard file-then-env precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("cache_dir", cfg.CacheDir)
	v.SetDefault("watch_interval", cfg.WatchInterval)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("load.load_all_targets", cfg.Load.LoadAllTargets)
	v.SetDefault("load.sysroot_discovery", cfg.Load.SysrootDiscovery)
	v.SetDefault("load.out_dirs_from_check", cfg.Load.OutDirsFromCheck)
	v.SetDefault("load.proc_macro_server", cfg.Load.ProcMacroServer)
	v.SetDefault("load.prefill_caches", cfg.Load.PrefillCaches)

	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, errors.Wrap(err, "reading config file")
			}
		} else if !os.IsNotExist(statErr) {
			return Config{}, errors.Wrap(statErr, "checking config file")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshaling config")
	}
	return cfg, nil
}
