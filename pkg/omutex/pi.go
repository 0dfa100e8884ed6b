// Copyright 2026 The AudioLock Authors.
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

package omutex

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Configuration sources for the process-wide priority inheritance flag, in
// decreasing precedence. Both may be absent; the default is disabled.
const (
	// piEnvVar holds a boolean ("1", "true", ...) overriding the config file.
	piEnvVar = "AUDIOLOCK_PRIO_INHERIT"

	// configEnvVar names a TOML file with a priority_inheritance key.
	configEnvVar = "AUDIOLOCK_CONFIG"
)

type fileConfig struct {
	PriorityInheritance bool `toml:"priority_inheritance"`
}

// piOverride holds a programmatic override installed before the first mutex
// construction. Stores *bool.
var piOverride atomic.Value

// SetPriorityInheritance overrides the configured priority inheritance
// setting. It only takes effect if called before the first mutex is
// constructed; once the flag has been read it is fixed for the process
// lifetime.
func SetPriorityInheritance(enable bool) {
	piOverride.Store(&enable)
}

// PriorityInheritanceEnabled reports whether newly constructed mutexes use
// the priority inheritance protocol. The first call decides the value from
// the configuration sources and memoizes it; later calls are pure reads.
var PriorityInheritanceEnabled = sync.OnceValue(resolvePriorityInheritance)

func resolvePriorityInheritance() bool {
	enable := false
	if p := piOverride.Load(); p != nil {
		enable = *p.(*bool)
	} else {
		enable = configuredPI(os.Getenv(piEnvVar), os.Getenv(configEnvVar))
	}
	if !enable {
		return false
	}
	if err := piProbe(); err != nil {
		// Degrade rather than fail: a mutex without priority
		// inheritance is far better than no mutex at all.
		logrus.WithError(err).Warn("priority inheritance unavailable, falling back to default protocol")
		return false
	}
	return true
}

// configuredPI reads the external configuration sources. Both absent or
// broken means disabled; configuration problems must never break mutex
// construction.
func configuredPI(envVal, configPath string) bool {
	if envVal != "" {
		v, err := strconv.ParseBool(envVal)
		if err != nil {
			logrus.WithField("var", piEnvVar).Warn("unparseable priority inheritance setting, leaving disabled")
			return false
		}
		return v
	}
	if configPath != "" {
		var cfg fileConfig
		if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
			logrus.WithError(err).Warn("cannot read audiolock config, priority inheritance disabled")
			return false
		}
		return cfg.PriorityInheritance
	}
	return false
}
