package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/libris/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Settings holds the CLI flag for the optional TOML tunables file
type Settings struct {
	path string
}

// settingsFile is the TOML shape of the tunables file. Zero values fall back
// to the built-in defaults.
type settingsFile struct {
	EmbeddingDimension  int     `toml:"embedding_dimension"`
	MatchThreshold      float64 `toml:"match_threshold"`
	MatchCount          int     `toml:"match_count"`
	MatchCountMax       int     `toml:"match_count_max"`
	PairingCodeTTL      string  `toml:"pairing_code_ttl"`
	PairingPendingLimit int     `toml:"pairing_pending_limit"`
}

// Flags returns CLI flags for the tunables file
func (x *Settings) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to TOML tunables file (thresholds, limits, pairing TTL)",
			Aliases:     []string{"c"},
			Sources:     cli.EnvVars("LIBRIS_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Configure loads the tunables, merging the TOML file over the defaults
func (x *Settings) Configure() (model.Settings, error) {
	settings := model.DefaultSettings()

	if x.path != "" {
		// #nosec G304 - path is provided by CLI argument
		data, err := os.ReadFile(x.path)
		if err != nil {
			return settings, goerr.Wrap(err, "failed to read config file", goerr.V("path", x.path))
		}

		var file settingsFile
		if err := toml.Unmarshal(data, &file); err != nil {
			return settings, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", x.path))
		}

		if file.EmbeddingDimension != 0 {
			settings.EmbeddingDimension = file.EmbeddingDimension
		}
		if file.MatchThreshold != 0 {
			settings.MatchThreshold = file.MatchThreshold
		}
		if file.MatchCount != 0 {
			settings.MatchCount = file.MatchCount
		}
		if file.MatchCountMax != 0 {
			settings.MatchCountMax = file.MatchCountMax
		}
		if file.PairingCodeTTL != "" {
			ttl, err := time.ParseDuration(file.PairingCodeTTL)
			if err != nil {
				return settings, goerr.Wrap(err, "invalid pairing_code_ttl", goerr.V("value", file.PairingCodeTTL))
			}
			settings.PairingCodeTTL = ttl
		}
		if file.PairingPendingLimit != 0 {
			settings.PairingPendingLimit = file.PairingPendingLimit
		}
	}

	if err := settings.Validate(); err != nil {
		return settings, goerr.Wrap(err, "config validation failed", goerr.V("path", x.path))
	}

	return settings, nil
}
