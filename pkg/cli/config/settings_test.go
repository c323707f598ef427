package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/libris/pkg/cli/config"
	"github.com/secmon-lab/libris/pkg/domain/model"
)

func writeSettingsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestSettingsConfigure(t *testing.T) {
	t.Run("no file returns defaults", func(t *testing.T) {
		settings, err := config.NewSettingsForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, settings).Equal(model.DefaultSettings())
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeSettingsFile(t, `
match_threshold = 0.8
match_count = 10
pairing_code_ttl = "30m"
`)

		settings, err := config.NewSettingsForTest(path).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, settings.MatchThreshold).Equal(0.8)
		gt.Value(t, settings.MatchCount).Equal(10)
		gt.Value(t, settings.PairingCodeTTL).Equal(30 * time.Minute)

		// Untouched fields keep their defaults
		gt.Value(t, settings.MatchCountMax).Equal(model.DefaultSettings().MatchCountMax)
		gt.Value(t, settings.EmbeddingDimension).Equal(model.EmbeddingDimension)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := config.NewSettingsForTest("/no/such/file.toml").Configure()
		gt.Error(t, err)
	})

	t.Run("invalid TTL fails", func(t *testing.T) {
		path := writeSettingsFile(t, `pairing_code_ttl = "soon"`)

		_, err := config.NewSettingsForTest(path).Configure()
		gt.Error(t, err)
	})

	t.Run("out of range threshold fails validation", func(t *testing.T) {
		path := writeSettingsFile(t, `match_threshold = 3.5`)

		_, err := config.NewSettingsForTest(path).Configure()
		gt.Error(t, err)
	})

	t.Run("count above max fails validation", func(t *testing.T) {
		path := writeSettingsFile(t, `
match_count = 50
match_count_max = 25
`)

		_, err := config.NewSettingsForTest(path).Configure()
		gt.Error(t, err)
	})
}
