package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useConfig(t *testing.T, yaml string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	viper.SetConfigFile(path)
	viper.SetEnvPrefix("SHORTPLAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func TestLoad_Defaults(t *testing.T) {
	useConfig(t, "server:\n  username: admin\n")

	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "hongguo", cfg.Scraper.GeneralSite)
	assert.Equal(t, 15, cfg.Scraper.TimeoutSeconds)
	assert.Equal(t, 30, cfg.Scraper.WatchDebounceSeconds)
	assert.Equal(t, "data/shortplay-scraper.db", cfg.Database.Path)
	assert.False(t, cfg.Scraper.PT.Configured())
}

func TestLoad_ScraperSection(t *testing.T) {
	useConfig(t, `
scraper:
  enabled: true
  interval_hours: 6
  monitor_dirs: |
    /media/shows
    /media/more
  exclude_keywords: "预告,花絮"
  general_site: mori
  sites: [mteam, hdsky]
  pt:
    api_url: https://pt.example/api
    api_key: k
`)

	cfg, err := load()
	require.NoError(t, err)
	assert.True(t, cfg.Scraper.Enabled)
	assert.Equal(t, 6, cfg.Scraper.IntervalHours)
	assert.Equal(t, "/media/shows\n/media/more\n", cfg.Scraper.MonitorDirs)
	assert.Equal(t, []string{"mteam", "hdsky"}, cfg.Scraper.Sites)
	assert.True(t, cfg.Scraper.PT.Configured())
}

func TestLoad_EnvOverride(t *testing.T) {
	useConfig(t, "scraper:\n  monitor_dirs: /a\n")
	t.Setenv("SHORTPLAY_SCRAPER_MONITOR_DIRS", "/from/env")

	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Scraper.MonitorDirs)
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]string{
		"负数间隔":      "scraper:\n  interval_hours: -1\n",
		"超时为零":      "scraper:\n  timeout_seconds: 0\n",
		"PT 缺少密钥": "scraper:\n  pt:\n    api_url: https://pt.example\n",
	}
	for name, yaml := range cases {
		t.Run(name, func(t *testing.T) {
			useConfig(t, yaml)
			_, err := load()
			assert.Error(t, err)
		})
	}
}
