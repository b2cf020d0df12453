package database

import (
	"path/filepath"
	"testing"

	"shortplay-scraper/app/config"
	"shortplay-scraper/app/logger"
	"shortplay-scraper/app/model"
	"shortplay-scraper/app/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: "5000", Username: "admin", Password: "secret"},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "data", "test.db")},
	}
}

func TestInit_SeedsAdmin(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, Init(cfg, logger.NewNop()))
	t.Cleanup(func() { _ = Close() })

	var u model.User
	require.NoError(t, DB.Where("username = ?", "admin").First(&u).Error)
	assert.True(t, u.IsAdmin)
	assert.True(t, utils.VerifyPassword("secret", u.Password))
}

func TestInitAdminUser_UpdatesCredentials(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, Init(cfg, logger.NewNop()))
	t.Cleanup(func() { _ = Close() })

	cfg.Server.Username = "root"
	cfg.Server.Password = "changed"
	require.NoError(t, InitAdminUser(cfg, logger.NewNop()))

	var users []model.User
	require.NoError(t, DB.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "root", users[0].Username)
	assert.True(t, utils.VerifyPassword("changed", users[0].Password))
}

func TestInitAdminUser_RequiresCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Password = ""
	assert.Error(t, Init(cfg, logger.NewNop()))
	_ = Close()
}

func TestOpen_Migrates(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)

	for _, table := range []string{"users", "sites", "scrape_records"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
