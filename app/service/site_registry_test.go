package service

import (
	"errors"
	"path/filepath"
	"testing"

	"shortplay-scraper/app/config"
	"shortplay-scraper/app/database"
	"shortplay-scraper/app/logger"
	"shortplay-scraper/app/model"
	"shortplay-scraper/app/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestRegistry(t *testing.T) *SiteRegistry {
	return NewSiteRegistry(openTestDB(t), logger.NewNop())
}

func addSite(t *testing.T, reg *SiteRegistry, key, name string, enabled bool) *model.Site {
	t.Helper()
	s := &model.Site{Key: key, Name: name, BaseURL: "https://" + key + ".example/", Cookie: "uid=1", Enabled: enabled}
	require.NoError(t, reg.Create(s))
	return s
}

func TestSiteRegistry_Get(t *testing.T) {
	reg := newTestRegistry(t)
	addSite(t, reg, "mteam", "馒头", true)
	addSite(t, reg, "off", "停用", false)

	desc, ok := reg.Get("mteam")
	require.True(t, ok)
	assert.Equal(t, "馒头", desc.Name)
	assert.Equal(t, "https://mteam.example", desc.BaseURL)
	assert.Equal(t, "uid=1", desc.Cookie)

	_, ok = reg.Get("off")
	assert.False(t, ok)
	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestSiteRegistry_CreateValidation(t *testing.T) {
	reg := newTestRegistry(t)
	addSite(t, reg, "mteam", "馒头", true)

	err := reg.Create(&model.Site{Key: "MTeam ", BaseURL: "https://x.example", Enabled: true})
	assert.ErrorIs(t, err, ErrSiteExists)

	assert.Error(t, reg.Create(&model.Site{Key: "bad", BaseURL: "ftp://x"}))
	assert.Error(t, reg.Create(&model.Site{BaseURL: "https://x.example"}))
}

func TestSiteRegistry_UpdateInvalidatesCache(t *testing.T) {
	reg := newTestRegistry(t)
	s := addSite(t, reg, "mteam", "馒头", true)

	desc, ok := reg.Get("mteam")
	require.True(t, ok)
	require.Equal(t, "uid=1", desc.Cookie)

	s.Cookie = "uid=2"
	require.NoError(t, reg.Update(s))

	desc, ok = reg.Get("mteam")
	require.True(t, ok)
	assert.Equal(t, "uid=2", desc.Cookie)

	s.Enabled = false
	require.NoError(t, reg.Update(s))
	_, ok = reg.Get("mteam")
	assert.False(t, ok)
}

func TestSiteRegistry_Delete(t *testing.T) {
	reg := newTestRegistry(t)
	s := addSite(t, reg, "mteam", "馒头", true)
	_, ok := reg.Get("mteam")
	require.True(t, ok)

	require.NoError(t, reg.Delete(s.ID))
	_, ok = reg.Get("mteam")
	assert.False(t, ok)
	assert.ErrorIs(t, reg.Delete(s.ID), ErrSiteNotFound)

	// key 可以重新使用
	addSite(t, reg, "mteam", "馒头", true)
}

func TestSiteRegistry_ReportResult(t *testing.T) {
	reg := newTestRegistry(t)
	s := addSite(t, reg, "mteam", "馒头", true)

	reg.ReportResult("mteam", &source.HTTPStatusError{URL: "https://mteam.example", StatusCode: 403})
	got, err := reg.GetByID(s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, got.Status)
	assert.Contains(t, got.ErrorMessage, "403")
	assert.NotNil(t, got.LastErrorAt)

	// 出错的站点仍参与刮削
	_, ok := reg.Get("mteam")
	assert.True(t, ok)

	reg.ReportResult("mteam", nil)
	got, err = reg.GetByID(s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, got.Status)
	assert.Empty(t, got.ErrorMessage)
}

func TestConfigSources_Order(t *testing.T) {
	reg := newTestRegistry(t)
	addSite(t, reg, "a", "站点A", true)
	addSite(t, reg, "b", "站点B", true)
	addSite(t, reg, "off", "停用", false)

	cfg := config.ScraperConfig{
		PT:             config.PTConfig{APIURL: "https://pt.example/api", APIKey: "k"},
		Sites:          []string{"b", "missing", "off", "a"},
		GeneralSite:    "hongguo",
		TimeoutSeconds: 5,
	}
	sources, err := ConfigSources(cfg, reg, logger.NewNop())()
	require.NoError(t, err)
	defer closeSources(sources)

	var names []string
	for _, s := range sources {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"PT", "站点B", "站点A", "红果短剧"}, names)
}

func TestConfigSources_SiteKeyIgnoresCase(t *testing.T) {
	reg := newTestRegistry(t)
	addSite(t, reg, "MTeam", "馒头", true)

	desc, ok := reg.Get("MTeam")
	require.True(t, ok)
	assert.Equal(t, "馒头", desc.Name)
	_, ok = reg.Get(" mteam ")
	assert.True(t, ok)

	cfg := config.ScraperConfig{Sites: []string{"MTeam"}, TimeoutSeconds: 5}
	sources, err := ConfigSources(cfg, reg, logger.NewNop())()
	require.NoError(t, err)
	defer closeSources(sources)
	require.Len(t, sources, 1)
	assert.Equal(t, "馒头", sources[0].Name())
}

func TestConfigSources_UnknownGeneralSiteSkipped(t *testing.T) {
	cfg := config.ScraperConfig{GeneralSite: "nope", TimeoutSeconds: 5}
	sources, err := ConfigSources(cfg, nil, logger.NewNop())()
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestRecordNotifier(t *testing.T) {
	db := openTestDB(t)
	n := NewRecordNotifier(db, logger.NewNop())

	n.Notify(Outcome{PassID: "p1", Title: "A", Path: "/m/A", State: StateResolved, Source: "PT"})
	n.Notify(Outcome{PassID: "p1", Title: "B", Path: "/m/B", State: StateUnresolved})
	n.Notify(Outcome{PassID: "p1", Title: "C", Path: "/m/C", State: StateSkipped, Reason: "scraped"})
	n.Notify(Outcome{PassID: "p1", Title: "D", Path: "/m/D", State: StateUnresolved, Err: errors.New("x")})

	var records []model.ScrapeRecord
	require.NoError(t, db.Order("id").Find(&records).Error)
	require.Len(t, records, 3)
	assert.Equal(t, model.RecordResolved, records[0].Status)
	assert.Equal(t, "PT", records[0].Source)
	assert.Equal(t, model.RecordUnresolved, records[1].Status)
	assert.Equal(t, "x", records[2].ErrorMsg)
}

func TestOutcomeMessage(t *testing.T) {
	title, text := Outcome{Title: "重生之我在霸总短剧里当保姆"}.Message()
	assert.Equal(t, "短剧刮削成功", title)
	assert.Equal(t, "《重生之我在霸总短剧里当保姆》元数据已更新", text)
}
