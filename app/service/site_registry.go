package service

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"shortplay-scraper/app/logger"
	"shortplay-scraper/app/model"
	"shortplay-scraper/app/source"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const siteCacheTTL = 5 * time.Minute

var (
	ErrSiteNotFound = errors.New("站点不存在")
	ErrSiteExists   = errors.New("站点标识已存在")
)

// SiteRegistry PT 站点注册表。刮削流程只读，接口与命令行负责写入。
type SiteRegistry struct {
	db    *gorm.DB
	log   *logger.Logger
	cache *cache.Cache
}

// NewSiteRegistry 创建站点注册表
func NewSiteRegistry(db *gorm.DB, log *logger.Logger) *SiteRegistry {
	return &SiteRegistry{
		db:    db,
		log:   log,
		cache: cache.New(siteCacheTTL, 2*siteCacheTTL),
	}
}

// Get 按 key 返回可用站点的描述；不存在或已禁用时返回 false
func (r *SiteRegistry) Get(key string) (source.Descriptor, bool) {
	key = model.NormalizeKey(key)
	if v, ok := r.cache.Get(key); ok {
		return v.(source.Descriptor), true
	}

	var site model.Site
	if err := r.db.Where("`key` = ?", key).First(&site).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Errorf("查询站点 %s 失败: %v", key, err)
		}
		return source.Descriptor{}, false
	}
	if !site.IsAvailable() {
		return source.Descriptor{}, false
	}

	desc := site.Descriptor()
	r.cache.Set(key, desc, cache.DefaultExpiration)
	return desc, true
}

// List 按排序字段返回全部站点
func (r *SiteRegistry) List() ([]model.Site, error) {
	var sites []model.Site
	err := r.db.Order("sort_order ASC, id ASC").Find(&sites).Error
	return sites, err
}

// GetByID 按主键查询
func (r *SiteRegistry) GetByID(id uint) (*model.Site, error) {
	var site model.Site
	if err := r.db.First(&site, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	return &site, nil
}

// GetByKey 按 key 查询，不过滤禁用状态
func (r *SiteRegistry) GetByKey(key string) (*model.Site, error) {
	var site model.Site
	if err := r.db.Where("`key` = ?", model.NormalizeKey(key)).First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	return &site, nil
}

// Create 新增站点
func (r *SiteRegistry) Create(site *model.Site) error {
	site.Normalize()
	if err := validateSite(site); err != nil {
		return err
	}

	var count int64
	if err := r.db.Model(&model.Site{}).Where("`key` = ?", site.Key).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSiteExists
	}

	if err := r.db.Create(site).Error; err != nil {
		return fmt.Errorf("创建站点失败: %w", err)
	}
	r.log.Infof("站点已添加: %s (%s)", site.Name, site.Key)
	return nil
}

// Update 保存站点的全部字段
func (r *SiteRegistry) Update(site *model.Site) error {
	old, err := r.GetByID(site.ID)
	if err != nil {
		return err
	}

	site.Normalize()
	if err := validateSite(site); err != nil {
		return err
	}
	if site.Key != old.Key {
		var count int64
		r.db.Model(&model.Site{}).Where("`key` = ? AND id != ?", site.Key, site.ID).Count(&count)
		if count > 0 {
			return ErrSiteExists
		}
	}
	// 更换 Cookie 后重新观察
	if site.Cookie != old.Cookie && site.Status == model.StatusError {
		site.ClearError()
	}

	if err := r.db.Save(site).Error; err != nil {
		return fmt.Errorf("更新站点失败: %w", err)
	}
	r.Invalidate(old.Key)
	r.Invalidate(site.Key)
	return nil
}

// Delete 删除站点
func (r *SiteRegistry) Delete(id uint) error {
	site, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if err := r.db.Delete(site).Error; err != nil {
		return fmt.Errorf("删除站点失败: %w", err)
	}
	r.Invalidate(site.Key)
	r.log.Infof("站点已删除: %s", site.Key)
	return nil
}

// Invalidate 清除缓存，key 为空时清空全部
func (r *SiteRegistry) Invalidate(key string) {
	if key == "" {
		r.cache.Flush()
		return
	}
	r.cache.Delete(model.NormalizeKey(key))
}

// ReportResult 记录一次站点请求的结果，用于在接口中展示 Cookie 失效等问题
func (r *SiteRegistry) ReportResult(key string, err error) {
	site, getErr := r.GetByKey(key)
	if getErr != nil {
		return
	}

	if err == nil {
		if site.Status != model.StatusError {
			return
		}
		site.ClearError()
	} else {
		site.SetError(err)
	}

	if err := r.db.Model(site).Select("status", "error_message", "last_error_at").Updates(site).Error; err != nil {
		r.log.Warnf("更新站点 %s 状态失败: %v", key, err)
	}
}

func validateSite(site *model.Site) error {
	if site.Key == "" {
		return errors.New("站点标识不能为空")
	}
	if site.Name == "" {
		site.Name = site.Key
	}
	u, err := url.Parse(site.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("站点地址无效: %q", site.BaseURL)
	}
	switch site.Status {
	case model.StatusActive, model.StatusDisabled, model.StatusError:
	default:
		return fmt.Errorf("未知的站点状态: %q", site.Status)
	}
	return nil
}
