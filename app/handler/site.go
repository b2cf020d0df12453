package handler

import (
	"errors"
	"net/http"

	"shortplay-scraper/app/model"
	"shortplay-scraper/app/service"

	"github.com/gin-gonic/gin"
)

// SiteHandler PT 站点注册表
type SiteHandler struct {
	registry *service.SiteRegistry
}

// NewSiteHandler 创建站点处理器
func NewSiteHandler(registry *service.SiteRegistry) *SiteHandler {
	return &SiteHandler{registry: registry}
}

// SiteRequest 创建/更新站点
type SiteRequest struct {
	Key        string `json:"key" binding:"required,max=50"`
	Name       string `json:"name" binding:"max=100"`
	BaseURL    string `json:"base_url" binding:"required"`
	SearchPath string `json:"search_path"`
	Cookie     string `json:"cookie"`
	UserAgent  string `json:"user_agent"`
	Enabled    *bool  `json:"enabled"`
	Status     string `json:"status"`
	SortOrder  int    `json:"sort_order"`
}

func (r SiteRequest) apply(site *model.Site) {
	site.Key = r.Key
	site.Name = r.Name
	site.BaseURL = r.BaseURL
	site.SearchPath = r.SearchPath
	site.Cookie = r.Cookie
	site.UserAgent = r.UserAgent
	site.SortOrder = r.SortOrder
	if r.Enabled != nil {
		site.Enabled = *r.Enabled
	}
	if r.Status != "" {
		site.Status = r.Status
	}
}

// CreateSite 新增站点，未指定 enabled 时默认启用
func (h *SiteHandler) CreateSite(c *gin.Context) {
	var req SiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	site := model.Site{Enabled: true}
	req.apply(&site)
	if err := h.registry.Create(&site); err != nil {
		h.writeError(c, err)
		return
	}

	success(c, site, "创建站点成功")
}

// GetSites 站点列表
func (h *SiteHandler) GetSites(c *gin.Context) {
	sites, err := h.registry.List()
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取站点列表失败")
		return
	}
	success(c, sites, "获取站点列表成功")
}

// GetSite 站点详情
func (h *SiteHandler) GetSite(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	site, err := h.registry.GetByID(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	success(c, site, "获取站点成功")
}

// UpdateSite 更新站点
func (h *SiteHandler) UpdateSite(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req SiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	site, err := h.registry.GetByID(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	req.apply(site)
	if err := h.registry.Update(site); err != nil {
		h.writeError(c, err)
		return
	}

	success(c, site, "更新站点成功")
}

// DeleteSite 删除站点
func (h *SiteHandler) DeleteSite(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.registry.Delete(id); err != nil {
		h.writeError(c, err)
		return
	}
	success(c, nil, "删除站点成功")
}

func (h *SiteHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSiteNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSiteExists):
		fail(c, http.StatusConflict, err.Error())
	default:
		fail(c, http.StatusBadRequest, err.Error())
	}
}
