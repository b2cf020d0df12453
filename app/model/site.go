package model

import (
	"strings"
	"time"

	"shortplay-scraper/app/source"
)

// Site 需要 Cookie 认证的 PT 站点
type Site struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Key          string     `gorm:"size:50;not null;uniqueIndex;comment:站点标识" json:"key"`
	Name         string     `gorm:"size:100;not null;comment:站点名称" json:"name"`
	BaseURL      string     `gorm:"size:255;not null;comment:站点地址" json:"base_url"`
	SearchPath   string     `gorm:"size:255;comment:搜索路径" json:"search_path"`
	Cookie       string     `gorm:"type:text;comment:登录 Cookie" json:"cookie"`
	UserAgent    string     `gorm:"size:255;comment:自定义 UA" json:"user_agent"`
	Enabled      bool       `gorm:"comment:是否启用" json:"enabled"`
	Status       string     `gorm:"size:20;default:active;comment:状态(active,disabled,error)" json:"status"`
	ErrorMessage string     `gorm:"type:text;comment:错误信息" json:"error_message"`
	LastErrorAt  *time.Time `gorm:"comment:最后错误时间" json:"last_error_at"`
	SortOrder    int        `gorm:"default:0;comment:排序" json:"sort_order"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (Site) TableName() string {
	return "sites"
}

// 站点状态
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
	StatusError    = "error"
)

// NormalizeKey 站点标识统一小写存储与查找
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Normalize 清理用户输入
func (s *Site) Normalize() {
	s.Key = NormalizeKey(s.Key)
	s.Name = strings.TrimSpace(s.Name)
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	s.SearchPath = strings.TrimSpace(s.SearchPath)
	s.Cookie = strings.TrimSpace(s.Cookie)
	if s.Status == "" {
		s.Status = StatusActive
	}
}

// IsAvailable 是否可以参与刮削
func (s *Site) IsAvailable() bool {
	return s.Enabled && s.Status != StatusDisabled
}

// Descriptor 转换为来源描述
func (s *Site) Descriptor() source.Descriptor {
	return source.Descriptor{
		Key:        s.Key,
		Name:       s.Name,
		BaseURL:    s.BaseURL,
		SearchPath: s.SearchPath,
		Cookie:     s.Cookie,
		UserAgent:  s.UserAgent,
	}
}

// SetError 设置错误状态
func (s *Site) SetError(err error) {
	s.Status = StatusError
	s.ErrorMessage = err.Error()
	now := time.Now()
	s.LastErrorAt = &now
}

// ClearError 清除错误状态
func (s *Site) ClearError() {
	s.Status = StatusActive
	s.ErrorMessage = ""
	s.LastErrorAt = nil
}
