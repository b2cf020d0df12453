package model

import (
	"time"
)

// RecordStatus 候选目录在一次刮削中的结果
type RecordStatus string

const (
	RecordResolved   RecordStatus = "resolved"
	RecordUnresolved RecordStatus = "unresolved"
	RecordSkipped    RecordStatus = "skipped"
	RecordFailed     RecordStatus = "failed" // 找到元数据但写入失败
)

// ScrapeRecord 刮削历史
type ScrapeRecord struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	PassID    string       `gorm:"size:36;not null;index" json:"pass_id"`
	Title     string       `gorm:"size:255;not null" json:"title"`
	Path      string       `gorm:"type:text;not null" json:"path"`
	Status    RecordStatus `gorm:"size:20;default:'unresolved';index" json:"status"`
	Source    string       `gorm:"size:100" json:"source"`
	ErrorMsg  string       `gorm:"type:text" json:"error_msg"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (ScrapeRecord) TableName() string {
	return "scrape_records"
}
