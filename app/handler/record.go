package handler

import (
	"net/http"

	"shortplay-scraper/app/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RecordHandler 刮削历史
type RecordHandler struct {
	db *gorm.DB
}

// NewRecordHandler 创建刮削历史处理器
func NewRecordHandler(db *gorm.DB) *RecordHandler {
	return &RecordHandler{db: db}
}

// GetRecords 分页查询刮削历史，支持 status、pass_id 过滤
func (h *RecordHandler) GetRecords(c *gin.Context) {
	page, pageSize := pageParams(c)

	status, passID := c.Query("status"), c.Query("pass_id")
	filter := func(tx *gorm.DB) *gorm.DB {
		if status != "" {
			tx = tx.Where("status = ?", status)
		}
		if passID != "" {
			tx = tx.Where("pass_id = ?", passID)
		}
		return tx
	}

	var total int64
	if err := h.db.Model(&model.ScrapeRecord{}).Scopes(filter).Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, "获取刮削记录失败")
		return
	}

	var records []model.ScrapeRecord
	if err := h.db.Scopes(filter).Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error; err != nil {
		fail(c, http.StatusInternalServerError, "获取刮削记录失败")
		return
	}

	success(c, PageData{
		List:     records,
		Total:    total,
		Current:  page,
		PageSize: pageSize,
	}, "获取刮削记录成功")
}
