package handler

import (
	"errors"
	"net/http"
	"time"

	"shortplay-scraper/app/service"
	"shortplay-scraper/app/source/general"

	"github.com/gin-gonic/gin"
)

// ScrapeRunner 手动触发与状态查询
type ScrapeRunner interface {
	Trigger() error
	Status() service.RunnerStatus
}

// ScrapeHandler 刮削任务
type ScrapeHandler struct {
	runner ScrapeRunner
	next   func() time.Time
}

// NewScrapeHandler next 返回下次定时运行时间，可以为 nil
func NewScrapeHandler(runner ScrapeRunner, next func() time.Time) *ScrapeHandler {
	return &ScrapeHandler{runner: runner, next: next}
}

// ScrapeStatus 运行状态
type ScrapeStatus struct {
	service.RunnerStatus
	NextRun *time.Time `json:"next_run,omitempty"`
}

// Run 异步触发一轮刮削
func (h *ScrapeHandler) Run(c *gin.Context) {
	if err := h.runner.Trigger(); err != nil {
		if errors.Is(err, service.ErrPassRunning) {
			fail(c, http.StatusConflict, "已有刮削任务在运行和排队")
			return
		}
		fail(c, http.StatusServiceUnavailable, err.Error())
		return
	}

	c.JSON(http.StatusAccepted, ApiResponse{Code: 0, Message: "刮削任务已提交"})
}

// Status 当前运行状态与上一轮统计
func (h *ScrapeHandler) Status(c *gin.Context) {
	st := ScrapeStatus{RunnerStatus: h.runner.Status()}
	if h.next != nil {
		if next := h.next(); !next.IsZero() {
			st.NextRun = &next
		}
	}
	success(c, st, "success")
}

// GeneralSites 内置通用站点
func (h *ScrapeHandler) GeneralSites(c *gin.Context) {
	success(c, general.Sites(), "success")
}
