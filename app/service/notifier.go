package service

import (
	"errors"
	"fmt"

	"shortplay-scraper/app/logger"
	"shortplay-scraper/app/model"
	"shortplay-scraper/app/nfo"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// State 候选目录在一次刮削中的最终状态
type State string

const (
	StateResolved   State = "resolved"
	StateUnresolved State = "unresolved"
	StateSkipped    State = "skipped"
)

// Outcome 每个候选目录在一次刮削中恰好产生一个
type Outcome struct {
	PassID string
	Title  string
	Path   string
	State  State
	Source string // 命中的来源；写入失败时为找到元数据的来源
	Reason string // 跳过原因
	Err    error
}

// Message 成功通知的标题与正文
func (o Outcome) Message() (title, text string) {
	return "短剧刮削成功", fmt.Sprintf("《%s》元数据已更新", o.Title)
}

// Notifier 接收刮削结果
type Notifier interface {
	Notify(o Outcome)
}

// LogNotifier 把结果写入日志
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(o Outcome) {
	fields := []zap.Field{zap.String("pass", o.PassID), zap.String("path", o.Path)}
	switch o.State {
	case StateResolved:
		title, text := o.Message()
		n.log.Info(title, append(fields, zap.String("msg", text), zap.String("source", o.Source))...)
	case StateSkipped:
		n.log.Debug("跳过目录", append(fields, zap.String("reason", o.Reason))...)
	default:
		if o.Err != nil {
			n.log.Error("刮削失败", append(fields, zap.String("title", o.Title), zap.Error(o.Err))...)
			return
		}
		n.log.Info("所有来源均未找到元数据", append(fields, zap.String("title", o.Title))...)
	}
}

// RecordNotifier 把结果保存为刮削历史。跳过的目录不入库，否则每一轮都会重复写入。
type RecordNotifier struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordNotifier(db *gorm.DB, log *logger.Logger) *RecordNotifier {
	return &RecordNotifier{db: db, log: log}
}

func (n *RecordNotifier) Notify(o Outcome) {
	if o.State == StateSkipped {
		return
	}

	rec := model.ScrapeRecord{
		PassID: o.PassID,
		Title:  o.Title,
		Path:   o.Path,
		Status: recordStatus(o),
		Source: o.Source,
	}
	if o.Err != nil {
		rec.ErrorMsg = o.Err.Error()
	}
	if err := n.db.Create(&rec).Error; err != nil {
		n.log.Warnf("保存刮削记录失败: %v", err)
	}
}

func recordStatus(o Outcome) model.RecordStatus {
	switch {
	case o.State == StateResolved:
		return model.RecordResolved
	case o.State == StateSkipped:
		return model.RecordSkipped
	case o.Err != nil:
		var we *nfo.WriteError
		if errors.As(o.Err, &we) {
			return model.RecordFailed
		}
		return model.RecordUnresolved
	default:
		return model.RecordUnresolved
	}
}

// MultiNotifier 依次通知多个接收者
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(o Outcome) {
	for _, n := range m {
		if n != nil {
			n.Notify(o)
		}
	}
}
