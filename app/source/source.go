package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shortplay-scraper/app/logger"

	"go.uber.org/zap"
)

var (
	// ErrNotFound 响应中没有与标题匹配的条目
	ErrNotFound = errors.New("未找到匹配的元数据")
	// ErrNoCredential 站点缺少 Cookie，无法搜索
	ErrNoCredential = errors.New("站点未配置 Cookie")
)

// Record 一次成功查询得到的元数据
type Record struct {
	Title     string `json:"title"`
	Plot      string `json:"plot"`
	PosterURL string `json:"poster_url,omitempty"`
}

// Descriptor 描述一个元数据来源
type Descriptor struct {
	Key        string
	Name       string
	BaseURL    string
	SearchPath string
	Cookie     string
	UserAgent  string
}

// DisplayName 优先返回站点名称
func (d Descriptor) DisplayName() string {
	if strings.TrimSpace(d.Name) != "" {
		return d.Name
	}
	return d.Key
}

// Source 把站点差异限制在各自的包里，流水线只依赖这个接口。
//
// Parse 必须是纯函数：相同的 title 与 body 得到相同结果，没有匹配时返回 ErrNotFound。
type Source interface {
	Name() string
	Fetch(ctx context.Context, title string) ([]byte, error)
	Parse(title string, body []byte) (Record, error)
}

// HTTPStatusError 站点返回了非 2xx 状态码
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// Error 记录失败发生在哪个阶段
type Error struct {
	Source string
	Stage  string // fetch 或 parse
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("source=%s stage=%s: %v", e.Source, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Lookup 查询单个来源。任何网络错误、解析错误或 panic 都视为没有结果，只记录日志。
func Lookup(ctx context.Context, log *logger.Logger, src Source, title string) (rec Record, ok bool) {
	rec, err := lookup(ctx, src, title)
	if err == nil {
		return rec, true
	}

	if errors.Is(err, ErrNotFound) {
		log.Info("来源未找到匹配结果", zap.String("source", src.Name()), zap.String("title", title))
	} else {
		log.Warn("来源查询失败，按无结果处理", zap.String("source", src.Name()), zap.String("title", title), zap.Error(err))
	}
	return Record{}, false
}

func lookup(ctx context.Context, src Source, title string) (rec Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Source: src.Name(), Stage: "panic", Err: fmt.Errorf("%v", r)}
		}
	}()

	body, err := src.Fetch(ctx, title)
	if err != nil {
		return Record{}, &Error{Source: src.Name(), Stage: "fetch", Err: err}
	}

	rec, err = src.Parse(title, body)
	if err != nil {
		return Record{}, &Error{Source: src.Name(), Stage: "parse", Err: err}
	}
	if strings.TrimSpace(rec.Title) == "" {
		return Record{}, &Error{Source: src.Name(), Stage: "parse", Err: errors.New("解析结果缺少标题")}
	}
	return rec, nil
}
