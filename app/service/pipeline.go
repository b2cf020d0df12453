package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"shortplay-scraper/app/config"
	"shortplay-scraper/app/logger"
	"shortplay-scraper/app/nfo"
	"shortplay-scraper/app/poster"
	"shortplay-scraper/app/scanner"
	"shortplay-scraper/app/source"
	"shortplay-scraper/app/source/general"
	"shortplay-scraper/app/source/ptapi"
	"shortplay-scraper/app/source/tracker"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoRoots 没有配置任何监控目录
var ErrNoRoots = errors.New("未配置监控目录")

// Summary 一次刮削的统计
type Summary struct {
	PassID     string    `json:"pass_id"`
	Resolved   int       `json:"resolved"`
	Unresolved int       `json:"unresolved"`
	Skipped    int       `json:"skipped"`
	Cancelled  bool      `json:"cancelled"`
	Started    time.Time `json:"started"`
	Finished   time.Time `json:"finished"`
}

// SourceProvider 每轮开始时构建来源列表，顺序即优先级
type SourceProvider func() ([]source.Source, error)

// PosterSaver 下载海报
type PosterSaver interface {
	Save(ctx context.Context, url, dir string) (string, error)
}

// Pipeline 对每个候选目录按优先级查询来源，命中即写入 NFO
type Pipeline struct {
	scanner  *scanner.Scanner
	provide  SourceProvider
	notifier Notifier
	poster   PosterSaver
	log      *logger.Logger

	write func(dir string, rec source.Record) error
}

// NewPipeline 创建刮削流程
func NewPipeline(sc *scanner.Scanner, provide SourceProvider, n Notifier, log *logger.Logger) *Pipeline {
	if n == nil {
		n = NewLogNotifier(log)
	}
	return &Pipeline{
		scanner:  sc,
		provide:  provide,
		notifier: n,
		log:      log,
		write:    nfo.Write,
	}
}

// WithPoster 命中后顺带下载海报
func (p *Pipeline) WithPoster(s PosterSaver) *Pipeline {
	p.poster = s
	return p
}

// RunPass 执行一轮刮削。只有未配置监控目录时返回错误；
// 单个目录的失败只影响它自己，取消时处理完当前目录后退出。
func (p *Pipeline) RunPass(ctx context.Context) (Summary, error) {
	sum := Summary{PassID: uuid.NewString(), Started: time.Now()}
	log := p.log.With(zap.String("pass", sum.PassID))

	if len(p.scanner.Roots()) == 0 {
		log.Warn("未配置监控目录，跳过本轮刮削")
		sum.Finished = time.Now()
		return sum, ErrNoRoots
	}

	sources, err := p.provide()
	if err != nil {
		return sum, fmt.Errorf("构建元数据来源失败: %w", err)
	}
	defer closeSources(sources)
	if len(sources) == 0 {
		log.Warn("未配置任何元数据来源，所有目录都将无法刮削")
	}

	log.Infof("开始刮削，来源数量: %d", len(sources))
	p.scanner.Walk(func(c scanner.Candidate, reason scanner.SkipReason) bool {
		if ctx.Err() != nil {
			sum.Cancelled = true
			return false
		}

		if reason != scanner.SkipNone {
			sum.Skipped++
			p.notifier.Notify(Outcome{PassID: sum.PassID, Title: c.Name, Path: c.Path, State: StateSkipped, Reason: string(reason)})
			return true
		}

		out := p.resolve(ctx, log, sum.PassID, c, sources)
		if out.State == StateResolved {
			sum.Resolved++
		} else {
			sum.Unresolved++
		}
		p.notifier.Notify(out)
		return true
	})

	sum.Finished = time.Now()
	if sum.Cancelled {
		log.Info("刮削已取消")
	}
	log.Infof("刮削完成: 成功 %d, 未找到 %d, 跳过 %d, 耗时 %s",
		sum.Resolved, sum.Unresolved, sum.Skipped, sum.Finished.Sub(sum.Started).Round(time.Millisecond))
	return sum, nil
}

func (p *Pipeline) resolve(ctx context.Context, log *logger.Logger, passID string, c scanner.Candidate, sources []source.Source) (out Outcome) {
	out = Outcome{PassID: passID, Title: c.Name, Path: c.Path, State: StateUnresolved}
	defer func() {
		if r := recover(); r != nil {
			log.Error("处理目录时发生 panic", zap.String("path", c.Path), zap.Any("panic", r))
			out.State = StateUnresolved
			out.Err = fmt.Errorf("panic: %v", r)
		}
	}()

	for _, src := range sources {
		rec, ok := source.Lookup(ctx, log, src, c.Name)
		if !ok {
			continue
		}

		out.Source = src.Name()
		if err := p.write(c.Path, rec); err != nil {
			log.Error("写入 NFO 失败", zap.String("path", c.Path), zap.Error(err))
			out.Err = err
			return out
		}
		out.State = StateResolved
		p.savePoster(ctx, log, c, rec)
		return out
	}
	return out
}

func (p *Pipeline) savePoster(ctx context.Context, log *logger.Logger, c scanner.Candidate, rec source.Record) {
	if p.poster == nil || rec.PosterURL == "" {
		return
	}
	if _, err := p.poster.Save(ctx, rec.PosterURL, c.Path); err != nil {
		log.Warn("海报下载失败", zap.String("path", c.Path), zap.Error(err))
	}
}

func closeSources(sources []source.Source) {
	for _, s := range sources {
		if c, ok := s.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

// StaticSources 固定的来源列表
func StaticSources(sources ...source.Source) SourceProvider {
	return func() ([]source.Source, error) { return sources, nil }
}

// ConfigSources 按配置构建来源：PT API、注册表中的站点（按 scraper.sites 顺序）、通用站点
func ConfigSources(cfg config.ScraperConfig, reg *SiteRegistry, log *logger.Logger) SourceProvider {
	return func() ([]source.Source, error) {
		opts := HTTPOptions(cfg)
		var sources []source.Source

		if cfg.PT.Configured() {
			pt, err := ptapi.New(cfg.PT.APIURL, cfg.PT.APIKey, opts)
			if err != nil {
				return nil, err
			}
			sources = append(sources, pt)
		}

		for _, key := range cfg.Sites {
			if reg == nil {
				break
			}
			desc, ok := reg.Get(key)
			if !ok {
				log.Warnf("站点 %s 不存在或已禁用，跳过", key)
				continue
			}
			sources = append(sources, &reportingSource{Source: tracker.New(desc, opts), key: key, reg: reg})
		}

		if cfg.GeneralSite != "" {
			g, err := general.New(cfg.GeneralSite, opts)
			if err != nil {
				log.Warnf("通用站点配置无效: %v", err)
			} else {
				sources = append(sources, g)
			}
		}
		return sources, nil
	}
}

// HTTPOptions 从配置得到出站请求参数
func HTTPOptions(cfg config.ScraperConfig) source.HTTPOptions {
	return source.HTTPOptions{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		Proxy:   cfg.Proxy,
	}
}

// reportingSource 把站点请求结果回写到注册表
type reportingSource struct {
	source.Source
	key string
	reg *SiteRegistry
}

func (s *reportingSource) Fetch(ctx context.Context, title string) ([]byte, error) {
	body, err := s.Source.Fetch(ctx, title)
	if ctx.Err() == nil {
		s.reg.ReportResult(s.key, err)
	}
	return body, err
}

func (s *reportingSource) Close() error {
	if c, ok := s.Source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// NewFromConfig 按配置组装完整流程：扫描器、来源、日志与历史记录、可选海报下载
func NewFromConfig(cfg config.ScraperConfig, reg *SiteRegistry, db *gorm.DB, log *logger.Logger) *Pipeline {
	sc := scanner.New(scanner.ParseRoots(cfg.MonitorDirs), scanner.ParseKeywords(cfg.ExcludeKeywords), log.Named("scanner"))

	notifiers := MultiNotifier{NewLogNotifier(log)}
	if db != nil {
		notifiers = append(notifiers, NewRecordNotifier(db, log))
	}

	p := NewPipeline(sc, ConfigSources(cfg, reg, log), notifiers, log)
	if cfg.DownloadPoster {
		p.WithPoster(poster.NewSaver(HTTPOptions(cfg), cfg.PosterMaxWidth))
	}
	return p
}
