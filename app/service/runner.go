package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"shortplay-scraper/app/config"
	"shortplay-scraper/app/logger"
	"shortplay-scraper/app/scanner"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrPassRunning 已有一轮在运行且还有一轮在排队
	ErrPassRunning = errors.New("刮削任务正在运行")
	// ErrRunnerStopped 运行器已停止
	ErrRunnerStopped = errors.New("刮削运行器已停止")
)

// Passer 执行一轮刮削
type Passer interface {
	RunPass(ctx context.Context) (Summary, error)
}

// RunnerStatus 运行状态快照
type RunnerStatus struct {
	Running   bool     `json:"running"`
	Queued    bool     `json:"queued"`
	Last      *Summary `json:"last,omitempty"`
	LastError string   `json:"last_error,omitempty"`
}

// Runner 保证同一配置同时只有一轮刮削。定时任务、手动触发与目录监听都经过这里。
type Runner struct {
	pipeline Passer
	key      string
	log      *logger.Logger

	group   singleflight.Group
	ctx     context.Context
	cancel  context.CancelFunc
	trigger chan struct{}
	wg      sync.WaitGroup
	stop    sync.Once

	mu      sync.RWMutex
	running bool
	last    *Summary
	lastErr error
}

// NewRunner 创建运行器并启动后台 worker，key 通常由 ConfigKey 计算
func NewRunner(p Passer, key string, log *logger.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		pipeline: p,
		key:      key,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		trigger:  make(chan struct{}, 1),
	}

	r.wg.Add(1)
	go r.worker()
	return r
}

// Run 同步执行一轮。并发调用共享同一轮的结果。
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.ctx.Err() != nil {
		return Summary{}, ErrRunnerStopped
	}

	v, err, shared := r.group.Do(r.key, func() (interface{}, error) {
		return r.run(ctx)
	})
	if shared {
		r.log.Debug("复用正在进行的刮削")
	}
	sum, _ := v.(Summary)
	return sum, err
}

// Trigger 异步请求一轮刮削。运行中再次触发会排队一次，多余的请求返回 ErrPassRunning。
func (r *Runner) Trigger() error {
	if r.ctx.Err() != nil {
		return ErrRunnerStopped
	}
	select {
	case r.trigger <- struct{}{}:
		return nil
	default:
		return ErrPassRunning
	}
}

// Stop 取消正在进行的刮削（当前目录处理完后退出）并等待 worker 结束
func (r *Runner) Stop() {
	r.stop.Do(func() {
		r.cancel()
		r.wg.Wait()
		r.log.Info("刮削运行器已停止")
	})
}

// Status 返回运行状态
func (r *Runner) Status() RunnerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := RunnerStatus{Running: r.running, Queued: len(r.trigger) > 0}
	if r.last != nil {
		last := *r.last
		st.Last = &last
	}
	if r.lastErr != nil {
		st.LastError = r.lastErr.Error()
	}
	return st
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.trigger:
			if _, err := r.Run(r.ctx); err != nil && !errors.Is(err, ErrNoRoots) {
				r.log.Errorf("刮削失败: %v", err)
			}
		}
	}
}

func (r *Runner) run(ctx context.Context) (sum Summary, err error) {
	passCtx, cancel := context.WithCancel(r.ctx)
	defer cancel()
	stopAfter := context.AfterFunc(ctx, cancel)
	defer stopAfter()

	r.setRunning(true)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("刮削过程发生 panic: %v", rec)
		}
		r.finish(sum, err)
	}()

	return r.pipeline.RunPass(passCtx)
}

func (r *Runner) setRunning(v bool) {
	r.mu.Lock()
	r.running = v
	r.mu.Unlock()
}

func (r *Runner) finish(sum Summary, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	if sum.PassID != "" {
		if sum.Finished.IsZero() {
			sum.Finished = time.Now()
		}
		r.last = &sum
	}
	r.lastErr = err
}

// ConfigKey 由监控目录、排除关键词与来源配置计算的标识，相同配置的刮削共享同一轮
func ConfigKey(cfg config.ScraperConfig) string {
	parts := []string{
		strings.Join(scanner.ParseRoots(cfg.MonitorDirs), "\n"),
		strings.Join(scanner.ParseKeywords(cfg.ExcludeKeywords), ","),
		cfg.GeneralSite,
		cfg.PT.APIURL,
		strings.Join(cfg.Sites, ","),
	}
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h[:8])
}
