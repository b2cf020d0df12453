package service

import (
	"fmt"
	"sync"
	"time"

	"shortplay-scraper/app/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler 只需要按固定间隔注册一个任务
type Scheduler interface {
	Register(interval time.Duration, fn func()) error
	Unregister()
}

// CronScheduler 基于 robfig/cron 的定时器，上一次未结束时跳过本次
type CronScheduler struct {
	mu    sync.Mutex
	cron  *cron.Cron
	entry cron.EntryID
	log   *logger.Logger
}

func NewCronScheduler(log *logger.Logger) *CronScheduler {
	cl := cron.PrintfLogger(log)
	return &CronScheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		log:  log,
	}
}

// Register 注册定时任务，已有任务会被替换
func (s *CronScheduler) Register(interval time.Duration, fn func()) error {
	if interval <= 0 {
		return fmt.Errorf("定时间隔必须大于 0: %s", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked()
	id, err := s.cron.AddFunc("@every "+interval.String(), fn)
	if err != nil {
		return fmt.Errorf("注册定时任务失败: %w", err)
	}
	s.entry = id
	s.cron.Start()

	s.log.Infof("已注册定时刮削，间隔 %s，下次运行约在 %s", interval, time.Now().Add(interval).Format(time.DateTime))
	return nil
}

// Unregister 移除定时任务
func (s *CronScheduler) Unregister() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked()
}

func (s *CronScheduler) removeLocked() {
	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}
}

// Next 下次运行时间，未注册时为零值
func (s *CronScheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

// Stop 停止调度并等待正在执行的任务结束
func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
}
