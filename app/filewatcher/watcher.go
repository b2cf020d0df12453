package filewatcher

import (
	"fmt"
	"os"
	"sync"
	"time"

	"shortplay-scraper/app/logger"

	"github.com/fsnotify/fsnotify"
)

// DirWatcher 监听监控目录的一级变化，出现新目录时在防抖后请求一次刮削。
// 不递归：只有一级子目录才是短剧。
type DirWatcher struct {
	roots    []string
	debounce time.Duration
	onChange func()

	watcher  *fsnotify.Watcher
	logger   *logger.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	watching bool
	mu       sync.Mutex

	timerMu sync.Mutex
	timer   *time.Timer
}

// New 创建目录监听器，onChange 在防抖结束后调用
func New(roots []string, debounce time.Duration, onChange func(), log *logger.Logger) (*DirWatcher, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("目录监听已启用但没有配置监控目录")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}

	return &DirWatcher{
		roots:    roots,
		debounce: debounce,
		onChange: onChange,
		watcher:  watcher,
		logger:   log,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start 启动监听。不存在的目录只记录警告，全部无法监听时返回错误。
func (dw *DirWatcher) Start() error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.watching {
		return fmt.Errorf("目录监听已经在运行")
	}

	added := 0
	for _, root := range dw.roots {
		if _, err := os.Stat(root); err != nil {
			dw.logger.Warnf("监控目录不可用，跳过监听: %s, 错误: %v", root, err)
			continue
		}
		if err := dw.watcher.Add(root); err != nil {
			dw.logger.Warnf("添加目录监听失败: %s, 错误: %v", root, err)
			continue
		}
		added++
	}
	if added == 0 {
		return fmt.Errorf("没有可以监听的监控目录")
	}

	dw.watching = true
	dw.wg.Add(1)
	go dw.watchLoop()

	dw.logger.Infof("目录监听已启动，共 %d 个目录，防抖 %s", added, dw.debounce)
	return nil
}

// Stop 停止监听，未触发的防抖请求一并取消
func (dw *DirWatcher) Stop() error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if !dw.watching {
		return dw.watcher.Close()
	}

	close(dw.stopCh)
	err := dw.watcher.Close()
	dw.wg.Wait()
	dw.watching = false

	dw.timerMu.Lock()
	if dw.timer != nil {
		dw.timer.Stop()
	}
	dw.timerMu.Unlock()

	dw.logger.Info("目录监听已停止")
	return err
}

func (dw *DirWatcher) watchLoop() {
	defer dw.wg.Done()

	for {
		select {
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			dw.handleEvent(event)

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.logger.Errorf("目录监听错误: %v", err)

		case <-dw.stopCh:
			return
		}
	}
}

// handleEvent 只关心新建或移入的目录
func (dw *DirWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}

	dw.logger.Debugf("发现新目录: %s", event.Name)
	dw.schedule()
}

// schedule 重置防抖计时器，连续拷入多部剧只触发一次
func (dw *DirWatcher) schedule() {
	dw.timerMu.Lock()
	defer dw.timerMu.Unlock()

	if dw.timer != nil {
		dw.timer.Stop()
	}
	dw.timer = time.AfterFunc(dw.debounce, func() {
		select {
		case <-dw.stopCh:
			return
		default:
		}
		dw.logger.Info("监控目录有新增，请求刮削")
		dw.onChange()
	})
}
