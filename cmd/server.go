package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"shortplay-scraper/app/config"
	"shortplay-scraper/app/database"
	"shortplay-scraper/app/logger"
	"shortplay-scraper/app/server"
	"shortplay-scraper/app/service"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动服务器与定时刮削",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		// 创建日志器
		log := logger.New(cfg.Log)
		defer log.Close()

		// 同一数据目录只允许一个实例
		lock, err := acquireLock(cfg.Server.LockFile)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer lock.Unlock()

		// 初始化数据库
		if err := database.Init(cfg, log); err != nil {
			log.Fatalf("数据库初始化失败: %v", err)
		}

		registry := service.NewSiteRegistry(database.DB, log)
		pipeline := service.NewFromConfig(cfg.Scraper, registry, database.DB, log.Named("scraper"))
		runner := service.NewRunner(pipeline, service.ConfigKey(cfg.Scraper), log)

		srv := server.New(cfg, log, database.DB, registry, runner)

		// 在协程中启动服务器
		go func() {
			if err := srv.Start(); err != nil {
				log.Fatalf("启动服务器失败: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("收到关闭信号，正在关闭服务器...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Errorf("服务器关闭失败: %v", err)
		}
		log.Info("服务器已退出")
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func acquireLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, fmt.Errorf("已有实例在运行（锁文件 %s）", path)
	}
	return lock, nil
}
