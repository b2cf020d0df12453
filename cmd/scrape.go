package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shortplay-scraper/app/config"
	"shortplay-scraper/app/database"
	"shortplay-scraper/app/logger"
	"shortplay-scraper/app/service"

	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "立即执行一轮刮削后退出",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log := logger.New(cfg.Log)
		defer log.Close()

		lock, err := acquireLock(cfg.Server.LockFile)
		if err != nil {
			return err
		}
		defer lock.Unlock()

		db, err := database.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("打开数据库失败: %w", err)
		}

		registry := service.NewSiteRegistry(db, log)
		pipeline := service.NewFromConfig(cfg.Scraper, registry, db, log.Named("scraper"))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sum, err := pipeline.RunPass(ctx)
		if err != nil {
			if errors.Is(err, service.ErrNoRoots) {
				return fmt.Errorf("请先在配置文件中设置 scraper.monitor_dirs")
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "刮削完成：成功 %d，未找到 %d，跳过 %d\n", sum.Resolved, sum.Unresolved, sum.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
