package cmd

import (
	"fmt"

	"shortplay-scraper/app/config"
	"shortplay-scraper/app/database"
	"shortplay-scraper/app/logger"
	"shortplay-scraper/app/model"
	"shortplay-scraper/app/service"

	"github.com/spf13/cobra"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "管理 PT 站点",
}

var siteListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出站点",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		sites, err := reg.List()
		if err != nil {
			return err
		}

		if len(sites) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "暂无站点")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"ID", "标识", "名称", "地址", "启用", "状态", "Cookie"},
			siteRows(sites),
			[]columnAlignment{alignRight},
		))
		return nil
	},
}

var siteAdd model.Site

var siteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "添加站点",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		site := siteAdd
		site.Enabled = true
		if err := reg.Create(&site); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "站点已添加: %s (ID %d)\n", site.Key, site.ID)
		return nil
	},
}

var siteRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "删除站点",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		site, err := reg.GetByKey(args[0])
		if err != nil {
			return err
		}
		if err := reg.Delete(site.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "站点已删除: %s\n", site.Key)
		return nil
	},
}

func init() {
	siteAddCmd.Flags().StringVar(&siteAdd.Key, "key", "", "站点标识，对应 scraper.sites 中的值")
	siteAddCmd.Flags().StringVar(&siteAdd.Name, "name", "", "站点名称")
	siteAddCmd.Flags().StringVar(&siteAdd.BaseURL, "url", "", "站点地址")
	siteAddCmd.Flags().StringVar(&siteAdd.SearchPath, "search-path", "", "搜索路径，默认 /torrents.php")
	siteAddCmd.Flags().StringVar(&siteAdd.Cookie, "cookie", "", "登录 Cookie")
	siteAddCmd.Flags().StringVar(&siteAdd.UserAgent, "user-agent", "", "自定义 User-Agent")
	_ = siteAddCmd.MarkFlagRequired("key")
	_ = siteAddCmd.MarkFlagRequired("url")

	siteCmd.AddCommand(siteListCmd, siteAddCmd, siteRemoveCmd)
	rootCmd.AddCommand(siteCmd)
}

func openRegistry() (*service.SiteRegistry, error) {
	cfg := config.Load()
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	return service.NewSiteRegistry(db, logger.NewNop()), nil
}
