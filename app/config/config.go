package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Database DatabaseConfig `mapstructure:"database"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
}

type ServerConfig struct {
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	LockFile string `mapstructure:"lock_file"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`      // json 或 text
	Output     string `mapstructure:"output"`      // stdout 或 file
	Dir        string `mapstructure:"dir"`         // output=file 时的日志目录
	MaxSize    int    `mapstructure:"max_size"`    // 兆字节
	MaxBackups int    `mapstructure:"max_backups"` // 备份数量
	MaxAge     int    `mapstructure:"max_age"`     // 天数
	Compress   bool   `mapstructure:"compress"`    // 是否压缩旧文件
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`      // JWT 密钥
	ExpireTime int    `mapstructure:"expire_time"` // 过期时间（小时）
	Issuer     string `mapstructure:"issuer"`      // 签发者
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ScraperConfig 刮削任务配置
type ScraperConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	OnlyOnce        bool     `mapstructure:"onlyonce"`       // 启动时立即运行一次
	IntervalHours   int      `mapstructure:"interval_hours"` // 0 表示不定时运行
	MonitorDirs     string   `mapstructure:"monitor_dirs"`   // 换行分隔
	ExcludeKeywords string   `mapstructure:"exclude_keywords"`
	GeneralSite     string   `mapstructure:"general_site"`
	PT              PTConfig `mapstructure:"pt"`
	Sites           []string `mapstructure:"sites"` // 站点注册表中的 key，按优先级排列

	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Proxy          string `mapstructure:"proxy"`

	DownloadPoster bool `mapstructure:"download_poster"`
	PosterMaxWidth int  `mapstructure:"poster_max_width"`

	Watch                bool `mapstructure:"watch"`
	WatchDebounceSeconds int  `mapstructure:"watch_debounce_seconds"`
}

// PTConfig PT 站点 API 配置，两项都填写时才启用
type PTConfig struct {
	APIURL string `mapstructure:"api_url"`
	APIKey string `mapstructure:"api_key"`
}

// Configured 是否同时配置了地址与密钥
func (p PTConfig) Configured() bool {
	return strings.TrimSpace(p.APIURL) != "" && strings.TrimSpace(p.APIKey) != ""
}

func Load() *Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	return cfg
}

func load() (*Config, error) {
	setDefaults()

	// 读取配置
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("未找到配置文件，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件出错: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("无法解码配置: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置
func setDefaults() {
	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")
	viper.SetDefault("server.lock_file", "data/shortplay-scraper.lock")

	// 日志默认配置
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.dir", "data/logs")
	viper.SetDefault("log.max_size", 100)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age", 28)
	viper.SetDefault("log.compress", true)

	// JWT默认配置
	viper.SetDefault("jwt.secret", "your-secret-key-change-in-production")
	viper.SetDefault("jwt.expire_time", 24)
	viper.SetDefault("jwt.issuer", "shortplay-scraper")

	viper.SetDefault("database.path", "data/shortplay-scraper.db")

	// 刮削默认配置
	viper.SetDefault("scraper.enabled", false)
	viper.SetDefault("scraper.onlyonce", false)
	viper.SetDefault("scraper.interval_hours", 0)
	viper.SetDefault("scraper.monitor_dirs", "")
	viper.SetDefault("scraper.exclude_keywords", "")
	viper.SetDefault("scraper.pt.api_url", "")
	viper.SetDefault("scraper.pt.api_key", "")
	viper.SetDefault("scraper.sites", []string{})
	viper.SetDefault("scraper.proxy", "")
	viper.SetDefault("scraper.general_site", "hongguo")
	viper.SetDefault("scraper.timeout_seconds", 15)
	viper.SetDefault("scraper.download_poster", false)
	viper.SetDefault("scraper.poster_max_width", 600)
	viper.SetDefault("scraper.watch", false)
	viper.SetDefault("scraper.watch_debounce_seconds", 30)
}

// validateConfig 验证配置的有效性
func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("服务器端口未设置")
	}
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT密钥未设置")
	}
	if config.Scraper.IntervalHours < 0 {
		return fmt.Errorf("scraper.interval_hours 不能为负数: %d", config.Scraper.IntervalHours)
	}
	if config.Scraper.TimeoutSeconds <= 0 {
		return fmt.Errorf("scraper.timeout_seconds 必须大于 0")
	}
	if strings.TrimSpace(config.Scraper.PT.APIURL) != "" && strings.TrimSpace(config.Scraper.PT.APIKey) == "" {
		return fmt.Errorf("已设置 scraper.pt.api_url 但缺少 scraper.pt.api_key")
	}
	return nil
}
