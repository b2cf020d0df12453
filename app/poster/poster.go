package poster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shortplay-scraper/app/source"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // 站点封面常见 webp
	"resty.dev/v3"
)

// FileName 海报文件名，与 NFO 同目录
const FileName = "poster.jpg"

// Saver 下载封面并转存为 JPEG
type Saver struct {
	client   *resty.Client
	maxWidth int
}

// NewSaver maxWidth <= 0 时保持原始尺寸
func NewSaver(opts source.HTTPOptions, maxWidth int) *Saver {
	return &Saver{client: source.NewHTTPClient(opts), maxWidth: maxWidth}
}

// Save 下载 url 指向的图片并写入 dir/poster.jpg，已存在时跳过
func (s *Saver) Save(ctx context.Context, url, dir string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", errors.New("海报地址为空")
	}

	target := filepath.Join(dir, FileName)
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	body, err := source.Get(ctx, s.client, url, nil, nil)
	if err != nil {
		return "", fmt.Errorf("下载海报失败: %w", err)
	}
	if err := s.encode(body, target); err != nil {
		return "", err
	}
	return target, nil
}

func (s *Saver) encode(body []byte, target string) error {
	img, err := imaging.Decode(bytes.NewReader(body), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("解码海报失败: %w", err)
	}
	if s.maxWidth > 0 && img.Bounds().Dx() > s.maxWidth {
		img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(img, target, imaging.JPEGQuality(90)); err != nil {
		return fmt.Errorf("保存海报失败: %w", err)
	}
	return nil
}

// Close 释放底层连接
func (s *Saver) Close() error {
	return s.client.Close()
}
