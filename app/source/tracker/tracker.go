package tracker

import (
	"bytes"
	"context"
	"strings"

	"shortplay-scraper/app/source"

	"github.com/PuerkitoBio/goquery"
	"resty.dev/v3"
)

// DefaultSearchPath NexusPHP 系站点的种子搜索页
const DefaultSearchPath = "/torrents.php"

// Provider 依赖 Cookie 的 PT 站点搜索。
//
// 约束：
// - Cookie 由站点管理维护，这里只读取，不做登录
// - Cookie 为空时不发请求，直接视为无结果
type Provider struct {
	site   source.Descriptor
	client *resty.Client
}

// New 根据站点注册表中的描述创建来源
func New(site source.Descriptor, opts source.HTTPOptions) *Provider {
	if strings.TrimSpace(site.UserAgent) != "" {
		opts.UserAgent = site.UserAgent
	}
	return &Provider{site: site, client: source.NewHTTPClient(opts)}
}

func (p *Provider) Name() string { return p.site.DisplayName() }

// SearchURL 返回搜索页地址（不含查询参数）
func (p *Provider) SearchURL() string {
	path := strings.TrimSpace(p.site.SearchPath)
	if path == "" {
		path = DefaultSearchPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(strings.TrimSpace(p.site.BaseURL), "/") + path
}

// Fetch 请求 <base_url><search_path>?search=<title>，Cookie 通过请求头携带
func (p *Provider) Fetch(ctx context.Context, title string) ([]byte, error) {
	cookie := NormalizeCookie(p.site.Cookie)
	if cookie == "" {
		return nil, source.ErrNoCredential
	}
	return source.Get(ctx, p.client, p.SearchURL(),
		map[string]string{"search": title},
		map[string]string{"Cookie": cookie},
	)
}

// Parse 在搜索结果页中查找文本或 title 属性与标题相同（忽略大小写）的链接。
// 找到时只能确认站点收录了该剧，简介标注来源站点。
func (p *Provider) Parse(title string, body []byte) (source.Record, error) {
	return parse(p.Name(), title, body)
}

func parse(siteName, title string, body []byte) (source.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return source.Record{}, err
	}

	found := false
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if source.SameTitle(a.Text(), title) {
			found = true
			return false
		}
		if attr, ok := a.Attr("title"); ok && source.SameTitle(attr, title) {
			found = true
			return false
		}
		return true
	})
	if !found {
		return source.Record{}, source.ErrNotFound
	}

	return source.Record{
		Title: title,
		Plot:  "来源：" + siteName,
	}, nil
}

// Close 释放底层连接
func (p *Provider) Close() error {
	return p.client.Close()
}

// NormalizeCookie 去掉首尾空白与可能粘贴进来的 "Cookie:" 前缀
func NormalizeCookie(cookie string) string {
	cookie = strings.TrimSpace(cookie)
	if strings.HasPrefix(strings.ToLower(cookie), "cookie:") {
		return strings.TrimSpace(cookie[len("cookie:"):])
	}
	return cookie
}
