package general

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"shortplay-scraper/app/source"

	"resty.dev/v3"
)

// Site 通用短剧站点
type Site struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	SearchURL string `json:"search_url"`
}

var sites = map[string]Site{
	"hongguo": {Key: "hongguo", Name: "红果短剧", SearchURL: "https://api.hongguo.com/search"},
	"mori":    {Key: "mori", Name: "末日", SearchURL: "https://api.mori.com/search"},
}

// Sites 返回按 key 排序的内置站点列表
func Sites() []Site {
	out := make([]Site, 0, len(sites))
	for _, s := range sites {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Lookup 按 key 查找内置站点
func Lookup(key string) (Site, bool) {
	s, ok := sites[strings.ToLower(strings.TrimSpace(key))]
	return s, ok
}

// Provider 通用站点搜索：GET <search_url>?keyword=<title>
type Provider struct {
	site   Site
	client *resty.Client
}

// New 创建通用站点来源，未知的 key 返回错误
func New(key string, opts source.HTTPOptions) (*Provider, error) {
	site, ok := Lookup(key)
	if !ok {
		return nil, fmt.Errorf("未知的通用站点：%q", key)
	}
	return NewWithSite(site, opts), nil
}

// NewWithSite 使用自定义站点信息创建来源
func NewWithSite(site Site, opts source.HTTPOptions) *Provider {
	return &Provider{site: site, client: source.NewHTTPClient(opts)}
}

func (p *Provider) Name() string { return p.site.Name }

func (p *Provider) Fetch(ctx context.Context, title string) ([]byte, error) {
	return source.Get(ctx, p.client, p.site.SearchURL, map[string]string{"keyword": title}, nil)
}

type searchResponse struct {
	Data []searchItem `json:"data"`
}

type searchItem struct {
	Title string `json:"title"`
	Plot  string `json:"plot"`
	Intro string `json:"intro"`
	Cover string `json:"cover"`
}

// Parse 解析搜索结果 JSON：
//
//	{"data":[{"title":"...","plot":"...","intro":"...","cover":"..."}]}
//
// 取第一个标题与查询相同的条目；plot 为空时使用 intro。
func (p *Provider) Parse(title string, body []byte) (source.Record, error) {
	return parse(title, body)
}

func parse(title string, body []byte) (source.Record, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return source.Record{}, fmt.Errorf("解析搜索结果失败: %w", err)
	}

	for _, item := range resp.Data {
		if !source.SameTitle(item.Title, title) {
			continue
		}
		plot := strings.TrimSpace(item.Plot)
		if plot == "" {
			plot = strings.TrimSpace(item.Intro)
		}
		return source.Record{
			Title:     strings.TrimSpace(item.Title),
			Plot:      plot,
			PosterURL: strings.TrimSpace(item.Cover),
		}, nil
	}
	return source.Record{}, source.ErrNotFound
}

// Close 释放底层连接
func (p *Provider) Close() error {
	return p.client.Close()
}
