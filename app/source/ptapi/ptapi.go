package ptapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"shortplay-scraper/app/source"

	"resty.dev/v3"
)

// Provider 全局配置的 PT 站点 API，优先于其它来源。
// 请求：GET <api_url>?keyword=<title>，请求头 X-Api-Key: <key>
type Provider struct {
	apiURL string
	apiKey string
	client *resty.Client
}

// New 创建 PT API 来源，地址或密钥为空时返回错误
func New(apiURL, apiKey string, opts source.HTTPOptions) (*Provider, error) {
	apiURL = strings.TrimSpace(apiURL)
	apiKey = strings.TrimSpace(apiKey)
	if apiURL == "" || apiKey == "" {
		return nil, errors.New("PT API 地址与密钥不能为空")
	}
	return &Provider{apiURL: apiURL, apiKey: apiKey, client: source.NewHTTPClient(opts)}, nil
}

func (p *Provider) Name() string { return "PT" }

func (p *Provider) Fetch(ctx context.Context, title string) ([]byte, error) {
	return source.Get(ctx, p.client, p.apiURL,
		map[string]string{"keyword": title},
		map[string]string{"X-Api-Key": p.apiKey, "Accept": "application/json"},
	)
}

type apiResponse struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    []apiItem `json:"data"`
}

type apiItem struct {
	Title  string `json:"title"`
	Plot   string `json:"plot"`
	Poster string `json:"poster"`
}

// Parse 解析 {"code":0,"data":[{"title","plot","poster"}]}，code 非 0 视为错误
func (p *Provider) Parse(title string, body []byte) (source.Record, error) {
	return parse(title, body)
}

func parse(title string, body []byte) (source.Record, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return source.Record{}, fmt.Errorf("解析 PT API 响应失败: %w", err)
	}
	if resp.Code != 0 {
		return source.Record{}, fmt.Errorf("PT API 返回错误 code=%d: %s", resp.Code, resp.Message)
	}

	for _, item := range resp.Data {
		if source.SameTitle(item.Title, title) {
			return source.Record{
				Title:     strings.TrimSpace(item.Title),
				Plot:      strings.TrimSpace(item.Plot),
				PosterURL: strings.TrimSpace(item.Poster),
			}, nil
		}
	}
	return source.Record{}, source.ErrNotFound
}

// Close 释放底层连接
func (p *Provider) Close() error {
	return p.client.Close()
}
