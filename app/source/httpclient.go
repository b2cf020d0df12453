package source

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"resty.dev/v3"
)

const (
	DefaultTimeout  = 15 * time.Second
	defaultRetryMax = 2
)

// HTTPOptions 站点客户端的网络策略
type HTTPOptions struct {
	Timeout   time.Duration
	Proxy     string
	UserAgent string // 为空时随机选一个浏览器 UA
	RetryMax  int    // 0 使用默认值，负数关闭重试
}

// NewHTTPClient 构造带超时、有界重试与可选代理的 resty 客户端。
func NewHTTPClient(opts HTTPOptions) *resty.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retry := opts.RetryMax
	switch {
	case retry == 0:
		retry = defaultRetryMax
	case retry < 0:
		retry = 0
	}

	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retry).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second)

	if p := strings.TrimSpace(opts.Proxy); p != "" {
		c.SetProxy(p)
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = randomUA()
	}
	c.SetHeader("User-Agent", ua)
	return c
}

// Get 发起 GET 请求并返回 2xx 响应体，其余状态码返回 *HTTPStatusError。
func Get(ctx context.Context, c *resty.Client, url string, query, headers map[string]string) ([]byte, error) {
	req := c.R().SetContext(ctx).SetQueryParams(query)
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, &HTTPStatusError{URL: url, StatusCode: code}
	}
	return resp.Bytes(), nil
}

var (
	uaMu  sync.Mutex
	uaRnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	uas   = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	}
)

func randomUA() string {
	uaMu.Lock()
	defer uaMu.Unlock()
	return uas[uaRnd.Intn(len(uas))]
}
