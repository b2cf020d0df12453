package scanner

import (
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shortplay-scraper/app/logger"
	"shortplay-scraper/app/nfo"
)

// Candidate 监控目录下的一级子目录，视为一部短剧
type Candidate struct {
	Root string
	Name string
	Path string
}

// SkipReason 候选被跳过的原因
type SkipReason string

const (
	SkipNone     SkipReason = ""
	SkipExcluded SkipReason = "excluded" // 目录名包含排除关键词
	SkipScraped  SkipReason = "scraped"  // 已存在 NFO
)

// Scanner 枚举监控目录。没有游标状态，每次调用都会重新读取磁盘。
type Scanner struct {
	roots    []string
	keywords []string
	log      *logger.Logger
}

// New roots 与 keywords 通常来自 ParseRoots / ParseKeywords，log 为 nil 时不输出
func New(roots, keywords []string, log *logger.Logger) *Scanner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scanner{roots: roots, keywords: keywords, log: log}
}

// Roots 返回监控目录列表
func (s *Scanner) Roots() []string { return s.roots }

// ParseRoots 按行拆分监控目录，去掉空行与首尾空白
func ParseRoots(s string) []string {
	return splitClean(strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n"))
}

// ParseKeywords 按逗号拆分排除关键词，兼容全角逗号
func ParseKeywords(s string) []string {
	s = strings.ReplaceAll(s, "，", ",")
	return splitClean(strings.Split(s, ","))
}

func splitClean(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Excluded 目录名是否包含任一排除关键词（区分大小写的子串匹配）
func (s *Scanner) Excluded(name string) bool {
	for _, kw := range s.keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Walk 依次回调每个一级子目录及其跳过原因；fn 返回 false 时提前结束。
//
// 规则：
// - 不存在或不可读的监控目录直接跳过
// - 只看一级子目录，文件与更深层目录忽略
// - 同一监控目录内按名称排序，保证输出稳定
func (s *Scanner) Walk(fn func(Candidate, SkipReason) bool) {
	for _, root := range s.roots {
		root = filepath.Clean(root)
		entries, err := os.ReadDir(root)
		if err != nil {
			s.log.Debugf("监控目录不可读，跳过: %s, 错误: %v", root, err)
			continue
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, e := range entries {
			if !isDir(root, e) {
				continue
			}
			c := Candidate{Root: root, Name: e.Name(), Path: filepath.Join(root, e.Name())}

			reason := SkipNone
			switch {
			case s.Excluded(c.Name):
				reason = SkipExcluded
			case nfo.Exists(c.Path):
				reason = SkipScraped
			}
			if !fn(c, reason) {
				return
			}
		}
	}
}

// Candidates 只产出需要刮削的候选
func (s *Scanner) Candidates() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		s.Walk(func(c Candidate, reason SkipReason) bool {
			if reason != SkipNone {
				return true
			}
			return yield(c)
		})
	}
}

// isDir 跟随符号链接判断是否为目录
func isDir(root string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(root, e.Name()))
	return err == nil && info.IsDir()
}
