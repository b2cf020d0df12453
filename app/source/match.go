package source

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle 用于标题比较：NFC 归一化、折叠大小写、压缩空白。
// macOS 上的目录名常为 NFD，直接比较会失配。
func NormalizeTitle(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}

// SameTitle 忽略大小写与 Unicode 组合差异比较两个标题
func SameTitle(a, b string) bool {
	a = NormalizeTitle(a)
	return a != "" && a == NormalizeTitle(b)
}
