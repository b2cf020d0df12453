package nfo

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shortplay-scraper/app/source"
)

// FileName 刮削结果文件名；扫描阶段用它判断目录是否已刮削
const FileName = "movie.nfo"

const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

type movie struct {
	XMLName xml.Name `xml:"movie"`
	Title   string   `xml:"title"`
	Plot    cdata    `xml:"plot"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

// Document 读取到的 NFO 内容
type Document struct {
	XMLName xml.Name `xml:"movie"`
	Title   string   `xml:"title"`
	Plot    string   `xml:"plot"`
}

// WriteError 写入 NFO 失败
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("写入 %s 失败: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Path 返回目录下 NFO 的完整路径
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Exists 目录下是否已有 NFO
func Exists(dir string) bool {
	_, err := os.Stat(Path(dir))
	return err == nil
}

// Encode 生成只含 title 与 plot 两个字段的 NFO。plot 为空时仍输出空元素。
func Encode(rec source.Record) ([]byte, error) {
	m := movie{
		Title: rec.Title,
		Plot:  cdata{Text: rec.Plot},
	}
	b, err := xml.MarshalIndent(m, "", "    ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(header)+len(b)+1)
	out = append(out, header...)
	out = append(out, b...)
	return append(out, '\n'), nil
}

// Write 把 NFO 写入 dir。先写临时文件再 rename，避免留下半个文件被误判为已刮削。
func Write(dir string, rec source.Record) error {
	target := Path(dir)
	if strings.TrimSpace(rec.Title) == "" {
		return &WriteError{Path: target, Err: errors.New("标题为空")}
	}

	b, err := Encode(rec)
	if err != nil {
		return &WriteError{Path: target, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".movie-*.nfo.tmp")
	if err != nil {
		return &WriteError{Path: target, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		cleanup()
		return &WriteError{Path: target, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &WriteError{Path: target, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return &WriteError{Path: target, Err: err}
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return &WriteError{Path: target, Err: err}
	}
	return nil
}

// Read 读取并解析 NFO
func Read(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := xml.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	return doc, nil
}
