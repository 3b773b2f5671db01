// Package docutil 提供上传文件落盘与文本抽取工具。
package docutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/kart-io/docqa/internal/pkg/rag/textutil"
)

// 支持的 MIME 类型。
const (
	MIMEPDF  = "application/pdf"
	MIMEText = "text/plain"
)

// ErrTooLarge 写入字节数超过上限。
var ErrTooLarge = errors.New("file exceeds size limit")

// ErrUnsupportedType 不支持的文件类型。
var ErrUnsupportedType = errors.New("unsupported file type")

// Segment 一段抽取出的文本及其来源元数据。
type Segment struct {
	Text     string
	Metadata map[string]any
}

// NormalizeMIME 去掉参数部分并转小写，如 "text/plain; charset=utf-8" -> "text/plain"。
func NormalizeMIME(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// IsSupportedMIME 判断是否为 PDF 或纯文本。
func IsSupportedMIME(contentType string) bool {
	switch NormalizeMIME(contentType) {
	case MIMEPDF, MIMEText:
		return true
	}
	return false
}

// EnsureDir 确保目录存在，如果不存在则创建。
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SaveTemp 将 r 写入 dir 下名为 "<uuid>-<basename>" 的临时文件。
// 写入超过 limit 字节时删除该文件并返回 ErrTooLarge。
func SaveTemp(dir, name string, r io.Reader, limit int64) (string, int64, error) {
	if err := EnsureDir(dir); err != nil {
		return "", 0, fmt.Errorf("create upload dir: %w", err)
	}

	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		base = "upload"
	}
	path := filepath.Join(dir, uuid.NewString()+"-"+base)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", n, fmt.Errorf("write temp file: %w", err)
	}
	if n > limit {
		_ = os.Remove(path)
		return "", n, ErrTooLarge
	}

	return path, n, nil
}

// RemoveFile 删除文件，文件不存在不算错误。
func RemoveFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ExtractFile 按 MIME 类型抽取文件文本。PDF 每页一段，纯文本整体一段。
func ExtractFile(path, contentType string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Extract(data, contentType)
}

// Extract 按 MIME 类型抽取内存中文档的文本。
func Extract(data []byte, contentType string) ([]Segment, error) {
	switch NormalizeMIME(contentType) {
	case MIMEPDF:
		return ExtractPDF(data)
	case MIMEText:
		// 纯文本原样作为一段，只剔除非法 UTF-8 字节
		return []Segment{{
			Text:     strings.ToValidUTF8(string(data), ""),
			Metadata: map[string]any{"source_type": "text"},
		}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
}

// ExtractPDF 逐页抽取 PDF 文本，跳过空白页和无法解析的页。
func ExtractPDF(data []byte) (segments []Segment, err error) {
	// pdf 库在遇到损坏文件时可能 panic
	defer func() {
		if r := recover(); r != nil {
			segments = nil
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	pageCount := reader.NumPage()
	segments = make([]Segment, 0, pageCount)

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, perr := page.GetPlainText(nil)
		if perr != nil {
			continue
		}

		text = strings.TrimSpace(textutil.CleanText(text))
		if text == "" {
			continue
		}

		segments = append(segments, Segment{
			Text: text,
			Metadata: map[string]any{
				"source_type": "pdf",
				"page_number": i,
				"total_pages": pageCount,
			},
		})
	}

	return segments, nil
}

// HasText 判断是否至少有一段非空白文本。
func HasText(segments []Segment) bool {
	for _, s := range segments {
		if strings.TrimSpace(s.Text) != "" {
			return true
		}
	}
	return false
}
