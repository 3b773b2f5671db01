package docutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/internal/pkg/rag/docutil"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, docutil.EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// 再次调用应该不会报错
	assert.NoError(t, docutil.EnsureDir(dir))
}

func TestNormalizeMIME(t *testing.T) {
	assert.Equal(t, "text/plain", docutil.NormalizeMIME("text/plain; charset=utf-8"))
	assert.Equal(t, "application/pdf", docutil.NormalizeMIME(" Application/PDF "))
	assert.True(t, docutil.IsSupportedMIME("text/plain; charset=utf-8"))
	assert.False(t, docutil.IsSupportedMIME("image/png"))
	assert.False(t, docutil.IsSupportedMIME(""))
}

func TestSaveTemp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	t.Run("写入成功", func(t *testing.T) {
		path, n, err := docutil.SaveTemp(dir, "notes.txt", strings.NewReader("hello"), 10)
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)
		assert.True(t, strings.HasSuffix(path, "-notes.txt"))
		assert.Equal(t, dir, filepath.Dir(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("恰好等于上限", func(t *testing.T) {
		_, n, err := docutil.SaveTemp(dir, "eq.txt", strings.NewReader("0123456789"), 10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), n)
	})

	t.Run("超过上限被删除", func(t *testing.T) {
		before, _ := os.ReadDir(dir)
		_, _, err := docutil.SaveTemp(dir, "big.txt", strings.NewReader("01234567890"), 10)
		require.True(t, errors.Is(err, docutil.ErrTooLarge))
		after, _ := os.ReadDir(dir)
		assert.Len(t, after, len(before))
	})

	t.Run("路径穿越被剥离", func(t *testing.T) {
		path, _, err := docutil.SaveTemp(dir, "../../etc/passwd", strings.NewReader("x"), 10)
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(path))
		assert.True(t, strings.HasSuffix(path, "-passwd"))
	})
}

func TestRemoveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	require.NoError(t, docutil.RemoveFile(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// 不存在的文件不报错
	assert.NoError(t, docutil.RemoveFile(path))
	assert.NoError(t, docutil.RemoveFile(""))
}

func TestExtract(t *testing.T) {
	t.Run("纯文本原样整体一段", func(t *testing.T) {
		segs, err := docutil.Extract([]byte("line1\r\nline2\rline3\x00"), "text/plain; charset=utf-8")
		require.NoError(t, err)
		require.Len(t, segs, 1)
		assert.Equal(t, "line1\r\nline2\rline3\x00", segs[0].Text)
		assert.Equal(t, "text", segs[0].Metadata["source_type"])
	})

	t.Run("纯文本剔除非法 UTF-8", func(t *testing.T) {
		segs, err := docutil.Extract([]byte("a\xffb"), docutil.MIMEText)
		require.NoError(t, err)
		assert.Equal(t, "ab", segs[0].Text)
	})

	t.Run("不支持的类型", func(t *testing.T) {
		_, err := docutil.Extract([]byte("x"), "image/png")
		assert.True(t, errors.Is(err, docutil.ErrUnsupportedType))
	})

	t.Run("损坏的 PDF", func(t *testing.T) {
		_, err := docutil.Extract([]byte("not a pdf"), docutil.MIMEPDF)
		assert.Error(t, err)
	})
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))

	segs, err := docutil.ExtractFile(path, docutil.MIMEText)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "content", segs[0].Text)

	_, err = docutil.ExtractFile(filepath.Join(t.TempDir(), "missing.txt"), docutil.MIMEText)
	assert.Error(t, err)
}

func TestHasText(t *testing.T) {
	assert.False(t, docutil.HasText(nil))
	assert.False(t, docutil.HasText([]docutil.Segment{{Text: "  \n\t"}}))
	assert.True(t, docutil.HasText([]docutil.Segment{{Text: " "}, {Text: "x"}}))
}
