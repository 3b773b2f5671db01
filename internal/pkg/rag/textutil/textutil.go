// Package textutil 提供文档问答相关的文本处理工具函数。
package textutil

import (
	"math"
	"strings"
	"unicode/utf8"
)

// DefaultExcerptLen 来源摘录的默认长度（Unicode 字符数）。
const DefaultExcerptLen = 200

// Ellipsis 摘录末尾追加的省略标记。
const Ellipsis = "..."

// CosineSimilarity 计算两个向量的余弦相似度。
// 返回值范围为 [-1, 1]，1 表示完全相同，-1 表示完全相反。
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TruncateString 截断字符串到指定的最大 Unicode 字符数。
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// Excerpt 返回前 maxLen 个字符并追加省略标记，结果最长 maxLen+3 个字符。
func Excerpt(s string, maxLen int) string {
	return TruncateString(s, maxLen) + Ellipsis
}

// CleanText 规范化抽取出的文本：修复非法 UTF-8，统一换行，去掉 NUL 字符。
func CleanText(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	return s
}

// SplitIntoChunks 将文本分割成重叠的块。
// chunkSize 是每个块的大小（Unicode 字符数），overlap 是块之间的重叠大小。
// 长度不超过 chunkSize 的文本恰好返回一个块，空文本返回 nil。
func SplitIntoChunks(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 || text == "" {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	chunks := make([]string, 0, ChunkCount(len(runes), chunkSize, overlap))

	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks
}

// ChunkCount 返回长度为 n 的文本按 SplitIntoChunks 切分后的块数，即 ceil((n-overlap)/(chunkSize-overlap))。
func ChunkCount(n, chunkSize, overlap int) int {
	if n <= 0 || chunkSize <= 0 {
		return 0
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	if n <= chunkSize {
		return 1
	}
	step := chunkSize - overlap
	return (n - overlap + step - 1) / step
}
