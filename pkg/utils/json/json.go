// Package json 提供统一的 JSON 编解码入口。
// amd64/arm64 上使用 sonic，其它架构回退到 encoding/json。
package json

import (
	stdjson "encoding/json"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
)

var (
	// Marshal 将 v 编码为 JSON。
	Marshal func(v interface{}) ([]byte, error)

	// Unmarshal 将 JSON 解码到 v。
	Unmarshal func(data []byte, v interface{}) error

	// NewEncoder 创建写入 w 的编码器。
	NewEncoder func(w io.Writer) Encoder

	// NewDecoder 创建读取 r 的解码器。
	NewDecoder func(r io.Reader) Decoder

	usingSonic bool
)

// Encoder JSON 编码器。
type Encoder interface {
	Encode(v interface{}) error
}

// Decoder JSON 解码器。
type Decoder interface {
	Decode(v interface{}) error
}

func init() {
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		api := sonic.ConfigDefault
		Marshal = api.Marshal
		Unmarshal = api.Unmarshal
		NewEncoder = func(w io.Writer) Encoder { return api.NewEncoder(w) }
		NewDecoder = func(r io.Reader) Decoder { return api.NewDecoder(r) }
		usingSonic = true
		return
	}

	Marshal = stdjson.Marshal
	Unmarshal = stdjson.Unmarshal
	NewEncoder = func(w io.Writer) Encoder { return stdjson.NewEncoder(w) }
	NewDecoder = func(r io.Reader) Decoder { return stdjson.NewDecoder(r) }
}

// MarshalString 编码为字符串，失败时返回空字符串和错误。
func MarshalString(v interface{}) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsUsingSonic 返回当前是否使用 sonic。
func IsUsingSonic() bool {
	return usingSonic
}
