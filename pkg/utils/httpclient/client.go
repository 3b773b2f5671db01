// Package httpclient 提供带重试和链路透传能力的出站 HTTP 客户端。
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kart-io/docqa/pkg/utils/json"
)

// maxErrorBody 错误响应体最多保留的字节数。
const maxErrorBody = 4096

// StatusError 表示下游返回了非 2xx/3xx 状态码。
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.Body)
}

// Client 是 http.Client 的包装。
type Client struct {
	httpClient *http.Client
	maxRetries int
}

// NewClient 创建客户端。maxRetries 为 0 时每个请求只发送一次。
func NewClient(timeout time.Duration, maxRetries int) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}
}

// MaxRetries 返回最大重试次数。
func (c *Client) MaxRetries() int {
	return c.maxRetries
}

// DoRequest 执行请求，仅在网络错误或 5xx 时按 maxRetries 重试。
func (c *Client) DoRequest(req *http.Request) (*http.Response, error) {
	c.injectTraceContext(req)

	var body []byte
	if req.Body != nil && c.maxRetries > 0 {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		_ = req.Body.Close()
		body = b
	}

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			if resp.StatusCode < 500 || i == c.maxRetries {
				return resp, nil
			}
			_ = resp.Body.Close()
			lastErr = &StatusError{StatusCode: resp.StatusCode}
		} else {
			lastErr = err
		}

		if i < c.maxRetries {
			if err := sleep(req.Context(), time.Duration(i+1)*500*time.Millisecond); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// DoJSON 执行请求并将 JSON 响应解码到 v，保证关闭响应体。
func (c *Client) DoJSON(req *http.Request, v interface{}) error {
	resp, err := c.DoRequest(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// PostJSON 序列化 payload 并以 POST 发送，响应解码到 v。
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, payload, v interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, val := range headers {
		req.Header.Set(k, val)
	}
	return c.DoJSON(req, v)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// injectTraceContext 注入 W3C Trace Context 头，无活跃 Span 时为空操作。
func (c *Client) injectTraceContext(req *http.Request) {
	if req == nil {
		return
	}
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
}
