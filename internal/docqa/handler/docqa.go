// Package handler 提供文档问答服务的 HTTP 处理器。
package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/internal/docqa/biz"
	utilerrors "github.com/kart-io/docqa/pkg/utils/errors"
	"github.com/kart-io/docqa/pkg/utils/json"
	"github.com/kart-io/docqa/pkg/utils/response"
)

// multipartOverhead 请求体上限在文件大小之外为 multipart 边界和表单字段预留的字节数。
const multipartOverhead = 1 << 20

// ServiceName 服务名，出现在 health 与根路径响应中。
const ServiceName = "docqa"

// DocQAHandler 文档问答 HTTP 处理器。
type DocQAHandler struct {
	service       biz.Service
	maxUploadSize int64
	version       string
}

// NewDocQAHandler 创建处理器。
func NewDocQAHandler(service biz.Service, maxUploadSize int64, version string) *DocQAHandler {
	return &DocQAHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
		version:       version,
	}
}

// UploadResponse 上传成功响应。
type UploadResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
	FileName   string `json:"fileName"`
	Message    string `json:"message"`
	Chunks     int    `json:"chunks"`
}

// DeleteResponse 删除成功响应。
type DeleteResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DocumentID string `json:"documentId"`
}

// HealthResponse 健康检查响应。
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// InfoResponse 根路径服务信息。
type InfoResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Upload 接收 multipart 字段 file（PDF 或 TXT）并入库。
func (h *DocQAHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, h.formFileError(err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Fail(c, utilerrors.ErrDocQAInternal.WithCause(err))
		return
	}
	defer f.Close()

	res, err := h.service.Ingest(c.Request.Context(), &biz.IngestRequest{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Success:    true,
		DocumentID: res.DocumentID,
		FileName:   res.FileName,
		Message:    fmt.Sprintf("Document processed successfully into %d chunks", res.Chunks),
		Chunks:     res.Chunks,
	})
}

func (h *DocQAHandler) formFileError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
		return utilerrors.ErrDocQAFileTooLarge.WithMessagef("file exceeds the %d byte limit", h.maxUploadSize)
	case errors.Is(err, http.ErrMissingFile):
		return utilerrors.ErrDocQAFileMissing
	case errors.Is(err, http.ErrNotMultipart):
		return utilerrors.ErrDocQAFileMissing.WithMessage("request must be multipart/form-data with a file field")
	default:
		return utilerrors.ErrDocQAValidation.WithMessagef("invalid multipart form: %v", err)
	}
}

// Query 回答问题。
func (h *DocQAHandler) Query(c *gin.Context) {
	var req biz.QueryRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			response.Fail(c, utilerrors.ErrDocQAQueryMissing)
			return
		}
		response.Fail(c, utilerrors.ErrDocQAValidation.WithMessagef("invalid JSON body: %v", err))
		return
	}

	res, err := h.service.Query(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// DeleteDocument 删除文档的全部向量，对不存在的文档同样返回成功。
func (h *DocQAHandler) DeleteDocument(c *gin.Context) {
	documentID := strings.TrimSpace(c.Param("documentId"))
	if err := h.service.DeleteDocument(c.Request.Context(), documentID); err != nil {
		response.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{
		Success:    true,
		Message:    "Document deleted successfully",
		DocumentID: documentID,
	})
}

// Stats 返回向量索引统计。
func (h *DocQAHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Health 存活检查，不访问任何外部依赖。
func (h *DocQAHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: ServiceName})
}

// Info 返回服务信息与接口列表，无需认证。
func (h *DocQAHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Service: ServiceName,
		Version: h.version,
		Endpoints: map[string]string{
			"POST /upload":                  "Upload a PDF or TXT document (multipart field \"file\")",
			"POST /query":                   "Ask a question about the uploaded documents",
			"DELETE /documents/:documentId": "Delete every chunk of a document",
			"GET /stats":                    "Vector index statistics",
			"GET /health":                   "Liveness check",
		},
	})
}
