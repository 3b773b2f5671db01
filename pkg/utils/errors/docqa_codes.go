package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// 文档问答服务错误码，服务代码 21。
var (
	// 请求校验 (类别 01)
	ErrDocQAValidation        = Register(New(MakeCode(ServiceDocQA, CategoryRequest, 0), http.StatusBadRequest, codes.InvalidArgument, "Validation failed", "参数校验失败"))
	ErrDocQAFileMissing       = Register(New(MakeCode(ServiceDocQA, CategoryRequest, 1), http.StatusBadRequest, codes.InvalidArgument, "No file uploaded", "未上传文件"))
	ErrDocQAUnsupportedType   = Register(New(MakeCode(ServiceDocQA, CategoryRequest, 2), http.StatusBadRequest, codes.InvalidArgument, "Unsupported file type", "不支持的文件类型"))
	ErrDocQAFileTooLarge      = Register(New(MakeCode(ServiceDocQA, CategoryRequest, 3), http.StatusBadRequest, codes.InvalidArgument, "File too large", "文件过大"))
	ErrDocQAQueryMissing      = Register(New(MakeCode(ServiceDocQA, CategoryRequest, 4), http.StatusBadRequest, codes.InvalidArgument, "Query is required", "缺少查询内容"))
	ErrDocQADocumentIDMissing = Register(New(MakeCode(ServiceDocQA, CategoryRequest, 5), http.StatusBadRequest, codes.InvalidArgument, "Document ID is required", "缺少文档 ID"))
	ErrDocQANoText            = Register(New(MakeCode(ServiceDocQA, CategoryRequest, 6), http.StatusBadRequest, codes.InvalidArgument, "No extractable text", "文档中没有可提取的文本"))

	// 认证 (类别 02/03)
	ErrDocQAMissingCredential = Register(New(MakeCode(ServiceDocQA, CategoryAuth, 1), http.StatusUnauthorized, codes.Unauthenticated, "Authentication required", "缺少访问凭证"))
	ErrDocQAInvalidCredential = Register(New(MakeCode(ServiceDocQA, CategoryPermission, 1), http.StatusForbidden, codes.PermissionDenied, "Invalid API key", "访问凭证无效"))

	// 上游服务 (类别 10)
	ErrDocQAEmbeddingFailed   = Register(New(MakeCode(ServiceDocQA, CategoryNetwork, 1), http.StatusInternalServerError, codes.Unavailable, "Embedding service failed", "向量化服务调用失败"))
	ErrDocQAVectorStoreFailed = Register(New(MakeCode(ServiceDocQA, CategoryNetwork, 2), http.StatusInternalServerError, codes.Unavailable, "Vector store failed", "向量数据库调用失败"))
	ErrDocQAGenerationFailed  = Register(New(MakeCode(ServiceDocQA, CategoryNetwork, 3), http.StatusInternalServerError, codes.Unavailable, "Answer generation failed", "大模型生成失败"))

	// 内部错误 (类别 07)
	ErrDocQAInternal         = Register(New(MakeCode(ServiceDocQA, CategoryInternal, 1), http.StatusInternalServerError, codes.Internal, "Document processing failed", "文档处理失败"))
	ErrDocQAExtractionFailed = Register(New(MakeCode(ServiceDocQA, CategoryInternal, 2), http.StatusInternalServerError, codes.Internal, "Text extraction failed", "文本提取失败"))
)

// IsUpstream 判断错误是否来自外部服务调用。
func IsUpstream(err error) bool {
	return GetCategory(GetCode(err)) == CategoryNetwork
}
