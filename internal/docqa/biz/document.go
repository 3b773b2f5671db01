package biz

import (
	"context"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/docqa/store"
	utilerrors "github.com/kart-io/docqa/pkg/utils/errors"
)

// DeleteDocument 删除 document_id 等于 documentID 的全部向量。
// 不检查文档是否存在，对不存在的 ID 调用同样成功。
func (s *DocQAService) DeleteDocument(ctx context.Context, documentID string) (err error) {
	defer func() { s.metrics.RecordDelete(err) }()

	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return utilerrors.ErrDocQADocumentIDMissing
	}

	if err := s.store.DeleteByFilter(ctx, store.FieldDocumentID, documentID); err != nil {
		logger.Errorw("Document delete failed", "document_id", documentID, "error", err.Error())
		return utilerrors.ErrDocQAVectorStoreFailed.WithCause(err)
	}

	logger.Infow("Document deleted", "document_id", documentID)
	return nil
}

// Stats 透传向量库统计。
func (s *DocQAService) Stats(ctx context.Context) (*store.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		logger.Errorw("Index stats failed", "error", err.Error())
		return nil, utilerrors.ErrDocQAVectorStoreFailed.WithCause(err)
	}
	return stats, nil
}
