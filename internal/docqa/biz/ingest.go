package biz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/pkg/rag/docutil"
	"github.com/kart-io/docqa/internal/pkg/rag/textutil"
	utilerrors "github.com/kart-io/docqa/pkg/utils/errors"
)

// maxFileNameLen 存储的文件名最大字符数。
const maxFileNameLen = 255

// IngestRequest 一个待处理的上传文件。
type IngestRequest struct {
	// FileName 客户端声明的文件名。
	FileName string
	// ContentType 客户端声明的 MIME 类型。
	ContentType string
	// Size 客户端声明的大小，未知时为 -1。
	Size int64
	// Body 文件内容。
	Body io.Reader
}

// IngestResult 入库结果。
type IngestResult struct {
	DocumentID string
	FileName   string
	Chunks     int
	UploadedAt time.Time
}

// Ingest 校验、落盘、抽取、分块、并发向量化并分批写入向量库。
// 校验失败不会触发任何外部调用；临时文件在所有路径上都会被删除。
func (s *DocQAService) Ingest(ctx context.Context, req *IngestRequest) (res *IngestResult, err error) {
	start := time.Now()
	defer func() {
		chunks := 0
		if res != nil {
			chunks = res.Chunks
		}
		s.metrics.RecordUpload(chunks, time.Since(start), err)
	}()

	if err := s.validateUpload(req); err != nil {
		return nil, err
	}
	fileName := cleanFileName(req.FileName)

	path, _, err := docutil.SaveTemp(s.cfg.UploadDir, fileName, req.Body, s.cfg.MaxUploadSize)
	if err != nil {
		if errors.Is(err, docutil.ErrTooLarge) {
			return nil, s.fileTooLarge()
		}
		return nil, utilerrors.ErrDocQAInternal.WithCause(err)
	}
	defer s.removeTemp(path)

	segments, err := docutil.ExtractFile(path, req.ContentType)
	if err != nil {
		logger.Warnw("Text extraction failed", "file_name", fileName, "error", err.Error())
		return nil, utilerrors.ErrDocQAExtractionFailed.WithCause(err)
	}

	if !docutil.HasText(segments) {
		return nil, utilerrors.ErrDocQANoText.WithMessagef("no extractable text in %s", fileName)
	}

	documentID := s.ids.Generate()
	uploadedAt := s.now().UTC()

	records := s.buildRecords(documentID, fileName, uploadedAt, segments)

	if err := s.embedRecords(ctx, records); err != nil {
		return nil, err
	}

	if err := s.upsertRecords(ctx, documentID, records); err != nil {
		return nil, err
	}

	logger.Infow("Document ingested",
		"document_id", documentID,
		"file_name", fileName,
		"segments", len(segments),
		"chunks", len(records),
		"duration", time.Since(start).String(),
	)

	return &IngestResult{
		DocumentID: documentID,
		FileName:   fileName,
		Chunks:     len(records),
		UploadedAt: uploadedAt,
	}, nil
}

func (s *DocQAService) validateUpload(req *IngestRequest) error {
	if req == nil || req.Body == nil {
		return utilerrors.ErrDocQAFileMissing
	}
	if !docutil.IsSupportedMIME(req.ContentType) {
		return utilerrors.ErrDocQAUnsupportedType.WithMessagef(
			"unsupported file type %q: only %s and %s are accepted",
			req.ContentType, docutil.MIMEPDF, docutil.MIMEText)
	}
	if req.Size > s.cfg.MaxUploadSize {
		return s.fileTooLarge()
	}
	return nil
}

func (s *DocQAService) fileTooLarge() error {
	return utilerrors.ErrDocQAFileTooLarge.WithMessagef("file exceeds the %d byte limit", s.cfg.MaxUploadSize)
}

func (s *DocQAService) removeTemp(path string) {
	if err := docutil.RemoveFile(path); err != nil {
		logger.Warnw("Failed to remove temp upload file", "path", path, "error", err.Error())
	}
}

// buildRecords 按段落顺序分块，跳过空白块，分块序号在文档内连续。
func (s *DocQAService) buildRecords(documentID, fileName string, uploadedAt time.Time, segments []docutil.Segment) []*store.Record {
	ts := uploadedAt.Format(time.RFC3339)
	var records []*store.Record

	for _, seg := range segments {
		meta := SanitizeMetadata(seg.Metadata)
		for _, chunk := range textutil.SplitIntoChunks(seg.Text, s.cfg.ChunkSize, s.cfg.ChunkOverlap) {
			if strings.TrimSpace(chunk) == "" {
				continue
			}
			idx := len(records)
			records = append(records, &store.Record{
				ID:         store.RecordID(documentID, idx),
				DocumentID: documentID,
				FileName:   fileName,
				Text:       chunk,
				ChunkIndex: idx,
				UploadedAt: ts,
				Metadata:   meta,
			})
		}
	}
	return records
}

// embedRecords 在池上对每个分块单独调用向量化，全部完成后返回，任一失败即整体失败。
func (s *DocQAService) embedRecords(ctx context.Context, records []*store.Record) error {
	err := s.pool.ForEach(ctx, len(records), func(ctx context.Context, i int) error {
		start := time.Now()
		vector, err := s.embedder.EmbedSingle(ctx, records[i].Text)
		if err == nil && len(vector) != s.cfg.Dimension {
			err = fmt.Errorf("embedding dimension %d does not match index dimension %d", len(vector), s.cfg.Dimension)
		}
		s.metrics.RecordEmbedCall(time.Since(start), err)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		records[i].Embedding = vector
		return nil
	})
	if err != nil {
		logger.Errorw("Chunk embedding failed",
			"provider", s.embedder.Name(),
			"chunks", len(records),
			"error", err.Error(),
		)
		return utilerrors.ErrDocQAEmbeddingFailed.WithCause(err)
	}
	return nil
}

// upsertRecords 按批顺序写入。中途失败时尽力删除已写入的批次，避免残留半个文档。
func (s *DocQAService) upsertRecords(ctx context.Context, documentID string, records []*store.Record) error {
	batch := s.cfg.UpsertBatchSize
	for start := 0; start < len(records); start += batch {
		end := min(start+batch, len(records))
		if err := s.store.Upsert(ctx, records[start:end]); err != nil {
			logger.Errorw("Vector upsert failed",
				"document_id", documentID,
				"batch_start", start,
				"batch_end", end,
				"error", err.Error(),
			)
			if start > 0 {
				s.rollback(ctx, documentID)
			}
			return utilerrors.ErrDocQAVectorStoreFailed.WithCause(err)
		}
	}
	return nil
}

func (s *DocQAService) rollback(ctx context.Context, documentID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := s.store.DeleteByFilter(ctx, store.FieldDocumentID, documentID); err != nil {
		logger.Warnw("Failed to roll back partially stored document",
			"document_id", documentID,
			"error", err.Error(),
		)
	}
}

func cleanFileName(name string) string {
	name = strings.TrimSpace(filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, `\`, "/"))))
	if name == "/" || name == "." || name == "" {
		name = "upload"
	}
	return textutil.TruncateString(name, maxFileNameLen)
}
