package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestMakeAndParseCode(t *testing.T) {
	code := MakeCode(ServiceDocQA, CategoryRequest, 3)
	assert.Equal(t, 2101003, code)

	svc, cat, seq := ParseCode(code)
	assert.Equal(t, ServiceDocQA, svc)
	assert.Equal(t, CategoryRequest, cat)
	assert.Equal(t, 3, seq)
	assert.True(t, IsClientError(code))
	assert.False(t, IsServerError(code))
}

func TestErrnoDerivationsKeepIdentity(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ErrDocQAEmbeddingFailed.WithCause(cause).WithMessage("embedding call failed")

	assert.True(t, stderrors.Is(err, ErrDocQAEmbeddingFailed))
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "embedding call failed", err.MessageEN)
	assert.Equal(t, "Embedding service failed", ErrDocQAEmbeddingFailed.MessageEN, "原始错误不应被修改")
	assert.Same(t, cause, err.Cause())
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("ingest: %w", ErrDocQAFileTooLarge)
	assert.Equal(t, ErrDocQAFileTooLarge.Code, FromError(wrapped).Code)

	plain := FromError(stderrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.HTTPStatus())
}

func TestTaxonomyStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *Errno
		http int
	}{
		{"校验错误", ErrDocQAUnsupportedType, http.StatusBadRequest},
		{"缺少凭证", ErrDocQAMissingCredential, http.StatusUnauthorized},
		{"凭证无效", ErrDocQAInvalidCredential, http.StatusForbidden},
		{"上游错误", ErrDocQAGenerationFailed, http.StatusInternalServerError},
		{"内部错误", ErrDocQAInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.http, tt.err.HTTPStatus())
		})
	}
}

func TestIsUpstream(t *testing.T) {
	assert.True(t, IsUpstream(ErrDocQAVectorStoreFailed.WithCause(stderrors.New("x"))))
	assert.False(t, IsUpstream(ErrDocQAValidation))
	assert.False(t, IsUpstream(stderrors.New("plain")))
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(New(ErrDocQAInternal.Code, 500, codes.Internal, "dup", "重复"))
	})
	e, ok := Lookup(ErrDocQAInternal.Code)
	assert.True(t, ok)
	assert.Equal(t, "Document processing failed", e.MessageEN)
}

func TestFormatVerbose(t *testing.T) {
	err := ErrDocQAQueryMissing.WithCause(stderrors.New("empty"))
	s := fmt.Sprintf("%+v", err)
	assert.Contains(t, s, "HTTP 400")
	assert.Contains(t, s, "caused by: empty")
}
