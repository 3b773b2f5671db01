package biz

import (
	"errors"

	utilerrors "github.com/kart-io/docqa/pkg/utils/errors"
	"github.com/kart-io/docqa/pkg/utils/validator"
)

// validateQuery 校验查询请求，query 缺失映射为 ErrDocQAQueryMissing，其余为 ErrDocQAValidation。
func validateQuery(req *QueryRequest) error {
	if req == nil {
		return utilerrors.ErrDocQAQueryMissing
	}

	err := validator.Global().Struct(req)
	if err == nil {
		return nil
	}

	var verrs *validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return utilerrors.ErrDocQAValidation.WithCause(err)
	}
	if verrs.Has("query") {
		return utilerrors.ErrDocQAQueryMissing
	}
	return utilerrors.ErrDocQAValidation.WithMessage(verrs.Error())
}
