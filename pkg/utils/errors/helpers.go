package errors

import stderrors "errors"

// FromError 将任意错误转换为 Errno。
// 错误链中存在 Errno 时返回它，否则包装为 ErrInternal。
func FromError(err error) *Errno {
	if err == nil {
		return nil
	}
	var e *Errno
	if stderrors.As(err, &e) {
		return e
	}
	return ErrInternal.WithCause(err)
}

// IsCode 判断错误链中是否存在指定错误码。
func IsCode(err error, code int) bool {
	var e *Errno
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode 返回错误码，非 Errno 时返回 -1。
func GetCode(err error) int {
	var e *Errno
	if stderrors.As(err, &e) {
		return e.Code
	}
	return -1
}
