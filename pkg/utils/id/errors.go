package id

import "errors"

var (
	// ErrInvalidUUID UUID 格式无效。
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrInvalidULID ULID 格式无效。
	ErrInvalidULID = errors.New("invalid ULID format")
)
