// Package id 提供唯一 ID 生成工具。
//
//	docID := id.NewULID()  // 01ARZ3NDEKTSV4RRFFQ69G5FAV，按时间可排序
//	name := id.NewUUID()   // 550e8400-e29b-41d4-a716-446655440000
package id

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator ID 生成器接口。
type Generator interface {
	Generate() string
}

// GeneratorFunc 将普通函数适配为 Generator。
type GeneratorFunc func() string

// Generate implements Generator.
func (f GeneratorFunc) Generate() string { return f() }

// ULIDGenerator 生成 ULID。ulid.Make 使用进程内单调熵源，可并发调用。
var ULIDGenerator Generator = GeneratorFunc(NewULID)

// UUIDGenerator 生成 UUID v4。
var UUIDGenerator Generator = GeneratorFunc(NewUUID)

// NewULID 生成新的 ULID 字符串。
func NewULID() string {
	return ulid.Make().String()
}

// NewUUID 生成新的 UUID v4 字符串。
func NewUUID() string {
	return uuid.NewString()
}

// ValidateULID 校验 ULID 字符串。
func ValidateULID(s string) error {
	if _, err := ulid.ParseStrict(s); err != nil {
		return ErrInvalidULID
	}
	return nil
}

// ValidateUUID 校验 UUID 字符串。
func ValidateUUID(s string) error {
	if _, err := uuid.Parse(s); err != nil {
		return ErrInvalidUUID
	}
	return nil
}
