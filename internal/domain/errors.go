package domain

import (
	"errors"
	"fmt"
)

const (
	ErrCodeIOFailed       = "io_failed"
	ErrCodeTargetConflict = "target_conflict"
	ErrCodeMoveFailed     = "move_failed"
	ErrCodeCanceled       = "canceled"
	ErrCodeUnsupportedDoc = "unsupported_document"
	ErrCodeInvalidInput   = "invalid_input"
)

// IOError 表示必须存在的文件无法打开/读取/写入。
// 这是唯一会中断整次运行的错误类型；缺失文件与摘要不一致都只是分类结果。
type IOError struct {
	Op   string // "open" | "read" | "write" | "list" | "mkdir" | "move" | "copy"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q 失败：%v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsIOError 判断 err 链上是否有 *IOError。
func IsIOError(err error) bool {
	var e *IOError
	return errors.As(err, &e)
}
