package util

import (
	"errors"
	"fmt"
)

// InvalidArgumentError 表示调用方传参错误，消息可以直接透出给前端。
// 其余错误一律按内部错误处理：只记日志，不向调用方暴露细节。
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// InvalidArgf 构造一个参数错误。
func InvalidArgf(format string, args ...any) error {
	return &InvalidArgumentError{Message: fmt.Sprintf(format, args...)}
}

// IsInvalidArgument 判断错误链上是否存在参数错误。
func IsInvalidArgument(err error) bool {
	var t *InvalidArgumentError
	return errors.As(err, &t)
}
