package service

import (
	"errors"
	"net/http"

	"github.com/yeisme/dataroom/pkg/rule"
)

// Error 业务错误，携带应返回给客户端的 HTTP 状态码与消息.
type Error struct {
	Status  int
	Message string
	// Fields 校验失败时字段名到错误信息的映射.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// 可供 handler 用 errors.Is 判断的哨兵错误.
var (
	ErrInvalidRole   = errors.New("invalid role")
	ErrNotConfigured = errors.New("service dependencies not configured")
)

func badRequest(msg string) *Error   { return &Error{Status: http.StatusBadRequest, Message: msg} }

// invalid 把请求校验错误转换为 400，首条信息作为 Message.
func invalid(err error) *Error {
	return &Error{Status: http.StatusBadRequest, Message: rule.First(err), Fields: rule.Errors(err)}
}

func unauthorized(msg string) *Error { return &Error{Status: http.StatusUnauthorized, Message: msg} }
func notFound(msg string) *Error     { return &Error{Status: http.StatusNotFound, Message: msg} }
func conflict(msg string) *Error     { return &Error{Status: http.StatusConflict, Message: msg} }

// AsError 提取 *Error，非业务错误返回 nil.
func AsError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}

	return nil
}
