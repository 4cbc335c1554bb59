// Package types 定义 HTTP 请求与响应结构.
package types

// MessageResponse 仅包含消息的响应.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse 错误响应.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
