package errors

import (
	"errors"
	"fmt"
)

// AppError 应用业务错误
type AppError struct {
	Code    ErrCode // 业务错误码
	Message string  // 错误消息
	cause   error
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误（如果有）
func (e *AppError) Unwrap() error {
	return e.cause
}

// New 创建新的业务错误
func New(code ErrCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf 创建新的业务错误（格式化消息）
func Newf(code ErrCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误为业务错误，保留原因用于日志排查
func Wrap(code ErrCode, err error, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf("%s: %v", message, err),
		cause:   err,
	}
}

// Is 判断错误链上是否存在目标错误，透传标准库 errors.Is，
// 便于调用方比对第三方库的哨兵错误而无需双重导入
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsAppError 判断是否为业务错误
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 获取业务错误，如果不是则返回nil
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// CodeOf 返回错误携带的业务错误码，非业务错误返回 ErrInternalError
func CodeOf(err error) ErrCode {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code
	}
	return ErrInternalError
}

// HasCode 判断错误链上是否携带指定错误码
func HasCode(err error, code ErrCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}
