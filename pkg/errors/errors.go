// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeTimeout      Code = "TIMEOUT"
	CodeRateLimited  Code = "RATE_LIMITED"

	// 时间网格相关
	CodeInvalidTimeGrid     Code = "INVALID_TIME_GRID"
	CodeOutOfHorizon        Code = "OUT_OF_HORIZON"
	CodeMisalignedTimestamp Code = "MISALIGNED_TIMESTAMP"
	CodeIndexOutOfRange     Code = "INDEX_OUT_OF_RANGE"

	// 输入语义相关
	CodeInconsistentStream Code = "INCONSISTENT_STREAM_MAPPING"
	CodeMalformedTemplate  Code = "MALFORMED_TEMPLATE"
	CodeNoEligibleTemplate Code = "NO_ELIGIBLE_TEMPLATE"

	// 求解器相关
	CodeSolverInfeasible Code = "SOLVER_INFEASIBLE"
	CodeSolverUnbounded  Code = "SOLVER_UNBOUNDED"
	CodeSolverError      Code = "SOLVER_ERROR"

	// 数据相关
	CodeDatabaseError  Code = "DATABASE_ERROR"
	CodeValidationFail Code = "VALIDATION_FAILED"
)

// AppError 应用错误
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// codeToHTTPStatus 错误码转HTTP状态码
func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidationFail, CodeInvalidTimeGrid,
		CodeOutOfHorizon, CodeMisalignedTimestamp, CodeIndexOutOfRange,
		CodeInconsistentStream, CodeMalformedTemplate:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeSolverInfeasible, CodeSolverUnbounded, CodeNoEligibleTemplate:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Is 检查错误是否为特定类型
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetHTTPStatus 获取HTTP状态码
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// OutOfHorizon 创建超出规划范围错误
func OutOfHorizon(ts string, startDate string, days int) *AppError {
	return New(CodeOutOfHorizon,
		fmt.Sprintf("时间戳 %s 超出规划范围 [%s, %d天)", ts, startDate, days))
}

// MisalignedTimestamp 创建时间戳未对齐错误
func MisalignedTimestamp(ts string, bucketMinutes int) *AppError {
	return New(CodeMisalignedTimestamp,
		fmt.Sprintf("时间戳 %s 未对齐到 %d 分钟时段边界", ts, bucketMinutes))
}

// IndexOutOfRange 创建下标越界错误
func IndexOutOfRange(what string, idx, limit int) *AppError {
	return New(CodeIndexOutOfRange,
		fmt.Sprintf("%s 下标 %d 超出范围 [0, %d)", what, idx, limit))
}

// InconsistentStream 创建技能组流向冲突错误
func InconsistentStream(skillGroupID, have, got string) *AppError {
	return New(CodeInconsistentStream,
		fmt.Sprintf("技能组 %s 出现两个不同的需求流: %s 与 %s", skillGroupID, have, got))
}

// MalformedTemplate 创建班次模板非法错误
func MalformedTemplate(templateID, reason string) *AppError {
	return New(CodeMalformedTemplate,
		fmt.Sprintf("班次模板 %s 非法: %s", templateID, reason))
}

// InvalidInput 创建输入无效错误
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("字段 '%s' 无效: %s", field, reason))
}

// 预定义错误
var (
	ErrNotFound     = New(CodeNotFound, "资源不存在")
	ErrInvalidInput = New(CodeInvalidInput, "输入参数无效")
	ErrInternal     = New(CodeInternal, "内部错误")
	ErrTimeout      = New(CodeTimeout, "操作超时")
)

// ValidationErrors 验证错误集合
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ValidationError 单个验证错误
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "验证失败"
	}
	return fmt.Sprintf("验证失败: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// Add 添加验证错误
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors 检查是否有错误
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError 转换为 AppError
func (ve *ValidationErrors) ToAppError() *AppError {
	err := New(CodeValidationFail, "验证失败")
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
