// internal/pkg/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
)

// Kind 对错误进行分类，决定传播策略和 HTTP 映射。
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindBusinessRejection // 依赖方明确说"不"，属于正常业务结果
	KindStateConflict
	KindUpstreamUnavailable // 传输层失败，操作结果未知
	KindInconsistency       // 不变量被破坏，必须告警
)

// 跨服务传递的错误码。Facade 依赖这些码把远端错误还原成本地 Kind。
const (
	CodeValidation           = "VALIDATION_FAILED"
	CodeNotFound             = "NOT_FOUND"
	CodeInsufficientCapacity = "INSUFFICIENT_CAPACITY"
	CodeResourceNotBookable  = "RESOURCE_NOT_BOOKABLE"
	CodeStateConflict        = "STATE_CONFLICT"
	CodeUpstreamUnavailable  = "UPSTREAM_UNAVAILABLE"
	CodeCapacityOverflow     = "CAPACITY_OVERFLOW"
	CodeInconsistency        = "INTERNAL_INCONSISTENCY"
	CodeRequesterInvalid     = "REQUESTER_INVALID"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Newf(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(cause error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf 返回错误的分类；非 *Error 一律视为 Unknown。
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// CodeOf 返回错误的跨服务错误码。
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInconsistency
}

// MessageOf 返回适合返回给调用方的描述。
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}

// KindFromCode 把远端返回的错误码还原为本地 Kind。
// 未知的码不能当作业务拒绝处理，归入 Unknown 由调用方兜底。
func KindFromCode(code string) Kind {
	switch code {
	case CodeValidation, CodeRequesterInvalid:
		return KindValidation
	case CodeNotFound:
		return KindNotFound
	case CodeInsufficientCapacity, CodeResourceNotBookable:
		return KindBusinessRejection
	case CodeStateConflict:
		return KindStateConflict
	case CodeUpstreamUnavailable:
		return KindUpstreamUnavailable
	case CodeCapacityOverflow, CodeInconsistency:
		return KindInconsistency
	default:
		return KindUnknown
	}
}
