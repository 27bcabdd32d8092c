// internal/pkg/httpx/httpx.go
package httpx

import (
	"encoding/json"
	"net/http"

	"voyago/internal/pkg/apperr"
)

// ErrorBody 是所有服务统一的错误响应格式，Facade 按 code 还原错误分类。
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON 输出 JSON 响应。
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError 按错误分类映射 HTTP 状态码并输出带码的错误体。
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, statusOf(apperr.KindOf(err)), ErrorBody{
		Code:    apperr.CodeOf(err),
		Message: apperr.MessageOf(err),
	})
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindBusinessRejection, apperr.KindStateConflict:
		return http.StatusConflict
	case apperr.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case apperr.KindInconsistency:
		// 不变量被破坏；500 保证不会被当成业务拒绝
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
