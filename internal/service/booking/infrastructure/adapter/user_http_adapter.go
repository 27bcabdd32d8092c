// internal/service/booking/infrastructure/adapter/user_http_adapter.go
package adapter

import (
	"context"
	"fmt"

	"voyago/internal/pkg/apperr"
	"voyago/internal/pkg/httpclient"
)

const userServiceName = "user-service"

// UserHTTPAdapter 通过 HTTP 实现 port.IdentityService。
// 用户不存在时不报 NotFound，而是回答"不合法"：对编排层来说
// 两者都意味着拒绝这次请求。
type UserHTTPAdapter struct {
	client *httpclient.Client
}

func NewUserHTTPAdapter(client *httpclient.Client) *UserHTTPAdapter {
	return &UserHTTPAdapter{client: client}
}

type validateDTO struct {
	Valid bool `json:"valid"`
}

func (a *UserHTTPAdapter) Validate(ctx context.Context, userID uint64) (bool, error) {
	var dto validateDTO
	path := fmt.Sprintf("/users/%d/validate", userID)
	err := a.client.GetJSON(ctx, userServiceName, path, nil, &dto)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return dto.Valid, nil
}
