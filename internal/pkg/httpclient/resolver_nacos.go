// internal/pkg/httpclient/resolver_nacos.go
package httpclient

import (
	"fmt"

	"voyago/internal/pkg/nacos"
)

// NacosResolver 优先通过 Nacos 做服务发现，失败时退回静态地址表。
type NacosResolver struct {
	client   *nacos.Client
	fallback StaticResolver
}

func NewNacosResolver(client *nacos.Client, fallback StaticResolver) *NacosResolver {
	return &NacosResolver{client: client, fallback: fallback}
}

func (r *NacosResolver) Resolve(serviceName string) (string, error) {
	if r.client == nil {
		return r.fallback.Resolve(serviceName)
	}
	ip, port, err := r.client.DiscoverServiceInstance(serviceName)
	if err != nil {
		if r.fallback != nil {
			return r.fallback.Resolve(serviceName)
		}
		return "", err
	}
	return fmt.Sprintf("http://%s:%d", ip, port), nil
}
