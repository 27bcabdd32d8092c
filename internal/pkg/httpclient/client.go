// internal/pkg/httpclient/client.go
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voyago/internal/pkg/apperr"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Resolver 把服务名解析成可访问的 base URL。
type Resolver interface {
	Resolve(serviceName string) (string, error)
}

// StaticResolver 用 config 里的静态表解析服务地址，Nacos 不可用时的兜底。
type StaticResolver map[string]string

func (r StaticResolver) Resolve(serviceName string) (string, error) {
	if base, ok := r[serviceName]; ok {
		return base, nil
	}
	return "", fmt.Errorf("no static address configured for service '%s'", serviceName)
}

// Client 是一个可追踪的 HTTP 客户端，所有跨服务调用都经过它。
// 每次调用都受 timeout 约束；超时或连接失败被归类为 UpstreamUnavailable，
// 即"结果未知"——调用方不得据此推断远端操作未发生。
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
	resolver   Resolver
	timeout    time.Duration
}

// NewClient 创建一个新的客户端实例。
// 不在 http.Client 上设置 Timeout，由每次请求的 context 控制。
func NewClient(tracer trace.Tracer, resolver Resolver, timeout time.Duration) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
	}
	return &Client{
		Tracer:     tracer,
		HTTPClient: httpClient,
		resolver:   resolver,
		timeout:    timeout,
	}
}

// GetJSON 发起 GET 请求并把 2xx 响应体解码到 out。
func (c *Client) GetJSON(ctx context.Context, service, path string, params url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, service, path, params, out)
}

// PostJSON 发起 POST 请求并把 2xx 响应体解码到 out，out 可以为 nil。
func (c *Client) PostJSON(ctx context.Context, service, path string, params url.Values, out interface{}) error {
	return c.do(ctx, http.MethodPost, service, path, params, out)
}

// remoteError 是服务端错误响应的统一格式，与 httpx.WriteError 对应。
type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, service, path string, params url.Values, out interface{}) error {
	base, err := c.resolver.Resolve(service)
	if err != nil {
		return apperr.Wrap(err, apperr.KindUpstreamUnavailable, apperr.CodeUpstreamUnavailable,
			fmt.Sprintf("cannot resolve service %s", service))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	spanName := fmt.Sprintf("call-%s", service)
	ctx, span := c.Tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	target := strings.TrimSuffix(base, "/") + path
	if len(params) > 0 {
		target = target + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		span.RecordError(err)
		return apperr.Wrap(err, apperr.KindUpstreamUnavailable, apperr.CodeUpstreamUnavailable, "build request")
	}

	span.SetAttributes(
		attribute.String("http.url", target),
		attribute.String("http.method", method),
		attribute.String("peer.service", service),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// 传输层失败：远端是否执行了操作无从得知
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return apperr.Wrap(err, apperr.KindUpstreamUnavailable, apperr.CodeUpstreamUnavailable,
			fmt.Sprintf("service %s unreachable", service))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		span.RecordError(err)
		return apperr.Wrap(err, apperr.KindUpstreamUnavailable, apperr.CodeUpstreamUnavailable,
			fmt.Sprintf("reading response from %s", service))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			span.RecordError(err)
			return apperr.Wrap(err, apperr.KindUpstreamUnavailable, apperr.CodeUpstreamUnavailable,
				fmt.Sprintf("malformed response from %s", service))
		}
		return nil
	}

	// 非 2xx：优先按带错误码的业务响应解析，解析不出来才算基础设施故障
	var re remoteError
	if err := json.Unmarshal(body, &re); err == nil && re.Code != "" {
		if kind := apperr.KindFromCode(re.Code); kind != apperr.KindUnknown {
			span.SetStatus(codes.Error, re.Code)
			return apperr.New(kind, re.Code, re.Message)
		}
	}

	err = fmt.Errorf("service %s returned status %s", service, resp.Status)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return apperr.Wrap(err, apperr.KindUpstreamUnavailable, apperr.CodeUpstreamUnavailable,
		fmt.Sprintf("unexpected status from %s", service))
}
