package httpx

import (
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	client *http.Client
	once   sync.Once
)

// GetClient 带otel埋点的http客户端, 供模型provider与对象存储复用
func GetClient() *http.Client {
	once.Do(func() {
		client = &http.Client{
			Timeout: 5 * time.Minute,
			Transport: otelhttp.NewTransport(&http.Transport{
				MaxIdleConns:        128,
				MaxIdleConnsPerHost: 32,
				IdleConnTimeout:     90 * time.Second,
			}),
		}
	})
	return client
}
