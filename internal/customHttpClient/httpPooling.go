package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
)

var (
	once   sync.Once
	client *http.Client
)

// GetPooledClient returns the shared connection-pooled client used for
// document fetches. Idle connections are reused across ingestion runs to
// avoid per-request handshake latency.
func GetPooledClient() *http.Client {
	once.Do(func() {
		client = &http.Client{
			Timeout: config.FetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return client
}
