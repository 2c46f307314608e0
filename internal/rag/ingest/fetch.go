package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/internal/customHttpClient"
)

// DocumentRef names one document source plus its caller-supplied metadata.
// Exactly one of URL or S3Key must be set.
type DocumentRef struct {
	URL    string
	S3Key  string
	Source string
	Title  string
	Type   string
}

var ErrNoSource = errors.New("no document source provided")

func (r DocumentRef) Validate() error {
	if r.URL == "" && r.S3Key == "" {
		return ErrNoSource
	}
	return nil
}

// reference returns the string whose suffix selects the extraction path.
func (r DocumentRef) reference() string {
	if r.URL != "" {
		return r.URL
	}
	return r.S3Key
}

// Fetcher resolves a document reference to raw bytes.
type Fetcher interface {
	Fetch(ctx context.Context, ref DocumentRef) ([]byte, error)
}

type httpFetcher struct {
	client          *http.Client
	objectStoreBase string
	bucket          string
}

// NewFetcher resolves document_url references directly and s3_key references
// against the configured S3 compatible endpoint, both over the shared pooled
// HTTP client.
func NewFetcher() Fetcher {
	return &httpFetcher{
		client:          customHttpClient.GetPooledClient(),
		objectStoreBase: config.GetEnv("OBJECT_STORE_ENDPOINT", config.ObjectStoreEndpoint),
		bucket:          config.GetEnv("OBJECT_STORE_BUCKET", config.ObjectStoreBucket),
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, ref DocumentRef) ([]byte, error) {
	target := ref.URL
	if target == "" {
		if f.objectStoreBase == "" {
			return nil, errors.New("s3_key given but no object store endpoint configured")
		}
		target = fmt.Sprintf("%s/%s/%s",
			strings.TrimRight(f.objectStoreBase, "/"), f.bucket, url.PathEscape(ref.S3Key))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building fetch request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching document: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
