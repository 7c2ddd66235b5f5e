package corpus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
)

// HTTPSource fetches the corpus documents from a static base URL,
// e.g. the data directory of a static site deployment.
type HTTPSource struct {
	baseURL string
	codec   Codec
	client  *http.Client
}

// NewHTTPSource creates an HTTPSource for baseURL.
func NewHTTPSource(baseURL string, codec Codec) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		codec:   codec,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LoadPosts fetches posts.json.
func (s *HTTPSource) LoadPosts(ctx context.Context) ([]entities.Post, error) {
	data, _, err := s.fetch(ctx, PostsFile)
	if err != nil {
		return nil, err
	}
	return s.codec.DecodePosts(data)
}

// LoadComments fetches comments.json.
func (s *HTTPSource) LoadComments(ctx context.Context) ([]entities.Comment, error) {
	data, _, err := s.fetch(ctx, CommentsFile)
	if err != nil {
		return nil, err
	}
	return s.codec.DecodeComments(data)
}

// LoadIndex fetches indexed.json. A 404 means the deployment ships no index.
func (s *HTTPSource) LoadIndex(ctx context.Context) (*entities.PrecomputedIndex, error) {
	data, status, err := s.fetch(ctx, IndexFile)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.codec.DecodeIndex(data)
}

func (s *HTTPSource) fetch(ctx context.Context, name string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+name, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("fetching %s: status %d", name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, resp.StatusCode, nil
}
