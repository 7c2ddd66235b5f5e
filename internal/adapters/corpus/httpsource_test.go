package corpus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource_Load(t *testing.T) {
	posts, comments, index := sampleCorpus()
	postsJSON, _ := EncodePosts(posts)
	commentsJSON, _ := EncodeComments(comments)
	indexJSON, _ := EncodeIndex(index)

	docs := map[string][]byte{
		"/data/" + PostsFile:    postsJSON,
		"/data/" + CommentsFile: commentsJSON,
		"/data/" + IndexFile:    indexJSON,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		data, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL+"/data/", testCodec())
	ctx := context.Background()

	gotPosts, err := src.LoadPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, gotPosts, 2)

	gotComments, err := src.LoadComments(ctx)
	require.NoError(t, err)
	assert.Len(t, gotComments, 1)

	gotIndex, err := src.LoadIndex(ctx)
	require.NoError(t, err)
	require.NotNil(t, gotIndex)
	assert.Equal(t, []string{"대한물산", "한빛상사"}, gotIndex.ClientNames)
}

func TestHTTPSource_MissingIndex(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	src := NewHTTPSource(server.URL, testCodec())

	idx, err := src.LoadIndex(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, idx)

	_, err = src.LoadPosts(context.Background())
	assert.Error(t, err, "missing posts are an error")
}

func TestHTTPSource_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, testCodec())

	_, err := src.LoadIndex(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestHTTPSource_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := NewHTTPSource(server.URL, testCodec()).LoadComments(context.Background())
	assert.Error(t, err)
}
