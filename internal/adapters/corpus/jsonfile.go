package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
)

// FileStore reads and writes the three corpus documents in one directory.
type FileStore struct {
	dir   string
	codec Codec
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string, codec Codec) *FileStore {
	if dir == "" {
		dir = "./data"
	}
	return &FileStore{dir: dir, codec: codec}
}

// Dir returns the store's directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// LoadPosts reads posts.json.
func (s *FileStore) LoadPosts(ctx context.Context) ([]entities.Post, error) {
	data, err := s.read(PostsFile)
	if err != nil {
		return nil, err
	}
	return s.codec.DecodePosts(data)
}

// LoadComments reads comments.json.
func (s *FileStore) LoadComments(ctx context.Context) ([]entities.Comment, error) {
	data, err := s.read(CommentsFile)
	if err != nil {
		return nil, err
	}
	return s.codec.DecodeComments(data)
}

// LoadIndex reads indexed.json. A missing file means the directory has no precomputed index.
func (s *FileStore) LoadIndex(ctx context.Context) (*entities.PrecomputedIndex, error) {
	data, err := s.read(IndexFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.codec.DecodeIndex(data)
}

// WriteCorpus writes all three documents, creating the directory if needed.
func (s *FileStore) WriteCorpus(ctx context.Context, posts []entities.Post, comments []entities.Comment, index *entities.PrecomputedIndex) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}

	postsJSON, err := EncodePosts(posts)
	if err != nil {
		return fmt.Errorf("encoding posts: %w", err)
	}
	commentsJSON, err := EncodeComments(comments)
	if err != nil {
		return fmt.Errorf("encoding comments: %w", err)
	}
	indexJSON, err := EncodeIndex(index)
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	for name, data := range map[string][]byte{
		PostsFile:    postsJSON,
		CommentsFile: commentsJSON,
		IndexFile:    indexJSON,
	} {
		if err := writeFileAtomic(filepath.Join(s.dir, name), data); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// writeFileAtomic writes through a temp file so concurrent readers never see half a document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
