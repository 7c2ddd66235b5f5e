// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, adapters implement them.
package ports

import (
	"context"
	"fmt"

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
)

// CorpusSource loads the three corpus documents. Each load is independent of the others.
type CorpusSource interface {
	// LoadPosts returns the full post collection in source order.
	LoadPosts(ctx context.Context) ([]entities.Post, error)

	// LoadComments returns every comment in source order.
	LoadComments(ctx context.Context) ([]entities.Comment, error)

	// LoadIndex returns the precomputed grouped view, or nil when the source has none.
	LoadIndex(ctx context.Context) (*entities.PrecomputedIndex, error)
}

// CorpusWriter persists a converted corpus.
type CorpusWriter interface {
	WriteCorpus(ctx context.Context, posts []entities.Post, comments []entities.Comment, index *entities.PrecomputedIndex) error
}

// ExportReader reads the board's CSV exports.
// Returned text is already stripped of markup; dates are left as exported.
type ExportReader interface {
	ReadPosts(ctx context.Context, path string) ([]entities.Post, error)
	ReadComments(ctx context.Context, path string) ([]entities.Comment, error)
}

// GenerationParams are the knobs passed to the model with every prompt.
type GenerationParams struct {
	Temperature float64
	MaxTokens   int
}

// LLMService is the answering collaborator: it turns an assembled prompt into text.
type LLMService interface {
	// Generate returns the model's answer. An empty string means the provider produced no text.
	Generate(ctx context.Context, prompt entities.Prompt, params GenerationParams) (string, error)
}

// CollaboratorError is a failure reported by the answering collaborator.
type CollaboratorError struct {
	Provider string
	Status   int // HTTP status, 0 when the failure was not a status error
	Message  string
}

func (e *CollaboratorError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)

func (op FileOperation) String() string {
	switch op {
	case FileCreated:
		return "created"
	case FileModified:
		return "modified"
	case FileDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}
