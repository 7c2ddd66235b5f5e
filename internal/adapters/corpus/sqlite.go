package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
)

// SQLiteStore keeps posts and comments in a SQLite database.
// It has no precomputed index; groupings are derived by the corpus index on load.
type SQLiteStore struct {
	mu    sync.RWMutex
	db    *sql.DB
	codec Codec
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string, codec Codec) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/board.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{
		db:    db,
		codec: codec,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables.
// seq preserves export order, which the ranker relies on for ties.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		client_name TEXT NOT NULL,
		writer TEXT NOT NULL,
		subject TEXT NOT NULL,
		content TEXT NOT NULL,
		reg_date TEXT NOT NULL,
		comm_cnt INTEGER NOT NULL DEFAULT 0,
		hit_cnt INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_posts_client ON posts(client_name);
	CREATE TABLE IF NOT EXISTS comments (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		post_id TEXT NOT NULL,
		writer TEXT NOT NULL,
		content TEXT NOT NULL,
		reg_date TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// WriteCorpus replaces the stored corpus in one transaction.
func (s *SQLiteStore) WriteCorpus(ctx context.Context, posts []entities.Post, comments []entities.Comment, _ *entities.PrecomputedIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM comments"); err != nil {
		return fmt.Errorf("clearing comments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM posts"); err != nil {
		return fmt.Errorf("clearing posts: %w", err)
	}

	postStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO posts (id, client_name, writer, subject, content, reg_date, comm_cnt, hit_cnt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer postStmt.Close()

	for _, p := range posts {
		_, err := postStmt.ExecContext(ctx,
			p.ID, p.ClientName, p.Author, p.Subject, p.Body, p.RegDateRaw, p.CommentCount, p.HitCount)
		if err != nil {
			return fmt.Errorf("inserting post %s: %w", p.ID, err)
		}
	}

	commentStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO comments (id, post_id, writer, content, reg_date)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer commentStmt.Close()

	for _, c := range comments {
		_, err := commentStmt.ExecContext(ctx, c.ID, c.PostID, c.Author, c.Body, c.RegDateRaw)
		if err != nil {
			return fmt.Errorf("inserting comment %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// LoadPosts returns every post in insertion order.
func (s *SQLiteStore) LoadPosts(ctx context.Context) ([]entities.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_name, writer, subject, content, reg_date, comm_cnt, hit_cnt
		FROM posts ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	var posts []entities.Post
	for rows.Next() {
		var d postDoc
		var id, regDate string
		var commCnt, hitCnt int
		if err := rows.Scan(&id, &d.Name, &d.Writer, &d.Subject, &d.Content, &regDate, &commCnt, &hitCnt); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		d.ID, d.RegDate, d.CommCnt, d.HitCnt = flexString(id), flexString(regDate), flexInt(commCnt), flexInt(hitCnt)
		posts = append(posts, s.codec.postFromDoc(d))
	}
	return posts, rows.Err()
}

// LoadComments returns every comment in insertion order.
func (s *SQLiteStore) LoadComments(ctx context.Context) ([]entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, writer, content, reg_date FROM comments ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	var comments []entities.Comment
	for rows.Next() {
		var c entities.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.Body, &c.RegDateRaw); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// LoadIndex always reports no precomputed index.
func (s *SQLiteStore) LoadIndex(ctx context.Context) (*entities.PrecomputedIndex, error) {
	return nil, nil
}

// PostCount returns the number of stored posts.
func (s *SQLiteStore) PostCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
