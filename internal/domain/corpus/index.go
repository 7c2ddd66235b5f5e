// Package corpus builds the per-request Corpus Index: posts grouped by client name,
// comments grouped by post id, and the ordered set of known client names.
package corpus

import "github.com/0xcro3dile/boardchat/internal/domain/entities"

// Index is an immutable set of views over one post/comment collection.
// It is built at request entry and discarded with the request.
type Index struct {
	posts          []entities.Post
	byClient       map[string][]entities.Post
	commentsByPost map[string][]entities.Comment
	clientNames    []string
}

// Build derives the index views. A non-nil precomputed index supplies the client-name order
// and the grouped views, filtered so that every referenced post exists in posts.
// Comments whose post id is unknown are dropped.
func Build(posts []entities.Post, comments []entities.Comment, pre *entities.PrecomputedIndex) *Index {
	idx := &Index{
		posts:          posts,
		byClient:       make(map[string][]entities.Post),
		commentsByPost: make(map[string][]entities.Comment),
	}

	known := make(map[string]entities.Post, len(posts))
	for _, p := range posts {
		known[p.ID] = p
	}

	if pre != nil && len(pre.Clients) > 0 {
		for name, group := range pre.Clients {
			for _, p := range group {
				if full, ok := known[p.ID]; ok {
					idx.byClient[name] = append(idx.byClient[name], full)
				}
			}
		}
	} else {
		for _, p := range posts {
			idx.byClient[p.ClientName] = append(idx.byClient[p.ClientName], p)
		}
	}

	if pre != nil && len(pre.CommentsByPost) > 0 {
		for postID, group := range pre.CommentsByPost {
			if _, ok := known[postID]; ok {
				idx.commentsByPost[postID] = append(idx.commentsByPost[postID], group...)
			}
		}
	} else {
		for _, c := range comments {
			if _, ok := known[c.PostID]; ok {
				idx.commentsByPost[c.PostID] = append(idx.commentsByPost[c.PostID], c)
			}
		}
	}

	seen := make(map[string]struct{})
	addName := func(name string) {
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		idx.clientNames = append(idx.clientNames, name)
	}
	if pre != nil && len(pre.ClientNames) > 0 {
		for _, name := range pre.ClientNames {
			addName(name)
		}
	} else {
		for _, p := range posts {
			addName(p.ClientName)
		}
	}

	return idx
}

// Posts returns the full post collection in source order.
func (i *Index) Posts() []entities.Post {
	return i.posts
}

// PostsForClient returns the client's posts in source order, or nil for an unknown name.
func (i *Index) PostsForClient(name string) []entities.Post {
	return i.byClient[name]
}

// CommentsForPost returns the comments of a post, or nil when there are none.
func (i *Index) CommentsForPost(id string) []entities.Comment {
	return i.commentsByPost[id]
}

// KnownClientNames returns the client names in index iteration order.
func (i *Index) KnownClientNames() []string {
	return i.clientNames
}
