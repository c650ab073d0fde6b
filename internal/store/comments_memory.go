package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryCommentStore is a development-only in-memory implementation.
type InMemoryCommentStore struct {
	mu       sync.RWMutex
	comments map[string]Comment // id -> comment
}

func NewInMemoryCommentStore() *InMemoryCommentStore {
	return &InMemoryCommentStore{comments: make(map[string]Comment)}
}

func (s *InMemoryCommentStore) Create(_ context.Context, c Comment) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.New().String()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.ReplyIDs == nil {
		c.ReplyIDs = []string{}
	}
	s.comments[c.ID] = c
	return c, nil
}

func (s *InMemoryCommentStore) ListTopLevel(_ context.Context, postID string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Comment{}
	for _, c := range s.comments {
		if c.PostID == postID && c.ParentCommentID == nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *InMemoryCommentStore) ListReplies(_ context.Context, parentIDs []string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parents := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = struct{}{}
	}

	out := []Comment{}
	for _, c := range s.comments {
		if c.ParentCommentID == nil {
			continue
		}
		if _, ok := parents[*c.ParentCommentID]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *InMemoryCommentStore) UpdateText(_ context.Context, commentID, authorID, text string) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok || c.AuthorID != authorID {
		return Comment{}, ErrNotFound
	}
	c.Text = text
	c.UpdatedAt = time.Now().UTC()
	s.comments[commentID] = c
	return c, nil
}

func (s *InMemoryCommentStore) DeleteOwned(_ context.Context, commentID, authorID string) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok || c.AuthorID != authorID {
		return Comment{}, ErrNotFound
	}
	delete(s.comments, commentID)
	return c, nil
}

func (s *InMemoryCommentStore) DeleteBatch(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.comments, id)
	}
	return nil
}
