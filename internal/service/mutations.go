// Package service implements the comment mutation operations: create,
// update, and delete with cascading removal of the reply subtree.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/comments-service/internal/events"
	"github.com/example/comments-service/internal/store"
	"github.com/example/comments-service/internal/users"
)

// ErrEmptyText rejects comments with no body.
var ErrEmptyText = errors.New("text is required")

type Mutations struct {
	store    store.CommentStore
	resolver users.Resolver
	events   *events.Publisher
	log      *zap.Logger
}

func NewMutations(cs store.CommentStore, resolver users.Resolver, pub *events.Publisher, log *zap.Logger) *Mutations {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mutations{store: cs, resolver: resolver, events: pub, log: log}
}

// Create resolves the author's profile and persists a new comment carrying
// a snapshot of the display fields. The snapshot is frozen at creation;
// later profile changes upstream do not touch stored comments.
func (m *Mutations) Create(ctx context.Context, postID, authorID, token, text string, parentCommentID *string) (store.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return store.Comment{}, ErrEmptyText
	}

	profile, err := m.resolver.Resolve(ctx, authorID, token)
	if err != nil {
		return store.Comment{}, fmt.Errorf("resolve author: %w", err)
	}

	created, err := m.store.Create(ctx, store.Comment{
		PostID:          postID,
		AuthorID:        authorID,
		Username:        profile.Username,
		AvatarURL:       profile.AvatarURL,
		UserProfile:     profile.ProfileURL,
		Text:            text,
		ParentCommentID: parentCommentID,
		ReplyIDs:        []string{},
	})
	if err != nil {
		return store.Comment{}, fmt.Errorf("create comment: %w", err)
	}

	m.publish(events.SubjectCreated, map[string]any{
		"comment_id": created.ID,
		"post_id":    created.PostID,
		"author_id":  created.AuthorID,
		"parent_id":  created.ParentCommentID,
	})
	return created, nil
}

// Update edits the text of the caller's own comment. A comment that does
// not exist and a comment owned by someone else both come back as
// store.ErrNotFound.
func (m *Mutations) Update(ctx context.Context, commentID, authorID, text string) (store.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return store.Comment{}, ErrEmptyText
	}

	updated, err := m.store.UpdateText(ctx, commentID, authorID, text)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Comment{}, err
		}
		return store.Comment{}, fmt.Errorf("update comment: %w", err)
	}

	m.publish(events.SubjectUpdated, map[string]any{
		"comment_id": updated.ID,
		"author_id":  updated.AuthorID,
	})
	return updated, nil
}

// Delete removes the caller's own comment and then its entire reply
// subtree, whoever wrote the replies. The descendant set is collected
// first and removed in one batch to keep the partial-failure window small;
// there is no rollback if the batch fails after the root is gone.
func (m *Mutations) Delete(ctx context.Context, commentID, authorID string) (store.Comment, error) {
	root, err := m.store.DeleteOwned(ctx, commentID, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Comment{}, err
		}
		return store.Comment{}, fmt.Errorf("delete comment: %w", err)
	}

	descendants, err := m.collectDescendants(ctx, commentID)
	if err != nil {
		return store.Comment{}, fmt.Errorf("collect replies of %s: %w", commentID, err)
	}
	if len(descendants) > 0 {
		if err := m.store.DeleteBatch(ctx, descendants); err != nil {
			return store.Comment{}, fmt.Errorf("cascade delete: %w", err)
		}
	}

	m.publish(events.SubjectDeleted, map[string]any{
		"comment_id": root.ID,
		"post_id":    root.PostID,
		"author_id":  root.AuthorID,
		"cascaded":   len(descendants),
	})
	return root, nil
}

// collectDescendants walks parent->children lookups breadth-first and
// returns every transitive reply id below rootID.
func (m *Mutations) collectDescendants(ctx context.Context, rootID string) ([]string, error) {
	var all []string
	seen := map[string]struct{}{rootID: {}}

	frontier := []string{rootID}
	for len(frontier) > 0 {
		replies, err := m.store.ListReplies(ctx, frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, r := range replies {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			all = append(all, r.ID)
			frontier = append(frontier, r.ID)
		}
	}
	return all, nil
}

func (m *Mutations) publish(subject string, payload map[string]any) {
	if !m.events.Enabled() {
		return
	}
	if _, err := m.events.PublishJSON(subject, payload); err != nil {
		m.log.Warn("event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
