// Package thread builds the nested, author-enriched view of a comment
// forest stored as parent pointers in a flat collection.
package thread

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/comments-service/internal/store"
	"github.com/example/comments-service/internal/users"
)

// EnrichedComment is a stored comment plus its author's live profile and
// its nested replies.
type EnrichedComment struct {
	store.Comment
	User    users.Profile     `json:"user"`
	Replies []EnrichedComment `json:"replies"`
}

type Assembler struct {
	store    store.CommentStore
	resolver users.Resolver
}

func NewAssembler(cs store.CommentStore, resolver users.Resolver) *Assembler {
	return &Assembler{store: cs, resolver: resolver}
}

// ListTopLevel returns the fully nested threads of a post, newest top-level
// comment first. Enrichment is all-or-nothing: one failed author lookup
// fails the whole listing.
func (a *Assembler) ListTopLevel(ctx context.Context, postID, token string) ([]EnrichedComment, error) {
	roots, err := a.store.ListTopLevel(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list top-level comments: %w", err)
	}
	return a.assemble(ctx, roots, token)
}

// Replies returns the nested reply subtree below one comment, oldest reply
// first at every level.
func (a *Assembler) Replies(ctx context.Context, parentID, token string) ([]EnrichedComment, error) {
	replies, err := a.store.ListReplies(ctx, []string{parentID})
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return a.assemble(ctx, replies, token)
}

// assemble walks the forest level by level with an explicit work list, so
// thread depth is bounded by the data, never by the call stack. Replies keep
// the store's chronological order at every level regardless of how the
// author lookups complete.
func (a *Assembler) assemble(ctx context.Context, roots []store.Comment, token string) ([]EnrichedComment, error) {
	levels := [][]store.Comment{roots}
	children := make(map[string][]store.Comment)
	seen := make(map[string]struct{}, len(roots))

	frontier := commentIDs(roots)
	for _, id := range frontier {
		seen[id] = struct{}{}
	}
	for len(frontier) > 0 {
		replies, err := a.store.ListReplies(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("list replies: %w", err)
		}

		var next []store.Comment
		for _, r := range replies {
			if _, ok := seen[r.ID]; ok {
				// corrupt parent cycle; the relation is acyclic by contract
				continue
			}
			seen[r.ID] = struct{}{}
			children[*r.ParentCommentID] = append(children[*r.ParentCommentID], r)
			next = append(next, r)
		}
		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
		frontier = commentIDs(next)
	}

	profiles, err := a.resolveAuthors(ctx, levels, token)
	if err != nil {
		return nil, err
	}

	// Deepest level first: every child is enriched before its parent needs it.
	built := make(map[string]EnrichedComment, len(seen))
	for i := len(levels) - 1; i >= 0; i-- {
		for _, c := range levels[i] {
			node := EnrichedComment{
				Comment: c,
				User:    profiles[c.AuthorID],
				Replies: []EnrichedComment{},
			}
			for _, child := range children[c.ID] {
				node.Replies = append(node.Replies, built[child.ID])
			}
			built[c.ID] = node
		}
	}

	out := make([]EnrichedComment, 0, len(roots))
	for _, r := range roots {
		out = append(out, built[r.ID])
	}
	return out, nil
}

// resolveAuthors fetches each distinct author once, concurrently. Results
// land in index-addressed slots so completion order never matters.
func (a *Assembler) resolveAuthors(ctx context.Context, levels [][]store.Comment, token string) (map[string]users.Profile, error) {
	var authors []string
	index := make(map[string]int)
	for _, level := range levels {
		for _, c := range level {
			if _, ok := index[c.AuthorID]; !ok {
				index[c.AuthorID] = len(authors)
				authors = append(authors, c.AuthorID)
			}
		}
	}
	if len(authors) == 0 {
		return map[string]users.Profile{}, nil
	}

	profiles := make([]users.Profile, len(authors))
	errCh := make(chan error, len(authors))
	var wg sync.WaitGroup
	for i, id := range authors {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			p, err := a.resolver.Resolve(ctx, id, token)
			if err != nil {
				errCh <- err
				return
			}
			profiles[i] = p
		}(i, id)
	}
	wg.Wait()
	close(errCh)
	if len(errCh) > 0 {
		return nil, fmt.Errorf("resolve author: %w", <-errCh)
	}

	out := make(map[string]users.Profile, len(authors))
	for id, i := range index {
		out[id] = profiles[i]
	}
	return out, nil
}

func commentIDs(cs []store.Comment) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}
