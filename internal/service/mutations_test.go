package service

import (
	"context"
	"errors"
	"testing"

	"github.com/example/comments-service/internal/store"
	"github.com/example/comments-service/internal/thread"
	"github.com/example/comments-service/internal/users"
)

type stubResolver struct {
	fail    bool
	profile users.Profile
}

func (s *stubResolver) Resolve(_ context.Context, _, token string) (users.Profile, error) {
	if token == "" {
		return users.Profile{}, users.ErrNoToken
	}
	if s.fail {
		return users.Profile{}, errors.New("users service unavailable")
	}
	return s.profile, nil
}

func newMutations(cs store.CommentStore, r users.Resolver) *Mutations {
	return NewMutations(cs, r, nil, nil)
}

func TestCreate_SnapshotsAuthorProfile(t *testing.T) {
	cs := store.NewInMemoryCommentStore()
	m := newMutations(cs, &stubResolver{profile: users.Profile{
		Username: "alice", AvatarURL: "https://cdn/a.png", ProfileURL: "https://users/alice",
	}})

	c, err := m.Create(context.Background(), "p1", "user-a", "tok", "hello", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Username != "alice" || c.AvatarURL != "https://cdn/a.png" || c.UserProfile != "https://users/alice" {
		t.Fatalf("expected snapshot of profile fields, got %+v", c)
	}
	if c.ParentCommentID != nil {
		t.Fatal("expected top-level comment")
	}
	if len(c.ReplyIDs) != 0 {
		t.Fatalf("expected empty replyIds, got %v", c.ReplyIDs)
	}
}

func TestCreate_EmptyText(t *testing.T) {
	cs := store.NewInMemoryCommentStore()
	m := newMutations(cs, &stubResolver{})

	if _, err := m.Create(context.Background(), "p1", "user-a", "tok", "   ", nil); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	out, _ := cs.ListTopLevel(context.Background(), "p1")
	if len(out) != 0 {
		t.Fatal("expected nothing persisted after validation failure")
	}
}

func TestCreate_ResolverDown(t *testing.T) {
	cs := store.NewInMemoryCommentStore()
	m := newMutations(cs, &stubResolver{fail: true})

	if _, err := m.Create(context.Background(), "p1", "user-a", "tok", "hello", nil); err == nil {
		t.Fatal("expected error when resolver is unavailable")
	}
	out, _ := cs.ListTopLevel(context.Background(), "p1")
	if len(out) != 0 {
		t.Fatal("expected nothing persisted after upstream failure")
	}
}

func TestCreate_ReplyRetrievableUnderParent(t *testing.T) {
	cs := store.NewInMemoryCommentStore()
	m := newMutations(cs, &stubResolver{})

	parent, _ := m.Create(context.Background(), "p1", "user-a", "tok", "parent", nil)
	pid := parent.ID
	reply, err := m.Create(context.Background(), "p1", "user-b", "tok", "child", &pid)
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}

	asm := thread.NewAssembler(cs, &stubResolver{})
	out, err := asm.Replies(context.Background(), parent.ID, "tok")
	if err != nil {
		t.Fatalf("replies: %v", err)
	}
	if len(out) != 1 || out[0].ID != reply.ID {
		t.Fatalf("expected reply under parent, got %+v", out)
	}
}

func TestUpdate_RoundTrip(t *testing.T) {
	cs := store.NewInMemoryCommentStore()
	m := newMutations(cs, &stubResolver{})

	c, _ := m.Create(context.Background(), "p1", "user-a", "tok", "hello", nil)
	updated, err := m.Update(context.Background(), c.ID, "user-a", "world")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Text != "world" {
		t.Fatalf("expected 'world', got %q", updated.Text)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected updatedAt > createdAt, got %v / %v", updated.UpdatedAt, updated.CreatedAt)
	}
}

func TestUpdate_NonOwnerIndistinguishableFromMissing(t *testing.T) {
	cs := store.NewInMemoryCommentStore()
	m := newMutations(cs, &stubResolver{})

	c, _ := m.Create(context.Background(), "p1", "user-a", "tok", "original", nil)

	_, errNotOwner := m.Update(context.Background(), c.ID, "user-b", "hacked")
	_, errMissing := m.Update(context.Background(), "4ad90627-0000-0000-0000-000000000000", "user-b", "hacked")
	if !errors.Is(errNotOwner, store.ErrNotFound) || !errors.Is(errMissing, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound in both cases, got %v / %v", errNotOwner, errMissing)
	}

	out, _ := cs.ListTopLevel(context.Background(), "p1")
	if out[0].Text != "original" {
		t.Fatalf("expected text unchanged, got %q", out[0].Text)
	}
}

func TestUpdate_EmptyText(t *testing.T) {
	cs := store.NewInMemoryCommentStore()
	m := newMutations(cs, &stubResolver{})

	c, _ := m.Create(context.Background(), "p1", "user-a", "tok", "original", nil)
	if _, err := m.Update(context.Background(), c.ID, "user-a", ""); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestDelete_CascadesThreeLevelChain(t *testing.T) {
	cs := store.NewInMemoryCommentStore()
	m := newMutations(cs, &stubResolver{})
	ctx := context.Background()

	c, _ := m.Create(ctx, "p1", "user-a", "tok", "C", nil)
	cid := c.ID
	r1, _ := m.Create(ctx, "p1", "user-b", "tok", "R1", &cid)
	r1id := r1.ID
	r2, _ := m.Create(ctx, "p1", "user-c", "tok", "R2", &r1id)

	// Cascade is author-blind below the root: R1 and R2 belong to others.
	got, err := m.Delete(ctx, c.ID, "user-a")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got.ID != c.ID || got.Text != "C" {
		t.Fatalf("expected pre-deletion root record, got %+v", got)
	}

	if out, _ := cs.ListTopLevel(ctx, "p1"); len(out) != 0 {
		t.Fatalf("expected empty post, got %d comments", len(out))
	}
	for _, id := range []string{c.ID, r1.ID, r2.ID} {
		if replies, _ := cs.ListReplies(ctx, []string{id}); len(replies) != 0 {
			t.Fatalf("expected no surviving replies under %s", id)
		}
	}
}

func TestDelete_NonOwnerLeavesTreeIntact(t *testing.T) {
	cs := store.NewInMemoryCommentStore()
	m := newMutations(cs, &stubResolver{})
	ctx := context.Background()

	c, _ := m.Create(ctx, "p1", "user-a", "tok", "C", nil)
	cid := c.ID
	_, _ = m.Create(ctx, "p1", "user-b", "tok", "R1", &cid)

	if _, err := m.Delete(ctx, c.ID, "user-b"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
	if out, _ := cs.ListTopLevel(ctx, "p1"); len(out) != 1 {
		t.Fatal("expected root to survive")
	}
	if replies, _ := cs.ListReplies(ctx, []string{c.ID}); len(replies) != 1 {
		t.Fatal("expected reply to survive")
	}
}

func TestDelete_WideSubtree(t *testing.T) {
	cs := store.NewInMemoryCommentStore()
	m := newMutations(cs, &stubResolver{})
	ctx := context.Background()

	root, _ := m.Create(ctx, "p1", "user-a", "tok", "root", nil)
	rid := root.ID
	for i := 0; i < 4; i++ {
		child, _ := m.Create(ctx, "p1", "user-b", "tok", "child", &rid)
		chid := child.ID
		for j := 0; j < 3; j++ {
			_, _ = m.Create(ctx, "p1", "user-c", "tok", "grandchild", &chid)
		}
	}
	// An unrelated thread must survive the cascade.
	other, _ := m.Create(ctx, "p1", "user-d", "tok", "other", nil)

	if _, err := m.Delete(ctx, root.ID, "user-a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, _ := cs.ListTopLevel(ctx, "p1")
	if len(out) != 1 || out[0].ID != other.ID {
		t.Fatalf("expected only the unrelated thread to survive, got %+v", out)
	}
}
