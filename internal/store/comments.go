package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound covers both "no such comment" and "not the author". The two
// are deliberately indistinguishable so callers cannot probe ownership.
var ErrNotFound = errors.New("comment not found")

// Comment is a single stored comment. Username, AvatarURL and UserProfile
// are a snapshot of the author's profile taken at creation time; they are
// never refreshed afterwards.
type Comment struct {
	ID              string    `json:"id"`
	PostID          string    `json:"postId"`
	AuthorID        string    `json:"authorId"`
	Username        string    `json:"username"`
	AvatarURL       string    `json:"avatarUrl"`
	UserProfile     string    `json:"userProfile"`
	Text            string    `json:"text"`
	ParentCommentID *string   `json:"parentCommentId"`
	ReplyIDs        []string  `json:"replyIds"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsReply reports whether the comment is attached to another comment rather
// than directly to its post.
func (c Comment) IsReply() bool { return c.ParentCommentID != nil }

// CommentStore defines the contract for comment persistence.
//
// ListTopLevel returns newest-first; ListReplies returns oldest-first, so a
// thread reads chronologically while fresh top-level comments surface on top.
// UpdateText and DeleteOwned qualify the mutation by author and return
// ErrNotFound when no row matches. DeleteBatch removes rows by id with no
// ownership check; the cascade path uses it for descendants.
type CommentStore interface {
	Create(ctx context.Context, c Comment) (Comment, error)
	ListTopLevel(ctx context.Context, postID string) ([]Comment, error)
	ListReplies(ctx context.Context, parentIDs []string) ([]Comment, error)
	UpdateText(ctx context.Context, commentID, authorID, text string) (Comment, error)
	DeleteOwned(ctx context.Context, commentID, authorID string) (Comment, error)
	DeleteBatch(ctx context.Context, ids []string) error
}
