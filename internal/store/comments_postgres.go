package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commentColumns = `id, post_id, author_id, username, avatar_url, user_profile,
	body, parent_comment_id, reply_ids, created_at, updated_at`

// PostgresCommentStore persists comments in Postgres.
type PostgresCommentStore struct {
	pool *pgxpool.Pool
}

// NewPostgresCommentStore creates a store backed by Postgres.
func NewPostgresCommentStore(pool *pgxpool.Pool) *PostgresCommentStore {
	return &PostgresCommentStore{pool: pool}
}

func (s *PostgresCommentStore) Create(ctx context.Context, c Comment) (Comment, error) {
	const q = `INSERT INTO comments (post_id, author_id, username, avatar_url, user_profile, body, parent_comment_id, reply_ids)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	           RETURNING ` + commentColumns
	row := s.pool.QueryRow(ctx, q, c.PostID, c.AuthorID, c.Username, c.AvatarURL,
		c.UserProfile, c.Text, c.ParentCommentID, c.ReplyIDs)
	return scanComment(row)
}

func (s *PostgresCommentStore) ListTopLevel(ctx context.Context, postID string) ([]Comment, error) {
	const q = `SELECT ` + commentColumns + `
	           FROM comments
	           WHERE post_id = $1 AND parent_comment_id IS NULL
	           ORDER BY created_at DESC, id DESC`
	return s.queryComments(ctx, q, postID)
}

func (s *PostgresCommentStore) ListReplies(ctx context.Context, parentIDs []string) ([]Comment, error) {
	if len(parentIDs) == 0 {
		return []Comment{}, nil
	}
	const q = `SELECT ` + commentColumns + `
	           FROM comments
	           WHERE parent_comment_id = ANY($1)
	           ORDER BY created_at ASC, id ASC`
	return s.queryComments(ctx, q, parentIDs)
}

func (s *PostgresCommentStore) UpdateText(ctx context.Context, commentID, authorID, text string) (Comment, error) {
	const q = `UPDATE comments SET body = $1, updated_at = now()
	           WHERE id = $2 AND author_id = $3
	           RETURNING ` + commentColumns
	row := s.pool.QueryRow(ctx, q, text, commentID, authorID)
	out, err := scanComment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	return out, err
}

func (s *PostgresCommentStore) DeleteOwned(ctx context.Context, commentID, authorID string) (Comment, error) {
	const q = `DELETE FROM comments
	           WHERE id = $1 AND author_id = $2
	           RETURNING ` + commentColumns
	row := s.pool.QueryRow(ctx, q, commentID, authorID)
	out, err := scanComment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	return out, err
}

func (s *PostgresCommentStore) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = ANY($1)`, ids)
	return err
}

func (s *PostgresCommentStore) queryComments(ctx context.Context, q string, args ...any) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Username, &c.AvatarURL,
			&c.UserProfile, &c.Text, &c.ParentCommentID, &c.ReplyIDs, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if c.ReplyIDs == nil {
			c.ReplyIDs = []string{}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Username, &c.AvatarURL,
		&c.UserProfile, &c.Text, &c.ParentCommentID, &c.ReplyIDs, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Comment{}, err
	}
	if c.ReplyIDs == nil {
		c.ReplyIDs = []string{}
	}
	return c, nil
}
