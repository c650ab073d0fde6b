package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/comments-service/internal/platform/api"
	"github.com/example/comments-service/internal/platform/auth"
	"github.com/example/comments-service/internal/service"
	"github.com/example/comments-service/internal/store"
	"github.com/example/comments-service/internal/thread"
)

type createCommentRequest struct {
	Text string `json:"text"`
	// CommentID is the parent comment id when creating a reply.
	CommentID *string `json:"commentID,omitempty"`
}

type updateCommentRequest struct {
	Text string `json:"text"`
}

type listCommentsResponse struct {
	Comments []thread.EnrichedComment `json:"comments"`
}

// ListComments handles GET /posts/{postId}/comments
func ListComments(asm *thread.Assembler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID := strings.TrimSpace(chi.URLParam(r, "postId"))
		if postID == "" {
			api.BadRequest(w, "postId is required")
			return
		}

		token := auth.TokenFromContext(r.Context())
		comments, err := asm.ListTopLevel(r.Context(), postID, token)
		if err != nil {
			api.BadRequest(w, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, listCommentsResponse{Comments: comments})
	}
}

// CreateComment handles POST /posts/{postId}/comments
func CreateComment(m *service.Mutations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "authentication required")
			return
		}

		postID := strings.TrimSpace(chi.URLParam(r, "postId"))
		if postID == "" {
			api.BadRequest(w, "postId is required")
			return
		}

		var req createCommentRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "invalid JSON")
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			api.BadRequest(w, "Text is required")
			return
		}

		token := auth.TokenFromContext(r.Context())
		created, err := m.Create(r.Context(), postID, userID, token, req.Text, req.CommentID)
		if err != nil {
			api.BadRequest(w, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// UpdateComment handles PATCH /comments/{commentId}
func UpdateComment(m *service.Mutations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "authentication required")
			return
		}

		commentID := strings.TrimSpace(chi.URLParam(r, "commentId"))
		if commentID == "" {
			api.BadRequest(w, "commentId is required")
			return
		}

		var req updateCommentRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "invalid JSON")
			return
		}

		updated, err := m.Update(r.Context(), commentID, userID, req.Text)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "Comment not found")
				return
			}
			api.BadRequest(w, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteComment handles DELETE /comments/{commentId}
func DeleteComment(m *service.Mutations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "authentication required")
			return
		}

		commentID := strings.TrimSpace(chi.URLParam(r, "commentId"))
		if commentID == "" {
			api.BadRequest(w, "commentId is required")
			return
		}

		deleted, err := m.Delete(r.Context(), commentID, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "Comment not found")
				return
			}
			api.BadRequest(w, err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, deleted)
	}
}
