// Board HTTP handlers.
//
// This file exposes the bulletin-board endpoints:
//   - GET  /posts         (view: issue a one-time token, render the board)
//   - POST /posts         (create: consume the token, persist, redirect)
//   - POST /posts/delete  (delete: consume the token, remove, redirect)
//   - GET  /logout        (logout view, always 401)
//
// Every request has already passed through the Identity and Tracking
// middleware, so an authenticated identity and a validated-or-minted tracking
// identity are available from the context. Handlers are transport-thin: they
// parse the wire format, drive the token store and post service, and
// translate results into exactly one HTTP response.
//
// Mutations are token-gated: the token issued by the most recent view must
// accompany the request and is consumed before the store mutation runs. If
// the mutation then fails, the client receives a 500 and must re-view to
// obtain a fresh token; a consumed token is never resurrected. The token
// consumption and the store mutation are not one transaction.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-board-backend/internal/domain"
	"github.com/tbourn/go-board-backend/internal/http/middleware"
	"github.com/tbourn/go-board-backend/internal/http/views"
	"github.com/tbourn/go-board-backend/internal/services"
	"github.com/tbourn/go-board-backend/internal/token"
)

// PostService defines the post lifecycle operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context.
type PostService interface {
	// List returns all posts, most recent first, with display decoding applied.
	List(ctx context.Context) ([]domain.Post, error)
	// Create persists a new post by author, recording the tracking identity.
	Create(ctx context.Context, content, author, trackingID string) (*domain.Post, error)
	// Delete removes a post on behalf of requester (author or admin only).
	Delete(ctx context.Context, id int64, requester string) error
}

// Handlers groups the board endpoints. It depends on abstract contracts to
// keep transport concerns separate from business logic.
type Handlers struct {
	postSvc  PostService
	tokens   token.Store
	renderer views.Renderer
}

// New constructs a Handlers instance bound to the given collaborators.
func New(postSvc PostService, tokens token.Store, renderer views.Renderer) *Handlers {
	return &Handlers{postSvc: postSvc, tokens: tokens, renderer: renderer}
}

// Board dispatches /posts by method: GET views the board, POST submits a new
// post, anything else is a 400 (the wire contract predates 405 handling and
// existing clients depend on it).
func (h *Handlers) Board(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet:
		h.viewBoard(c)
	case http.MethodPost:
		h.createPost(c)
	default:
		fail(c, http.StatusBadRequest, ErrCodeMethodNotAllowed, "unsupported method")
	}
}

// Delete dispatches /posts/delete: only POST is accepted.
func (h *Handlers) Delete(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		fail(c, http.StatusBadRequest, ErrCodeMethodNotAllowed, "unsupported method")
		return
	}
	h.deletePost(c)
}

// Logout renders the logged-out view. The 401 makes the browser drop its
// cached basic-auth credentials on the next visit.
func (h *Handlers) Logout(c *gin.Context) {
	body, err := h.renderer.LogoutPage()
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "render failed")
		return
	}
	c.Data(http.StatusUnauthorized, "text/html; charset=utf-8", []byte(body))
}

// viewBoard issues a fresh one-time token for the viewer, lists the posts,
// and renders the board. Each view invalidates the previously issued token.
func (h *Handlers) viewBoard(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	trackingID := middleware.TrackingIDFrom(c)

	tok, err := h.tokens.Issue(identity)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "token issuance failed")
		return
	}

	posts, err := h.postSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	body, err := h.renderer.PostsPage(views.PostsPage{
		User:         identity,
		OneTimeToken: tok,
		Posts:        posts,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "render failed")
		return
	}

	middleware.LoggerFrom(c).Info().
		Str("identity", identity).
		Str("tracking_id", trackingID).
		Msg("board viewed")

	htmlOK(c, body)
}

// createPost reads the full body, parses the wire format, consumes the
// one-time token, persists the post, and redirects to the board.
func (h *Handlers) createPost(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable request body")
		return
	}
	content, presented, err := parseMutationBody(body, "content")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed request body")
		return
	}

	if !h.tokens.ValidateAndConsume(identity, presented) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid one-time token")
		return
	}

	if _, err := h.postSvc.Create(c.Request.Context(), content, identity, middleware.TrackingIDFrom(c)); err != nil {
		if errors.Is(err, services.ErrEmptyContent) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		// The token is already consumed; the client must re-view for a new one.
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}

	seeOther(c, "/posts")
}

// deletePost reads the full body, parses the target id, consumes the
// one-time token, performs the authorized delete, and redirects.
func (h *Handlers) deletePost(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable request body")
		return
	}
	rawID, presented, err := parseMutationBody(body, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed request body")
		return
	}

	if !h.tokens.ValidateAndConsume(identity, presented) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid one-time token")
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be an integer")
		return
	}

	if err := h.postSvc.Delete(c.Request.Context(), id, identity); err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "post not found")
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "not allowed to delete this post")
		default:
			// Token already consumed; surface the failure, never a silent success.
			fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		}
		return
	}

	middleware.LoggerFrom(c).Info().
		Str("identity", identity).
		Int64("post_id", id).
		Msg("post deleted")

	seeOther(c, "/posts")
}
