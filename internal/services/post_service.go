// Package services - PostService
//
// This file implements the PostService, which governs the bulletin-board post
// lifecycle: listing (most recent first, with display decoding), creation
// (content normalization and the empty-content policy), and deletion
// (author-or-admin authorization with explicit not-found and forbidden
// outcomes). Service-level errors (ErrPostNotFound, ErrForbidden,
// ErrEmptyContent) are returned for predictable cases so handlers can map
// them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/go-board-backend/internal/domain"
	"github.com/tbourn/go-board-backend/internal/repo"
)

// AdminIdentity is the reserved privileged identity allowed to delete any post.
const AdminIdentity = "admin"

// displayTimeLayout is the localized display form of post timestamps.
const displayTimeLayout = "2006年01月02日 15時04分05秒"

// PostRepo defines the repository contract required by PostService.
// Implementations are responsible for persistence of post records.
type PostRepo interface {
	// CreatePost inserts a new post row; the store assigns ID and timestamps.
	CreatePost(ctx context.Context, db *gorm.DB, content, postedBy, trackingCookie string) (*domain.Post, error)

	// ListPosts returns all posts ordered by ID descending.
	ListPosts(ctx context.Context, db *gorm.DB) ([]domain.Post, error)

	// GetPost fetches a post by ID.
	GetPost(ctx context.Context, db *gorm.DB, id int64) (*domain.Post, error)

	// DeletePost removes a post row permanently.
	DeletePost(ctx context.Context, db *gorm.DB, id int64) error
}

// PostService provides post lifecycle operations. Reads apply display-layer
// decoding without mutating persisted state; writes normalize content and
// enforce the deletion authorization rule.
type PostService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the post repository used by this service.
	Repo PostRepo

	// Location localizes displayed timestamps. Nil falls back to UTC.
	Location *time.Location
	// AllowEmptyContent accepts posts whose content is empty.
	AllowEmptyContent bool
}

// NewPostService constructs a PostService with the given display timezone
// and empty-content policy.
func NewPostService(db *gorm.DB, r PostRepo, loc *time.Location, allowEmpty bool) *PostService {
	return &PostService{DB: db, Repo: r, Location: loc, AllowEmptyContent: allowEmpty}
}

// List returns all posts, most recent first. Each returned item carries the
// display form of its content ("+" un-escaped to spaces, a leftover of the
// transport encoding) and a timezone-localized FormattedCreatedAt. The store
// is re-queried on every call; nothing is cached and nothing is written back.
func (s *PostService) List(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.Repo.ListPosts(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	for i := range posts {
		posts[i].Content = strings.ReplaceAll(posts[i].Content, "+", " ")
		posts[i].FormattedCreatedAt = posts[i].CreatedAt.In(loc).Format(displayTimeLayout)
	}
	return posts, nil
}

// Create persists a new post authored by author. The visitor's tracking
// identity is recorded for auditing only. Content is NFC-normalized before
// storage so visually identical submissions compare equal.
func (s *PostService) Create(ctx context.Context, content, author, trackingID string) (*domain.Post, error) {
	content = norm.NFC.String(content)
	if content == "" && !s.AllowEmptyContent {
		return nil, ErrEmptyContent
	}
	return s.Repo.CreatePost(ctx, s.DB, content, author, trackingID)
}

// Delete removes the post with the given id on behalf of requester.
// The post must exist (ErrPostNotFound otherwise) and requester must be its
// author or the admin identity (ErrForbidden otherwise). Deletion is
// permanent.
func (s *PostService) Delete(ctx context.Context, id int64, requester string) error {
	p, err := s.Repo.GetPost(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if requester != p.PostedBy && requester != AdminIdentity {
		return ErrForbidden
	}
	return s.Repo.DeletePost(ctx, s.DB, id)
}

// DefaultPostRepo adapts the repository free functions to the PostRepo
// interface. This keeps the service decoupled from the concrete repo package
// while reusing the existing functions.
type DefaultPostRepo struct{}

// CreatePost proxies repo.CreatePost.
func (DefaultPostRepo) CreatePost(ctx context.Context, db *gorm.DB, content, postedBy, trackingCookie string) (*domain.Post, error) {
	return repo.CreatePost(ctx, db, content, postedBy, trackingCookie)
}

// ListPosts proxies repo.ListPosts.
func (DefaultPostRepo) ListPosts(ctx context.Context, db *gorm.DB) ([]domain.Post, error) {
	return repo.ListPosts(ctx, db)
}

// GetPost proxies repo.GetPost.
func (DefaultPostRepo) GetPost(ctx context.Context, db *gorm.DB, id int64) (*domain.Post, error) {
	return repo.GetPost(ctx, db, id)
}

// DeletePost proxies repo.DeletePost.
func (DefaultPostRepo) DeletePost(ctx context.Context, db *gorm.DB, id int64) error {
	return repo.DeletePost(ctx, db, id)
}
