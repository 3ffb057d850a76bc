// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Post model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-board-backend/internal/domain"
)

// CreatePost inserts a new post row. The store assigns the ID and timestamps.
func CreatePost(ctx context.Context, db *gorm.DB, content, postedBy, trackingCookie string) (*domain.Post, error) {
	p := &domain.Post{
		Content:        content,
		PostedBy:       postedBy,
		TrackingCookie: trackingCookie,
		CreatedAt:      time.Now().UTC(),
	}
	return p, db.WithContext(ctx).Create(p).Error
}

// ListPosts returns all posts ordered by ID descending (most recent first).
// Every call re-queries the store; nothing is cached.
func ListPosts(ctx context.Context, db *gorm.DB) ([]domain.Post, error) {
	var out []domain.Post
	err := db.WithContext(ctx).Order("id DESC").Find(&out).Error
	return out, err
}

// GetPost fetches a post by ID.
func GetPost(ctx context.Context, db *gorm.DB, id int64) (*domain.Post, error) {
	var p domain.Post
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePost removes a post row permanently. There is no soft delete for
// posts, so this is a plain hard DELETE.
func DeletePost(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Delete(&domain.Post{}, id).Error
}

// CountPosts uses a raw COUNT so a missing table surfaces as an error.
func CountPosts(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM posts").Scan(&total).Error
	return total, err
}
