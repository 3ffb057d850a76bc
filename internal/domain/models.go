// Package domain defines the persistence model for bulletin-board posts.
// The type is mapped with GORM and forms the core data layer of the
// board application.
package domain

import "time"

// Post represents a single bulletin-board entry.
//
// Fields:
//   - ID: store-assigned auto-increment primary key; immutable once assigned.
//   - Content: the posted text, stored exactly as submitted (after transport
//     decoding); display un-escaping happens at read time and never mutates
//     the row.
//   - PostedBy: authenticated identity of the author; immutable once assigned.
//   - TrackingCookie: the visitor's tracking identifier at time of posting.
//     Kept for auditing only, never consulted for authorization.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//
// Posts are hard-deleted: destruction removes the row permanently, so there
// is intentionally no DeletedAt marker.
type Post struct {
	ID             int64     `json:"id"              gorm:"primaryKey;autoIncrement"`
	Content        string    `json:"content"         gorm:"type:text"`
	PostedBy       string    `json:"posted_by"       gorm:"type:varchar(64);not null;index"`
	TrackingCookie string    `json:"tracking_cookie" gorm:"type:varchar(128)"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// FormattedCreatedAt is the timezone-localized display form of CreatedAt.
	// Populated by the service layer on reads; never persisted.
	FormattedCreatedAt string `json:"formatted_created_at,omitempty" gorm:"-"`
}

// TableName returns the database table name for Post.
func (Post) TableName() string { return "posts" }
