package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// CollectionUsers is the namespace used for cache keys and
// cache-invalidation events of this entity.
const CollectionUsers = "users"

type User struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Name      string         `gorm:"size:64;not null" json:"name"`
	Email     string         `gorm:"size:191;index;not null" json:"email"`
	Password  string         `gorm:"size:100;not null" json:"-"`
	Address   *string        `gorm:"size:255" json:"address,omitempty"`
	Gender    *Gender        `gorm:"size:8" json:"gender,omitempty"`
	Phone     string         `gorm:"size:10;not null" json:"phone"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// Sanitized returns a copy safe for read responses. The stored value is a
// bcrypt digest, but it still never leaves the service.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// Filter narrows a single-record lookup. Soft-deleted rows are excluded
// unless WithDeleted is set.
type Filter struct {
	Email       string
	WithDeleted bool
}

// Query narrows listing/counting.
type Query struct {
	Offset      int
	Limit       int
	Search      string // matches email or name
	WithDeleted bool
}

// Patch is a partial update keyed by column name.
type Patch map[string]any

// UserStore is the uniform persistence contract. Implementations must hide
// every backend difference: lookups return (nil, nil) on a miss, Remove is a
// soft delete, and the default scope skips soft-deleted rows.
type UserStore interface {
	FindOne(ctx context.Context, f Filter) (*User, error)
	FindByID(ctx context.Context, id string, withDeleted bool) (*User, error)
	Find(ctx context.Context, q Query) ([]User, error)
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, id string, p Patch) (*User, error)
	Remove(ctx context.Context, id string) (*User, error)
	Count(ctx context.Context, q Query) (int64, error)
}
