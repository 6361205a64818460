package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-user-service/internal/domain"
)

// Store is the gorm implementation of domain.UserStore. The backend behind
// the *gorm.DB (mysql, postgres, sqlite, memory) is chosen by Open; nothing
// here may branch on it.
type Store struct{ db *gorm.DB }

func New(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) scope(ctx context.Context, withDeleted bool) *gorm.DB {
	tx := s.db.WithContext(ctx)
	if withDeleted {
		tx = tx.Unscoped()
	}
	return tx
}

func (s *Store) FindOne(ctx context.Context, f domain.Filter) (*domain.User, error) {
	tx := s.scope(ctx, f.WithDeleted)
	if f.Email != "" {
		tx = tx.Where("email = ?", f.Email)
	}
	var u domain.User
	err := tx.First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindByID(ctx context.Context, id string, withDeleted bool) (*domain.User, error) {
	var u domain.User
	err := s.scope(ctx, withDeleted).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) query(ctx context.Context, q domain.Query) *gorm.DB {
	tx := s.scope(ctx, q.WithDeleted).Model(&domain.User{})
	if q.Search != "" {
		like := "%" + q.Search + "%"
		tx = tx.Where("email LIKE ? OR name LIKE ?", like, like)
	}
	return tx
}

func (s *Store) Find(ctx context.Context, q domain.Query) ([]domain.User, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var users []domain.User
	err := s.query(ctx, q).
		Order("created_at DESC").
		Offset(q.Offset).
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (s *Store) Insert(ctx context.Context, u *domain.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) Update(ctx context.Context, id string, p domain.Patch) (*domain.User, error) {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any(p))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.FindByID(ctx, id, false)
}

func (s *Store) Remove(ctx context.Context, id string) (*domain.User, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.FindByID(ctx, id, true)
}

func (s *Store) Count(ctx context.Context, q domain.Query) (int64, error) {
	var total int64
	err := s.query(ctx, q).Count(&total).Error
	return total, err
}
