package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/postsadmin/backend/models"
)

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

// DB returns the underlying database handle. The grid engine builds its own
// windowed queries on top of it.
func (r *PostRepo) DB() *gorm.DB {
	return r.db
}

// FindByID returns a post by its ID, or nil when no row matches.
func (r *PostRepo) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Add inserts a new post into the database
func (r *PostRepo) Add(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Update persists all fields of an existing post
func (r *PostRepo) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// UpdateStatus flips only the status flag. UpdatedAt is bumped by gorm as
// part of the same write.
func (r *PostRepo) UpdateStatus(ctx context.Context, id uint, status bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("post_status", status).Error
}

// Delete removes a post from the database by id
func (r *PostRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

// TitleTaken reports whether another post already uses the given title.
// excludeID skips the row under update; pass 0 on create.
func (r *PostRepo) TitleTaken(ctx context.Context, title string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("post_title = ?", title).
		Where("id <> ?", excludeID).
		Count(&count).Error
	return count > 0, err
}

// DescriptionTaken reports whether another post already uses the given
// description, skipping excludeID.
func (r *PostRepo) DescriptionTaken(ctx context.Context, description string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("post_description = ?", description).
		Where("id <> ?", excludeID).
		Count(&count).Error
	return count > 0, err
}
