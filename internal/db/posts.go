package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Pavel-Maksimov/Yatube/internal/models"
)

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// Create persists a new post. The publication date is assigned
// server-side and never changes afterwards.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.PubDate.IsZero() {
		post.PubDate = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

// UpdateContent updates the mutable fields of a post: its text, group
// and image. pub_date and author are left untouched.
func (r *PostRepository) UpdateContent(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Model(post).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
}

// GetByID retrieves a post by ID with author and group preloaded
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetByAuthorAndID retrieves a post by its author and ID, matching the
// /:username/:post_id URL shape
func (r *PostRepository) GetByAuthorAndID(ctx context.Context, authorID, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		Where("author_id = ?", authorID).
		First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListPage returns one page of all posts, newest first
func (r *PostRepository) ListPage(ctx context.Context, page, perPage int) (*PostPage, error) {
	return r.paginate(ctx, r.db.WithContext(ctx).Model(&models.Post{}), page, perPage)
}

// ListByGroupPage returns one page of a group's posts, newest first
func (r *PostRepository) ListByGroupPage(ctx context.Context, groupID int64, page, perPage int) (*PostPage, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{}).Where("group_id = ?", groupID)
	return r.paginate(ctx, query, page, perPage)
}

// ListByAuthorPage returns one page of an author's posts, newest first
func (r *PostRepository) ListByAuthorPage(ctx context.Context, authorID int64, page, perPage int) (*PostPage, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID)
	return r.paginate(ctx, query, page, perPage)
}

// ListFeedPage returns one page of posts authored by anyone the given
// user follows, newest first
func (r *PostRepository) ListFeedPage(ctx context.Context, userID int64, page, perPage int) (*PostPage, error) {
	followed := r.db.Model(&models.Follow{}).
		Select("author_id").
		Where("user_id = ?", userID)
	query := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id IN (?)", followed)
	return r.paginate(ctx, query, page, perPage)
}

// CountByAuthor returns the number of posts by an author
func (r *PostRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// Create persists a new comment with a server-assigned timestamp
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.Created.IsZero() {
		comment.Created = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

// ListByPost retrieves a post's comments, newest first, with authors
// preloaded
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created DESC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
