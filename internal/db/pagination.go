package db

import (
	"context"

	"gorm.io/gorm"

	"github.com/Pavel-Maksimov/Yatube/internal/models"
)

// PostPage holds one bounded page of posts plus the metadata the
// templates need for pagination controls
type PostPage struct {
	Posts      []*models.Post
	Number     int
	TotalPages int
	TotalItems int64
	HasNext    bool
	HasPrev    bool
}

// paginate runs a post query as one bounded page, newest first.
// Out-of-range page numbers clamp to the nearest valid page instead of
// erroring, so a stale pagination link still renders something.
func (r *PostRepository) paginate(ctx context.Context, query *gorm.DB, page, perPage int) (*PostPage, error) {
	if perPage < 1 {
		perPage = 1
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	var posts []*models.Post
	if err := query.Session(&gorm.Session{}).
		Preload("Author").
		Preload("Group").
		Order("pub_date DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	return &PostPage{
		Posts:      posts,
		Number:     page,
		TotalPages: totalPages,
		TotalItems: total,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// PageNumbers returns the page indexes for rendering pagination links
func (p *PostPage) PageNumbers() []int {
	nums := make([]int, p.TotalPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}
