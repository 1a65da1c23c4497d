package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// CategoryService manages event categories.
type CategoryService struct {
	categories CategoryStore
	events     EventStore
	log        *zap.Logger
	newID      idGen
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(categories CategoryStore, events EventStore, log *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, events: events, log: log, newID: newID}
}

// Create adds a category with a unique name.
func (s *CategoryService) Create(ctx context.Context, req model.CategoryRequest) (model.Category, error) {
	if err := req.Validate(); err != nil {
		return model.Category{}, err
	}
	c := model.Category{ID: s.newID(), Name: strings.TrimSpace(req.Name)}
	if err := s.categories.Create(ctx, c); err != nil {
		return model.Category{}, translate(err, "category with name="+c.Name)
	}
	return c, nil
}

// Rename changes a category's name.
func (s *CategoryService) Rename(ctx context.Context, id string, req model.CategoryRequest) (model.Category, error) {
	if err := req.Validate(); err != nil {
		return model.Category{}, err
	}
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return model.Category{}, translate(err, categoryRef(id))
	}
	c := model.Category{ID: id, Name: strings.TrimSpace(req.Name)}
	if err := s.categories.Update(ctx, c); err != nil {
		return model.Category{}, translate(err, "category with name="+c.Name)
	}
	return c, nil
}

// Delete removes a category no event belongs to.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return translate(err, categoryRef(id))
	}
	used, err := s.events.ExistsByCategory(ctx, id)
	if err != nil {
		return translate(err, categoryRef(id))
	}
	if used {
		return apperror.Conflict("the category is not empty")
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return translate(err, categoryRef(id))
	}
	s.log.Info("category deleted", zap.String("category_id", id))
	return nil
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, id string) (model.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return model.Category{}, translate(err, categoryRef(id))
	}
	return c, nil
}

// List returns a page of categories.
func (s *CategoryService) List(ctx context.Context, page model.Page) ([]model.Category, error) {
	categories, err := s.categories.List(ctx, page)
	if err != nil {
		return nil, translate(err, "categories")
	}
	return categories, nil
}
