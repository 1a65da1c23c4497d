package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// CompilationService manages curated event lists.
type CompilationService struct {
	compilations CompilationStore
	events       EventStore
	projector    *Projector
	log          *zap.Logger
	newID        idGen
}

// NewCompilationService constructs a CompilationService.
func NewCompilationService(compilations CompilationStore, events EventStore, projector *Projector, log *zap.Logger) *CompilationService {
	return &CompilationService{
		compilations: compilations,
		events:       events,
		projector:    projector,
		log:          log,
		newID:        newID,
	}
}

// Create adds a compilation. pinned defaults to false.
func (s *CompilationService) Create(ctx context.Context, req model.NewCompilationRequest) (model.CompilationDto, error) {
	if err := req.Validate(); err != nil {
		return model.CompilationDto{}, err
	}
	c := model.Compilation{
		ID:       s.newID(),
		Title:    strings.TrimSpace(req.Title),
		EventIDs: dedupe(req.Events),
	}
	if req.Pinned != nil {
		c.Pinned = *req.Pinned
	}
	if err := s.requireEvents(ctx, c.EventIDs); err != nil {
		return model.CompilationDto{}, err
	}
	if err := s.compilations.Create(ctx, c); err != nil {
		return model.CompilationDto{}, translate(err, "compilation with title="+c.Title)
	}
	return s.one(ctx, c)
}

// Update applies the set fields of req.
func (s *CompilationService) Update(ctx context.Context, id string, req model.UpdateCompilationRequest) (model.CompilationDto, error) {
	if err := req.Validate(); err != nil {
		return model.CompilationDto{}, err
	}
	c, err := s.compilations.GetByID(ctx, id)
	if err != nil {
		return model.CompilationDto{}, translate(err, compilationRef(id))
	}
	if req.Title != nil {
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Pinned != nil {
		c.Pinned = *req.Pinned
	}
	if req.Events != nil {
		c.EventIDs = dedupe(*req.Events)
		if err := s.requireEvents(ctx, c.EventIDs); err != nil {
			return model.CompilationDto{}, err
		}
	}
	if err := s.compilations.Update(ctx, c); err != nil {
		return model.CompilationDto{}, translate(err, "compilation with title="+c.Title)
	}
	return s.one(ctx, c)
}

// Delete removes a compilation.
func (s *CompilationService) Delete(ctx context.Context, id string) error {
	if err := s.compilations.Delete(ctx, id); err != nil {
		return translate(err, compilationRef(id))
	}
	return nil
}

// Get returns one compilation with its events.
func (s *CompilationService) Get(ctx context.Context, id string) (model.CompilationDto, error) {
	c, err := s.compilations.GetByID(ctx, id)
	if err != nil {
		return model.CompilationDto{}, translate(err, compilationRef(id))
	}
	return s.one(ctx, c)
}

// List returns a page of compilations, optionally only pinned or unpinned
// ones. Events of every listed compilation are projected in one pass.
func (s *CompilationService) List(ctx context.Context, pinned *bool, page model.Page) ([]model.CompilationDto, error) {
	compilations, err := s.compilations.List(ctx, pinned, page)
	if err != nil {
		return nil, translate(err, "compilations")
	}
	var ids []string
	for _, c := range compilations {
		ids = append(ids, c.EventIDs...)
	}
	byID, err := s.project(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	out := make([]model.CompilationDto, 0, len(compilations))
	for _, c := range compilations {
		out = append(out, toCompilationDto(c, byID))
	}
	return out, nil
}

func (s *CompilationService) one(ctx context.Context, c model.Compilation) (model.CompilationDto, error) {
	byID, err := s.project(ctx, c.EventIDs)
	if err != nil {
		return model.CompilationDto{}, err
	}
	return toCompilationDto(c, byID), nil
}

func (s *CompilationService) project(ctx context.Context, ids []string) (map[string]model.EventShort, error) {
	byID := make(map[string]model.EventShort, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	events, err := s.events.ListByIDs(ctx, ids)
	if err != nil {
		return nil, translate(err, "compiled events")
	}
	shorts, err := s.projector.Short(ctx, events)
	if err != nil {
		return nil, err
	}
	for _, e := range shorts {
		byID[e.ID] = e
	}
	return byID, nil
}

func (s *CompilationService) requireEvents(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	events, err := s.events.ListByIDs(ctx, ids)
	if err != nil {
		return translate(err, "compiled events")
	}
	found := make(map[string]bool, len(events))
	for _, e := range events {
		found[e.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return apperror.NotFound("%s was not found", eventRef(id))
		}
	}
	return nil
}

// toCompilationDto keeps the compilation's event order.
func toCompilationDto(c model.Compilation, events map[string]model.EventShort) model.CompilationDto {
	dto := model.CompilationDto{
		ID:     c.ID,
		Pinned: c.Pinned,
		Title:  c.Title,
		Events: make([]model.EventShort, 0, len(c.EventIDs)),
	}
	for _, id := range c.EventIDs {
		if e, ok := events[id]; ok {
			dto.Events = append(dto.Events, e)
		}
	}
	return dto
}

func compilationRef(id string) string { return "compilation with id=" + id }

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
