package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// ErrNotCommentAuthor is returned when a user edits someone else's comment.
var ErrNotCommentAuthor = apperror.Forbidden("only the author may modify this comment")

// CommentFilter narrows the administrator's comment search.
type CommentFilter struct {
	Text       string
	Users      []string
	Events     []string
	Comments   []string
	RangeStart *time.Time
	RangeEnd   *time.Time
	Page       model.Page
}

// CommentService manages comments on events.
type CommentService struct {
	comments CommentStore
	events   EventStore
	users    UserStore
	log      *zap.Logger
	now      clock
	newID    idGen
}

// NewCommentService constructs a CommentService.
func NewCommentService(comments CommentStore, events EventStore, users UserStore, log *zap.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		events:   events,
		users:    users,
		log:      log,
		now:      time.Now,
		newID:    newID,
	}
}

// Create adds userID's comment to eventID.
func (s *CommentService) Create(ctx context.Context, userID, eventID string, req model.CommentRequest) (model.Comment, error) {
	if err := req.Validate(); err != nil {
		return model.Comment{}, err
	}
	user, err := requireUser(ctx, s.users, userID)
	if err != nil {
		return model.Comment{}, err
	}
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return model.Comment{}, translate(err, eventRef(eventID))
	}

	now := s.now()
	c := model.Comment{
		ID:         s.newID(),
		Text:       strings.TrimSpace(req.CommentText),
		EventID:    ev.ID,
		EventTitle: ev.Title,
		Author:     user.Short(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return model.Comment{}, translate(err, commentRef(c.ID))
	}
	return c, nil
}

// Get returns one comment.
func (s *CommentService) Get(ctx context.Context, id string) (model.Comment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return model.Comment{}, translate(err, commentRef(id))
	}
	return c, nil
}

// UpdateByAuthor replaces the text of userID's own comment.
func (s *CommentService) UpdateByAuthor(ctx context.Context, userID, commentID string, req model.CommentRequest) (model.Comment, error) {
	if err := req.Validate(); err != nil {
		return model.Comment{}, err
	}
	c, err := s.Get(ctx, commentID)
	if err != nil {
		return model.Comment{}, err
	}
	if c.Author.ID != userID {
		return model.Comment{}, ErrNotCommentAuthor
	}
	return s.setText(ctx, c, req.CommentText)
}

// UpdateByAdmin replaces the text of any comment.
func (s *CommentService) UpdateByAdmin(ctx context.Context, commentID string, req model.CommentRequest) (model.Comment, error) {
	if err := req.Validate(); err != nil {
		return model.Comment{}, err
	}
	c, err := s.Get(ctx, commentID)
	if err != nil {
		return model.Comment{}, err
	}
	return s.setText(ctx, c, req.CommentText)
}

func (s *CommentService) setText(ctx context.Context, c model.Comment, text string) (model.Comment, error) {
	c.Text = strings.TrimSpace(text)
	c.UpdatedAt = s.now()
	if err := s.comments.UpdateText(ctx, c); err != nil {
		return model.Comment{}, translate(err, commentRef(c.ID))
	}
	return c, nil
}

// DeleteByAuthor removes userID's own comment.
func (s *CommentService) DeleteByAuthor(ctx context.Context, userID, commentID string) error {
	c, err := s.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if c.Author.ID != userID {
		return ErrNotCommentAuthor
	}
	return s.DeleteByAdmin(ctx, commentID)
}

// DeleteByAdmin removes any comment.
func (s *CommentService) DeleteByAdmin(ctx context.Context, commentID string) error {
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return translate(err, commentRef(commentID))
	}
	s.log.Info("comment deleted", zap.String("comment_id", commentID))
	return nil
}

// ListByEvent returns an event's comments, oldest first.
func (s *CommentService) ListByEvent(ctx context.Context, eventID string) ([]model.Comment, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, translate(err, eventRef(eventID))
	}
	comments, err := s.comments.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, translate(err, "comments of "+eventRef(eventID))
	}
	return comments, nil
}

// ListByAuthor returns a user's comments, newest first.
func (s *CommentService) ListByAuthor(ctx context.Context, userID string) ([]model.Comment, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, translate(err, "comments of "+userRef(userID))
	}
	return comments, nil
}

// Search lists comments matching f, newest first.
func (s *CommentService) Search(ctx context.Context, f CommentFilter) ([]model.Comment, error) {
	if err := model.ValidateRange(f.RangeStart, f.RangeEnd); err != nil {
		return nil, err
	}
	comments, err := s.comments.Search(ctx, model.CommentQuery{
		Text:       strings.TrimSpace(f.Text),
		Users:      f.Users,
		Events:     f.Events,
		Comments:   f.Comments,
		RangeStart: f.RangeStart,
		RangeEnd:   f.RangeEnd,
		Offset:     f.Page.From,
		Limit:      f.Page.Size,
	})
	if err != nil {
		return nil, translate(err, "comments")
	}
	return comments, nil
}

func commentRef(id string) string { return "comment with id=" + id }
