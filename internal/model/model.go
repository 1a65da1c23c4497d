// Package model defines the core domain types of the event platform, the
// event lifecycle state machine and the participation-request admission rules.
package model

import (
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
)

// Field length limits for user-supplied text.
const (
	MinTitleLength       = 3
	MaxTitleLength       = 120
	MinAnnotationLength  = 20
	MaxAnnotationLength  = 2000
	MinDescriptionLength = 20
	MaxDescriptionLength = 7000
	MaxCategoryName      = 50
	MaxCompilationTitle  = 50
	MaxCommentLength     = 1000
	MinUserNameLength    = 2
	MaxUserNameLength    = 250
	MinEmailLength       = 6
	MaxEmailLength       = 254
)

// Default page size when the client does not pass one.
const DefaultPageSize = 10

// Category groups events.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is a registered platform user.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserShort is the public view of a user embedded in other resources.
type UserShort struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Short returns the public view of u.
func (u User) Short() UserShort {
	return UserShort{ID: u.ID, Name: u.Name}
}

// Location is where an event takes place.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Compilation is a curated, optionally pinned list of events.
type Compilation struct {
	ID       string
	Title    string
	Pinned   bool
	EventIDs []string
}

// Comment is a user's remark on an event.
type Comment struct {
	ID         string
	Text       string
	EventID    string
	EventTitle string
	Author     UserShort
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Page is an offset/limit window over a listing.
type Page struct {
	From int
	Size int
}

// NewPage validates pagination parameters.
func NewPage(from, size int) (Page, error) {
	if from < 0 {
		return Page{}, apperror.BadRequest("from must not be negative")
	}
	if size <= 0 {
		return Page{}, apperror.BadRequest("size must be positive")
	}
	return Page{From: from, Size: size}, nil
}

// Apply slices items according to the page.
func Apply[T any](p Page, items []T) []T {
	if p.From >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Size < end-p.From {
		end = p.From + p.Size
	}
	return items[p.From:end]
}

// ValidateRange checks an optional [start, end] date filter.
func ValidateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return apperror.BadRequest("rangeStart must not be after rangeEnd")
	}
	return nil
}

func checkLength(field, value string, min, max int) error {
	n := len([]rune(strings.TrimSpace(value)))
	if n < min || n > max {
		return apperror.BadRequest("%s must be between %d and %d characters", field, min, max)
	}
	return nil
}
