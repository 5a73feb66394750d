package goal

import (
	"errors"
	"time"
)

const (
	// DefaultAmount is the goal reported for a year nobody has set.
	DefaultAmount = 12

	MinYear   = 1900
	MaxYear   = 3000
	MinAmount = 1
	MaxAmount = 1000
)

var (
	ErrNotFound      = errors.New("reading goal not found")
	ErrInvalidYear   = errors.New("year must be between 1900 and 3000")
	ErrInvalidAmount = errors.New("amount must be between 1 and 1000")
)

// Goal is the number of books to read in a calendar year.
type Goal struct {
	Year      int        `json:"year"`
	Amount    int        `json:"amount"`
	IsDefault bool       `json:"is_default"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Progress reports how far along a year's goal is.
type Progress struct {
	Goal
	Read      int `json:"read"`
	Remaining int `json:"remaining"`
	Percent   int `json:"percent"`
}

func validYear(year int) bool { return year >= MinYear && year <= MaxYear }
