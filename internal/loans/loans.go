// Package loans keeps dojo library loans in memory. Loans are lost on restart.
package loans

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrMissingFields is returned when name or book is empty.
var ErrMissingFields = errors.New("name and book are required")

// Loan is a lent book.
type Loan struct {
	ID   int       `json:"id"`
	Name string    `json:"name"`
	Book string    `json:"book"`
	Date time.Time `json:"date"`
}

// Store is a mutex-guarded, append-only loan list.
type Store struct {
	mu    sync.Mutex
	loans []Loan
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// List returns a copy of all loans in insertion order.
func (s *Store) List() []Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Loan, len(s.loans))
	copy(out, s.loans)
	return out
}

// Add records a loan. IDs are the list length plus one.
func (s *Store) Add(name, book string, now time.Time) (Loan, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(book) == "" {
		return Loan{}, ErrMissingFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	loan := Loan{
		ID:   len(s.loans) + 1,
		Name: name,
		Book: book,
		Date: now.UTC(),
	}
	s.loans = append(s.loans, loan)
	return loan, nil
}
