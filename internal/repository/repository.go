package repository

import (
	"context"
	"time"

	"github.com/studydeck/studydeck-server/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Count returns the total number of registered users.
	Count(ctx context.Context) (int64, error)
}

// FlashcardRepository defines the interface for flashcard set persistence.
type FlashcardRepository interface {
	// Create inserts a new flashcard set into the store.
	Create(ctx context.Context, set *domain.FlashcardSet) error

	// GetByID retrieves a flashcard set by its identifier, with the
	// owner's display name resolved.
	GetByID(ctx context.Context, id string) (*domain.FlashcardSet, error)

	// ListVisible returns all sets with is_hidden=false, owner names
	// resolved, newest first.
	ListVisible(ctx context.Context) ([]domain.FlashcardSet, error)

	// Update persists the set's mutable fields and embedded collections.
	Update(ctx context.Context, set *domain.FlashcardSet) error

	// Delete removes a set and its embedded ratings/reviews.
	Delete(ctx context.Context, id string) error

	// CountCreatedSince returns how many sets the owner created at or
	// after the given instant.
	CountCreatedSince(ctx context.Context, ownerID string, since time.Time) (int64, error)

	// Count returns the total number of flashcard sets.
	Count(ctx context.Context) (int64, error)
}
