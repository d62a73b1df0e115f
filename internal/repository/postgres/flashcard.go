package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/studydeck/studydeck-server/internal/domain"
	"github.com/studydeck/studydeck-server/pkg/database"
	apperrors "github.com/studydeck/studydeck-server/pkg/errors"
)

// FlashcardRepository implements repository.FlashcardRepository using
// PostgreSQL. Each set is stored as one row with its cards, ratings, and
// reviews as JSONB documents, so a save is a single-row write and embedded
// collections live and die with the set.
type FlashcardRepository struct {
	db database.DBTX
}

// NewFlashcardRepository creates a new PostgreSQL-backed flashcard repository.
func NewFlashcardRepository(db database.DBTX) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

// Create inserts a new flashcard set into the database.
func (r *FlashcardRepository) Create(ctx context.Context, s *domain.FlashcardSet) error {
	cards, ratings, reviews, err := marshalCollections(s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO flashcard_sets (id, owner_id, title, description, cards, is_hidden, ratings, reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.Exec(ctx, query,
		s.ID,
		s.OwnerID,
		s.Title,
		s.Description,
		cards,
		s.IsHidden,
		ratings,
		reviews,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert flashcard set: %w", err)
	}

	return nil
}

// GetByID retrieves a flashcard set with the owner's name resolved.
func (r *FlashcardRepository) GetByID(ctx context.Context, id string) (*domain.FlashcardSet, error) {
	query := `
		SELECT f.id, f.owner_id, COALESCE(u.name, ''), f.title, f.description, f.cards, f.is_hidden, f.ratings, f.reviews, f.created_at, f.updated_at
		FROM flashcard_sets f
		LEFT JOIN users u ON u.id = f.owner_id
		WHERE f.id = $1`

	s, err := r.scanSet(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get flashcard set: %w", err)
	}

	return s, nil
}

// ListVisible returns all non-hidden sets with owner names resolved, newest first.
func (r *FlashcardRepository) ListVisible(ctx context.Context) ([]domain.FlashcardSet, error) {
	query := `
		SELECT f.id, f.owner_id, COALESCE(u.name, ''), f.title, f.description, f.cards, f.is_hidden, f.ratings, f.reviews, f.created_at, f.updated_at
		FROM flashcard_sets f
		LEFT JOIN users u ON u.id = f.owner_id
		WHERE f.is_hidden = false
		ORDER BY f.created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list flashcard sets: %w", err)
	}
	defer rows.Close()

	var sets []domain.FlashcardSet
	for rows.Next() {
		s, err := r.scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flashcard set row: %w", err)
		}
		sets = append(sets, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flashcard set rows: %w", err)
	}

	if sets == nil {
		sets = []domain.FlashcardSet{}
	}

	return sets, nil
}

// Update persists the set's mutable fields and embedded collections.
func (r *FlashcardRepository) Update(ctx context.Context, s *domain.FlashcardSet) error {
	s.UpdatedAt = time.Now().UTC()

	cards, ratings, reviews, err := marshalCollections(s)
	if err != nil {
		return err
	}

	query := `
		UPDATE flashcard_sets
		SET title = $1, description = $2, cards = $3, is_hidden = $4, ratings = $5, reviews = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		s.Title,
		s.Description,
		cards,
		s.IsHidden,
		ratings,
		reviews,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("update flashcard set: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("flashcard set", s.ID)
	}

	return nil
}

// Delete removes a set. Embedded ratings and reviews go with the row.
func (r *FlashcardRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM flashcard_sets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete flashcard set: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("flashcard set", id)
	}

	return nil
}

// CountCreatedSince returns how many sets the owner created at or after the given instant.
func (r *FlashcardRepository) CountCreatedSince(ctx context.Context, ownerID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM flashcard_sets WHERE owner_id = $1 AND created_at >= $2`,
		ownerID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count flashcard sets since: %w", err)
	}
	return count, nil
}

// Count returns the total number of flashcard sets.
func (r *FlashcardRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM flashcard_sets`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count flashcard sets: %w", err)
	}
	return count, nil
}

// scanSet reads one flashcard set row, decoding the JSONB collections.
func (r *FlashcardRepository) scanSet(row pgx.Row) (*domain.FlashcardSet, error) {
	var s domain.FlashcardSet
	var cards, ratings, reviews []byte

	err := row.Scan(
		&s.ID,
		&s.OwnerID,
		&s.OwnerName,
		&s.Title,
		&s.Description,
		&cards,
		&s.IsHidden,
		&ratings,
		&reviews,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cards, &s.Cards); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	if err := json.Unmarshal(ratings, &s.Ratings); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}
	if err := json.Unmarshal(reviews, &s.Reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}

	if s.Cards == nil {
		s.Cards = []domain.Card{}
	}
	if s.Ratings == nil {
		s.Ratings = []domain.Rating{}
	}
	if s.Reviews == nil {
		s.Reviews = []domain.Review{}
	}

	return &s, nil
}

// marshalCollections encodes the set's embedded collections for JSONB columns.
// Nil slices encode as empty arrays so columns never hold SQL null.
func marshalCollections(s *domain.FlashcardSet) (cards, ratings, reviews []byte, err error) {
	if cards, err = json.Marshal(orEmpty(s.Cards)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode cards: %w", err)
	}
	if ratings, err = json.Marshal(orEmpty(s.Ratings)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode ratings: %w", err)
	}
	if reviews, err = json.Marshal(orEmpty(s.Reviews)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode reviews: %w", err)
	}
	return cards, ratings, reviews, nil
}

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
