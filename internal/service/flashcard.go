package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studydeck/studydeck-server/internal/domain"
	"github.com/studydeck/studydeck-server/internal/event"
	"github.com/studydeck/studydeck-server/internal/repository"
	apperrors "github.com/studydeck/studydeck-server/pkg/errors"
)

// dailyCreateLimit caps how many sets one user may create per local
// calendar day.
const dailyCreateLimit = 20

// FlashcardService implements the business logic for flashcard set operations.
type FlashcardService struct {
	repo     repository.FlashcardRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewFlashcardService creates a new flashcard service.
func NewFlashcardService(
	repo repository.FlashcardRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *FlashcardService {
	return &FlashcardService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateInput holds the parameters for creating a flashcard set.
type CreateInput struct {
	Title       string
	Description string
	Cards       []domain.Card
	IsHidden    bool
}

// UpdateInput holds a field-presence patch for a flashcard set. A nil
// field is left untouched; a present field overwrites, including
// description="" , cards=[] and is_hidden=false.
type UpdateInput struct {
	Title       *string
	Description *string
	Cards       *[]domain.Card
	IsHidden    *bool
}

// Create makes a new flashcard set for the owner, enforcing the daily
// creation quota. The quota window starts at local midnight, computed at
// call time; the limit-th set of the day succeeds, the next is rejected
// and nothing is persisted.
func (s *FlashcardService) Create(ctx context.Context, ownerID string, input CreateInput) (*domain.FlashcardSet, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if err := validateCards(input.Cards); err != nil {
		return nil, err
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	created, err := s.repo.CountCreatedSince(ctx, ownerID, startOfDay)
	if err != nil {
		return nil, fmt.Errorf("check daily quota: %w", err)
	}
	if created >= dailyCreateLimit {
		return nil, apperrors.QuotaExceeded(fmt.Sprintf("daily limit of %d flashcard sets reached", dailyCreateLimit))
	}

	set := domain.NewFlashcardSet(uuid.New().String(), ownerID, input.Title, input.Description, input.Cards, input.IsHidden)

	if err := s.repo.Create(ctx, set); err != nil {
		return nil, fmt.Errorf("create flashcard set: %w", err)
	}

	// Publish creation event (non-blocking on failure).
	if err := s.producer.PublishFlashcardCreated(ctx, set); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish flashcard.created event",
			slog.String("set_id", set.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "flashcard set created",
		slog.String("set_id", set.ID),
		slog.String("owner_id", ownerID),
		slog.Int("cards", len(set.Cards)),
	)

	return set, nil
}

// List returns all publicly visible sets.
func (s *FlashcardService) List(ctx context.Context) ([]domain.FlashcardSet, error) {
	sets, err := s.repo.ListVisible(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flashcard sets: %w", err)
	}
	return sets, nil
}

// GetByID returns the set with the given id. A malformed id cannot map
// to any identifier and is reported as not found.
func (s *FlashcardService) GetByID(ctx context.Context, id string) (*domain.FlashcardSet, error) {
	return s.load(ctx, id)
}

// Update applies a field-presence patch to a set. Any authenticated
// caller may update any set; ownership is deliberately not checked.
func (s *FlashcardService) Update(ctx context.Context, id string, input UpdateInput) (*domain.FlashcardSet, error) {
	set, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.InvalidInput("title must not be empty")
		}
		set.Title = *input.Title
	}
	if input.Description != nil {
		set.Description = *input.Description
	}
	if input.Cards != nil {
		if err := validateCards(*input.Cards); err != nil {
			return nil, err
		}
		cards := *input.Cards
		if cards == nil {
			cards = []domain.Card{}
		}
		set.Cards = cards
	}
	if input.IsHidden != nil {
		set.IsHidden = *input.IsHidden
	}

	if err := s.repo.Update(ctx, set); err != nil {
		return nil, fmt.Errorf("update flashcard set: %w", err)
	}

	s.logger.InfoContext(ctx, "flashcard set updated",
		slog.String("set_id", set.ID),
	)

	return set, nil
}

// Delete removes a set and everything embedded in it. Ownership is
// deliberately not checked.
func (s *FlashcardService) Delete(ctx context.Context, id string) error {
	set, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, set.ID); err != nil {
		return fmt.Errorf("delete flashcard set: %w", err)
	}

	s.logger.InfoContext(ctx, "flashcard set deleted",
		slog.String("set_id", set.ID),
	)

	return nil
}

// Rate records the user's rating with upsert semantics. The value is
// range-checked before anything is loaded or written.
func (s *FlashcardService) Rate(ctx context.Context, id, userID string, rating int) error {
	if !domain.IsValidRating(rating) {
		return apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	set, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	set.SetRating(userID, rating)

	if err := s.repo.Update(ctx, set); err != nil {
		return fmt.Errorf("save rating: %w", err)
	}

	if err := s.producer.PublishFlashcardRated(ctx, set.ID, userID, rating); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish flashcard.rated event",
			slog.String("set_id", set.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "flashcard set rated",
		slog.String("set_id", set.ID),
		slog.String("user_id", userID),
		slog.Int("rating", rating),
	)

	return nil
}

// AddReview appends the user's review, which also records their rating.
// The rating is required by field presence: a nil rating is a missing
// field, a present out-of-range value (including 0) fails range
// validation. A second review from the same user is rejected and the set
// is left unchanged.
func (s *FlashcardService) AddReview(ctx context.Context, id, userID, comment string, rating *int) error {
	if strings.TrimSpace(comment) == "" {
		return apperrors.InvalidInput("comment is required")
	}
	if rating == nil {
		return apperrors.InvalidInput("rating is required")
	}
	if !domain.IsValidRating(*rating) {
		return apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	set, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if set.HasReviewBy(userID) {
		return apperrors.Duplicate("you have already reviewed this flashcard set")
	}

	set.AddReview(userID, comment, *rating)

	if err := s.repo.Update(ctx, set); err != nil {
		return fmt.Errorf("save review: %w", err)
	}

	if err := s.producer.PublishFlashcardReviewed(ctx, set.ID, userID, *rating); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish flashcard.reviewed event",
			slog.String("set_id", set.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "flashcard set reviewed",
		slog.String("set_id", set.ID),
		slog.String("user_id", userID),
	)

	return nil
}

// load fetches a set by id, mapping malformed ids and missing rows to
// the same not-found error.
func (s *FlashcardService) load(ctx context.Context, id string) (*domain.FlashcardSet, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("flashcard set", id)
	}

	set, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("flashcard set", id)
		}
		return nil, fmt.Errorf("get flashcard set: %w", err)
	}

	return set, nil
}

// validateCards checks every card has a non-blank question and answer.
func validateCards(cards []domain.Card) error {
	for i, c := range cards {
		if strings.TrimSpace(c.Question) == "" {
			return apperrors.InvalidInput(fmt.Sprintf("card %d: question is required", i+1))
		}
		if strings.TrimSpace(c.Answer) == "" {
			return apperrors.InvalidInput(fmt.Sprintf("card %d: answer is required", i+1))
		}
	}
	return nil
}
