package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studydeck/studydeck-server/internal/domain"
	pkgkafka "github.com/studydeck/studydeck-server/pkg/kafka"
)

// Kafka topics for studydeck domain events.
var (
	TopicUserRegistered    = pkgkafka.Topic("user", "registered")
	TopicFlashcardCreated  = pkgkafka.Topic("flashcard", "created")
	TopicFlashcardRated    = pkgkafka.Topic("flashcard", "rated")
	TopicFlashcardReviewed = pkgkafka.Topic("flashcard", "reviewed")
)

// Aggregate type constants.
const (
	AggregateTypeUser         = "user"
	AggregateTypeFlashcardSet = "flashcard_set"
)

// Source identifier for events originating from this service.
const Source = "studydeck-server"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// FlashcardCreatedData is the payload for a flashcard.created event.
type FlashcardCreatedData struct {
	ID       string `json:"id"`
	OwnerID  string `json:"owner_id"`
	Title    string `json:"title"`
	Cards    int    `json:"cards"`
	IsHidden bool   `json:"is_hidden"`
}

// FlashcardRatedData is the payload for a flashcard.rated event.
type FlashcardRatedData struct {
	SetID  string `json:"set_id"`
	UserID string `json:"user_id"`
	Rating int    `json:"rating"`
}

// FlashcardReviewedData is the payload for a flashcard.reviewed event.
type FlashcardReviewedData struct {
	SetID  string `json:"set_id"`
	UserID string `json:"user_id"`
	Rating int    `json:"rating"`
}

// Producer publishes studydeck domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishFlashcardCreated publishes a flashcard.created event.
func (p *Producer) PublishFlashcardCreated(ctx context.Context, set *domain.FlashcardSet) error {
	data := FlashcardCreatedData{
		ID:       set.ID,
		OwnerID:  set.OwnerID,
		Title:    set.Title,
		Cards:    len(set.Cards),
		IsHidden: set.IsHidden,
	}

	event, err := pkgkafka.NewEvent(TopicFlashcardCreated, set.ID, AggregateTypeFlashcardSet, Source, data)
	if err != nil {
		return fmt.Errorf("create flashcard.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicFlashcardCreated, event); err != nil {
		return fmt.Errorf("publish flashcard.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published flashcard.created event",
		slog.String("set_id", set.ID),
		slog.String("owner_id", set.OwnerID),
	)

	return nil
}

// PublishFlashcardRated publishes a flashcard.rated event.
func (p *Producer) PublishFlashcardRated(ctx context.Context, setID, userID string, rating int) error {
	data := FlashcardRatedData{
		SetID:  setID,
		UserID: userID,
		Rating: rating,
	}

	event, err := pkgkafka.NewEvent(TopicFlashcardRated, setID, AggregateTypeFlashcardSet, Source, data)
	if err != nil {
		return fmt.Errorf("create flashcard.rated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicFlashcardRated, event); err != nil {
		return fmt.Errorf("publish flashcard.rated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published flashcard.rated event",
		slog.String("set_id", setID),
		slog.String("user_id", userID),
		slog.Int("rating", rating),
	)

	return nil
}

// PublishFlashcardReviewed publishes a flashcard.reviewed event.
func (p *Producer) PublishFlashcardReviewed(ctx context.Context, setID, userID string, rating int) error {
	data := FlashcardReviewedData{
		SetID:  setID,
		UserID: userID,
		Rating: rating,
	}

	event, err := pkgkafka.NewEvent(TopicFlashcardReviewed, setID, AggregateTypeFlashcardSet, Source, data)
	if err != nil {
		return fmt.Errorf("create flashcard.reviewed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicFlashcardReviewed, event); err != nil {
		return fmt.Errorf("publish flashcard.reviewed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published flashcard.reviewed event",
		slog.String("set_id", setID),
		slog.String("user_id", userID),
	)

	return nil
}
