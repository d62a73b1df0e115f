package domain

import (
	"encoding/json"
	"time"
)

// Rating bounds for flashcard set ratings and reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// IsValidRating reports whether the value is within the allowed rating range.
func IsValidRating(value int) bool {
	return value >= MinRating && value <= MaxRating
}

// Card is a single question/answer pair within a flashcard set.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Rating is one user's rating of a flashcard set. A set holds at most
// one rating per user; later submissions overwrite the existing entry.
type Rating struct {
	UserID string `json:"user_id"`
	Value  int    `json:"rating"`
}

// Review is one user's written review of a flashcard set. A set holds at
// most one review per user; repeat submissions are rejected.
type Review struct {
	UserID    string    `json:"user_id"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// FlashcardSet is the core content entity: a titled collection of cards
// plus the ratings and reviews users have attached to it. Ratings and
// reviews are owned substructures and are discarded with the set.
type FlashcardSet struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	OwnerName   string    `json:"owner_name,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Cards       []Card    `json:"cards"`
	IsHidden    bool      `json:"is_hidden"`
	Ratings     []Rating  `json:"ratings"`
	Reviews     []Review  `json:"reviews"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewFlashcardSet creates a set with empty rating and review collections.
func NewFlashcardSet(id, ownerID, title, description string, cards []Card, isHidden bool) *FlashcardSet {
	if cards == nil {
		cards = []Card{}
	}
	now := time.Now().UTC()
	return &FlashcardSet{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Cards:       cards,
		IsHidden:    isHidden,
		Ratings:     []Rating{},
		Reviews:     []Review{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AverageRating returns the arithmetic mean of all rating values, or 0
// when the set has no ratings. Recomputed on every call.
func (s *FlashcardSet) AverageRating() float64 {
	if len(s.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range s.Ratings {
		sum += r.Value
	}
	return float64(sum) / float64(len(s.Ratings))
}

// TotalRatings returns the number of ratings on the set.
func (s *FlashcardSet) TotalRatings() int {
	return len(s.Ratings)
}

// TotalReviews returns the number of reviews on the set.
func (s *FlashcardSet) TotalReviews() int {
	return len(s.Reviews)
}

// SetRating records the user's rating with upsert semantics: an existing
// entry for the user is overwritten, otherwise a new entry is appended.
func (s *FlashcardSet) SetRating(userID string, value int) {
	for i := range s.Ratings {
		if s.Ratings[i].UserID == userID {
			s.Ratings[i].Value = value
			return
		}
	}
	s.Ratings = append(s.Ratings, Rating{UserID: userID, Value: value})
}

// HasReviewBy reports whether the user has already reviewed the set.
func (s *FlashcardSet) HasReviewBy(userID string) bool {
	for _, r := range s.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AddReview appends the user's review and records the same value as the
// user's rating. Callers must check HasReviewBy first; the uniqueness
// rule is enforced there, not here.
func (s *FlashcardSet) AddReview(userID, comment string, rating int) {
	s.Reviews = append(s.Reviews, Review{
		UserID:    userID,
		Comment:   comment,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	})
	s.SetRating(userID, rating)
}

// MarshalJSON serializes the set with its derived aggregates attached.
func (s *FlashcardSet) MarshalJSON() ([]byte, error) {
	type alias FlashcardSet
	return json.Marshal(struct {
		*alias
		AverageRating float64 `json:"average_rating"`
		TotalRatings  int     `json:"total_ratings"`
		TotalReviews  int     `json:"total_reviews"`
	}{
		alias:         (*alias)(s),
		AverageRating: s.AverageRating(),
		TotalRatings:  s.TotalRatings(),
		TotalReviews:  s.TotalReviews(),
	})
}
