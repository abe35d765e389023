package service

import (
	"errors"
	"fmt"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrNotAuthor         = errors.New("caller is not the author")
	ErrDuplicateReview   = errors.New("a review for this target already exists")
	ErrDuplicateResponse = errors.New("a response to this review already exists")
	ErrSelfVote          = errors.New("cannot vote on your own review")
	ErrConflict          = errors.New("concurrent update conflict, try again")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = fmt.Errorf("%w: illegal moderation transition", ErrInvalidInput)
)

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// storeError maps storage-level errors onto the service error kinds.
// Errors that already are service kinds pass through untouched.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, repository.ErrDuplicate):
		// a unique index lost a race the caller did not pre-check for
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func invalidTransition(from, to models.ModerationStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
