package service

import (
	"context"
	"errors"
	"strings"

	"reviewhub/internal/events"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
)

type ResponseService interface {
	CreateResponse(ctx context.Context, reviewID, responderID, content string) (*models.Response, error)
	UpdateResponse(ctx context.Context, responseID, responderID, content string) (*models.Response, error)
	DeleteResponse(ctx context.Context, responseID, responderID string) error
	ListResponses(ctx context.Context, reviewID, requesterID string) ([]models.Response, error)
}

type responseService struct {
	store *repository.Store
	opts  Options
}

func NewResponseService(store *repository.Store, opts Options) ResponseService {
	return &responseService{store: store, opts: opts.withDefaults()}
}

// CreateResponse threads a reply under a live review. The pre-check gives the
// common case a clean error; the live unique index settles races.
func (s *responseService) CreateResponse(ctx context.Context, reviewID, responderID, content string) (*models.Response, error) {
	if strings.TrimSpace(responderID) == "" {
		return nil, invalidInput("responder id is required")
	}
	content, err := normalizeResponseContent(content)
	if err != nil {
		return nil, err
	}

	response := &models.Response{ReviewID: reviewID, ResponderID: responderID, Content: content}
	var review *models.Review
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		if review, err = tx.Reviews().GetByID(ctx, reviewID); err != nil {
			return err
		}
		exists, err := tx.Responses().ExistsLive(ctx, reviewID, responderID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateResponse
		}
		return tx.Responses().Create(ctx, response)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrDuplicateResponse
	}
	if err != nil {
		return nil, storeError(err)
	}

	s.opts.Logger.Info("response_created", "response_id", response.ID, "review_id", reviewID, "responder_id", responderID)
	e := reviewEvent(events.ResponseCreated, review, responderID)
	e.ResponseID = response.ID
	s.opts.Publisher.Publish(e)
	return response, nil
}

func (s *responseService) UpdateResponse(ctx context.Context, responseID, responderID, content string) (*models.Response, error) {
	content, err := normalizeResponseContent(content)
	if err != nil {
		return nil, err
	}

	var updated *models.Response
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := s.ownedResponse(ctx, tx, responseID, responderID)
		if err != nil {
			return err
		}
		if current.Content == content {
			updated = current
			return nil
		}
		if err := tx.Responses().UpdateContent(ctx, responseID, content); err != nil {
			return err
		}
		updated, err = tx.Responses().GetByID(ctx, responseID)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.opts.Logger.Info("response_updated", "response_id", responseID, "responder_id", responderID)
	return updated, nil
}

func (s *responseService) DeleteResponse(ctx context.Context, responseID, responderID string) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := s.ownedResponse(ctx, tx, responseID, responderID); err != nil {
			return err
		}
		return tx.Responses().SoftDelete(ctx, responseID)
	})
	if err != nil {
		return storeError(err)
	}

	s.opts.Logger.Info("response_deleted", "response_id", responseID, "responder_id", responderID)
	return nil
}

// ownedResponse loads a live response under a live review and checks
// authorship. A response under a deleted review is treated as gone.
func (s *responseService) ownedResponse(ctx context.Context, tx *repository.Store, responseID, responderID string) (*models.Response, error) {
	response, err := tx.Responses().GetByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Reviews().GetByID(ctx, response.ReviewID); err != nil {
		return nil, err
	}
	if response.ResponderID != responderID {
		return nil, ErrNotAuthor
	}
	return response, nil
}

// ListResponses returns the thread in conversation order. The review must be
// visible to the requester under the same rule as GetReview.
func (s *responseService) ListResponses(ctx context.Context, reviewID, requesterID string) ([]models.Response, error) {
	review, err := s.store.Reviews().GetByID(ctx, reviewID)
	if err != nil {
		return nil, storeError(err)
	}
	if !review.VisibleTo(requesterID) {
		return nil, ErrNotFound
	}
	return s.store.Responses().ListByReview(ctx, reviewID)
}
