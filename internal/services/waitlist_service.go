package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/classterra/school-platform-backend/internal/data"
)

var ErrAlreadyOnWaitlist = errors.New("email is already on the waitlist")

type WaitlistServiceInterface interface {
	Subscribe(ctx context.Context, insert data.WaitlistInsert) (*data.WaitlistSubscriber, error)
	Unsubscribe(ctx context.Context, email string) (*data.WaitlistSubscriber, error)
	GetSubscribers(ctx context.Context, queryParams *data.QueryParams) ([]data.WaitlistSubscriber, int, error)
}

type WaitlistService struct {
	models *data.Models
}

var _ WaitlistServiceInterface = (*WaitlistService)(nil)

func NewWaitlistService(models *data.Models) (*WaitlistService, error) {
	if models == nil {
		return nil, fmt.Errorf("models is required for WaitlistService")
	}
	return &WaitlistService{models: models}, nil
}

// Subscribe adds an email to the waitlist. An email that unsubscribed earlier is
// reactivated; an already-active subscription is refused.
func (s *WaitlistService) Subscribe(ctx context.Context, insert data.WaitlistInsert) (*data.WaitlistSubscriber, error) {
	subscriber, err := s.models.Waitlist.Insert(ctx, s.models.DBConnectionPool, insert)
	if err == nil {
		return subscriber, nil
	}
	if !errors.Is(err, data.ErrRecordAlreadyExists) {
		return nil, err
	}

	existing, getErr := s.models.Waitlist.GetByEmail(ctx, s.models.DBConnectionPool, insert.Email)
	if getErr != nil {
		return nil, fmt.Errorf("querying waitlist subscriber: %w", getErr)
	}

	if existing.Status != data.UnsubscribedWaitlistStatus {
		return nil, ErrAlreadyOnWaitlist
	}

	return s.models.Waitlist.UpdateStatus(ctx, s.models.DBConnectionPool, insert.Email, data.ActiveWaitlistStatus)
}

// Unsubscribe marks a waitlist subscription as UNSUBSCRIBED.
func (s *WaitlistService) Unsubscribe(ctx context.Context, email string) (*data.WaitlistSubscriber, error) {
	return s.models.Waitlist.UpdateStatus(ctx, s.models.DBConnectionPool, email, data.UnsubscribedWaitlistStatus)
}

func (s *WaitlistService) GetSubscribers(ctx context.Context, queryParams *data.QueryParams) ([]data.WaitlistSubscriber, int, error) {
	totalSubscribers, err := s.models.Waitlist.Count(ctx, s.models.DBConnectionPool, queryParams)
	if err != nil {
		return nil, 0, fmt.Errorf("counting waitlist subscribers: %w", err)
	}

	if totalSubscribers == 0 {
		return []data.WaitlistSubscriber{}, 0, nil
	}

	subscribers, err := s.models.Waitlist.GetAll(ctx, s.models.DBConnectionPool, queryParams)
	if err != nil {
		return nil, 0, fmt.Errorf("querying waitlist subscribers: %w", err)
	}

	return subscribers, totalSubscribers, nil
}
