package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/classterra/school-platform-backend/db"
)

type WaitlistStatus string

const (
	ActiveWaitlistStatus       WaitlistStatus = "ACTIVE"
	NotifiedWaitlistStatus     WaitlistStatus = "NOTIFIED"
	UnsubscribedWaitlistStatus WaitlistStatus = "UNSUBSCRIBED"
)

type WaitlistSubscriber struct {
	ID          string         `json:"id" db:"id"`
	Email       string         `json:"email" db:"email"`
	Status      WaitlistStatus `json:"status" db:"status"`
	Source      *string        `json:"source,omitempty" db:"source"`
	UTMSource   *string        `json:"utm_source,omitempty" db:"utm_source"`
	UTMMedium   *string        `json:"utm_medium,omitempty" db:"utm_medium"`
	UTMCampaign *string        `json:"utm_campaign,omitempty" db:"utm_campaign"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

type WaitlistInsert struct {
	Email       string
	Source      *string
	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
}

type WaitlistModel struct {
	dbConnectionPool db.DBConnectionPool
}

const waitlistEmailUniqueConstraint = "waitlist_subscribers_email_key"

// Insert adds an email to the waitlist.
func (m *WaitlistModel) Insert(ctx context.Context, sqlExec db.SQLExecuter, insert WaitlistInsert) (*WaitlistSubscriber, error) {
	const query = `
		INSERT INTO waitlist_subscribers (id, email, source, utm_source, utm_medium, utm_campaign)
		VALUES ($1, LOWER($2), $3, $4, $5, $6)
		RETURNING *
	`
	var subscriber WaitlistSubscriber
	err := sqlExec.GetContext(ctx, &subscriber, query,
		uuid.NewString(), insert.Email, insert.Source, insert.UTMSource, insert.UTMMedium, insert.UTMCampaign)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == waitlistEmailUniqueConstraint {
			return nil, ErrRecordAlreadyExists
		}
		return nil, fmt.Errorf("inserting waitlist subscriber: %w", err)
	}
	return &subscriber, nil
}

// GetByEmail returns the subscriber for a (case-insensitive) email address.
func (m *WaitlistModel) GetByEmail(ctx context.Context, sqlExec db.SQLExecuter, email string) (*WaitlistSubscriber, error) {
	const query = `SELECT w.* FROM waitlist_subscribers w WHERE LOWER(w.email) = LOWER($1)`
	var subscriber WaitlistSubscriber
	err := sqlExec.GetContext(ctx, &subscriber, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting waitlist subscriber by email: %w", err)
	}
	return &subscriber, nil
}

// GetAll returns a page of subscribers according to the query parameters.
func (m *WaitlistModel) GetAll(ctx context.Context, sqlExec db.SQLExecuter, queryParams *QueryParams) ([]WaitlistSubscriber, error) {
	subscribers := []WaitlistSubscriber{}
	qb := NewQueryBuilder("SELECT w.* FROM waitlist_subscribers w")
	m.applyFilters(qb, queryParams)
	qb.AddSorting(queryParams.SortBy, queryParams.SortOrder, "w")
	qb.AddPagination(queryParams.Page, queryParams.PageLimit)
	query, params := qb.BuildAndRebind(sqlExec)

	err := sqlExec.SelectContext(ctx, &subscribers, query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying waitlist subscribers: %w", err)
	}
	return subscribers, nil
}

// Count returns the number of subscribers matching the query parameters.
func (m *WaitlistModel) Count(ctx context.Context, sqlExec db.SQLExecuter, queryParams *QueryParams) (int, error) {
	var count int
	qb := NewQueryBuilder("SELECT COUNT(*) FROM waitlist_subscribers w")
	m.applyFilters(qb, queryParams)
	query, params := qb.BuildAndRebind(sqlExec)

	err := sqlExec.GetContext(ctx, &count, query, params...)
	if err != nil {
		return 0, fmt.Errorf("counting waitlist subscribers: %w", err)
	}
	return count, nil
}

func (m *WaitlistModel) applyFilters(qb *QueryBuilder, queryParams *QueryParams) {
	if queryParams.Query != "" {
		qb.AddCondition("w.email ILIKE ?", "%"+queryParams.Query+"%")
	}
	if status, ok := queryParams.Filters[FilterKeyStatus]; ok {
		qb.AddCondition("w."+FilterKeyStatus.Equals(), status)
	}
}

// UpdateStatus changes a subscriber's status, e.g. when they unsubscribe.
func (m *WaitlistModel) UpdateStatus(ctx context.Context, sqlExec db.SQLExecuter, email string, status WaitlistStatus) (*WaitlistSubscriber, error) {
	const query = `
		UPDATE waitlist_subscribers
		SET status = $2
		WHERE LOWER(email) = LOWER($1)
		RETURNING *
	`
	var subscriber WaitlistSubscriber
	err := sqlExec.GetContext(ctx, &subscriber, query, email, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating waitlist subscriber status: %w", err)
	}
	return &subscriber, nil
}
