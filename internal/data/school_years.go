package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/classterra/school-platform-backend/db"
)

type SchoolYearStatus string

const (
	DraftSchoolYearStatus    SchoolYearStatus = "DRAFT"
	ActiveSchoolYearStatus   SchoolYearStatus = "ACTIVE"
	ArchivedSchoolYearStatus SchoolYearStatus = "ARCHIVED"
)

func (s SchoolYearStatus) IsValid() bool {
	switch s {
	case DraftSchoolYearStatus, ActiveSchoolYearStatus, ArchivedSchoolYearStatus:
		return true
	}
	return false
}

const (
	// MinSchoolYearDurationDays and MaxSchoolYearDurationDays bound the accepted length of a school year.
	MinSchoolYearDurationDays = 30
	MaxSchoolYearDurationDays = 500
)

type SchoolYear struct {
	ID                  string           `json:"id" db:"id"`
	TenantID            string           `json:"tenant_id" db:"tenant_id"`
	Name                string           `json:"name" db:"name"`
	Code                string           `json:"code" db:"code"`
	StartDate           time.Time        `json:"start_date" db:"start_date"`
	EndDate             time.Time        `json:"end_date" db:"end_date"`
	Status              SchoolYearStatus `json:"status" db:"status"`
	IsDefault           bool             `json:"is_default" db:"is_default"`
	EnrollmentOpenDate  *time.Time       `json:"enrollment_open_date" db:"enrollment_open_date"`
	EnrollmentCloseDate *time.Time       `json:"enrollment_close_date" db:"enrollment_close_date"`
	TermCount           int              `json:"term_count" db:"term_count"`
	StudentsCount       int              `json:"students_count" db:"students_count"`
	StaffCount          int              `json:"staff_count" db:"staff_count"`
	ClassesCount        int              `json:"classes_count" db:"classes_count"`
	CreatedAt           time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at" db:"updated_at"`
	DeletedAt           *time.Time       `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedBy           *string          `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy           *string          `json:"updated_by,omitempty" db:"updated_by"`
}

// DurationDays returns the inclusive length of the school year in days, rounded up.
func (sy *SchoolYear) DurationDays() int {
	return DurationDays(sy.StartDate, sy.EndDate)
}

func DurationDays(start, end time.Time) int {
	return int((end.Sub(start) + 24*time.Hour - 1) / (24 * time.Hour))
}

type SchoolYearInsert struct {
	TenantID            string           `db:"tenant_id"`
	Name                string           `db:"name"`
	Code                string           `db:"code"`
	StartDate           time.Time        `db:"start_date"`
	EndDate             time.Time        `db:"end_date"`
	Status              SchoolYearStatus `db:"status"`
	IsDefault           bool             `db:"is_default"`
	EnrollmentOpenDate  *time.Time       `db:"enrollment_open_date"`
	EnrollmentCloseDate *time.Time       `db:"enrollment_close_date"`
	TermCount           int              `db:"term_count"`
	CreatedBy           *string          `db:"created_by"`
}

type SchoolYearUpdate struct {
	Name                *string           `db:"name"`
	Code                *string           `db:"code"`
	StartDate           *time.Time        `db:"start_date"`
	EndDate             *time.Time        `db:"end_date"`
	Status              *SchoolYearStatus `db:"status"`
	EnrollmentOpenDate  *time.Time        `db:"enrollment_open_date"`
	EnrollmentCloseDate *time.Time        `db:"enrollment_close_date"`
	TermCount           *int              `db:"term_count"`
	UpdatedBy           *string           `db:"updated_by"`
}

func (u SchoolYearUpdate) IsEmpty() bool {
	return u.Name == nil && u.Code == nil && u.StartDate == nil && u.EndDate == nil &&
		u.Status == nil && u.EnrollmentOpenDate == nil && u.EnrollmentCloseDate == nil &&
		u.TermCount == nil
}

type SchoolYearModel struct {
	dbConnectionPool db.DBConnectionPool
}

func (m *SchoolYearModel) Get(ctx context.Context, sqlExec db.SQLExecuter, id string) (*SchoolYear, error) {
	query := "SELECT sy.* FROM school_years sy WHERE sy.id = $1 AND sy.deleted_at IS NULL"

	var sy SchoolYear
	err := sqlExec.GetContext(ctx, &sy, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying school year ID %s: %w", id, err)
	}
	return &sy, nil
}

// GetIncludingDeleted loads a school year regardless of its tombstone. Used by the restore path.
func (m *SchoolYearModel) GetIncludingDeleted(ctx context.Context, sqlExec db.SQLExecuter, id string) (*SchoolYear, error) {
	query := "SELECT sy.* FROM school_years sy WHERE sy.id = $1"

	var sy SchoolYear
	err := sqlExec.GetContext(ctx, &sy, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying school year ID %s: %w", id, err)
	}
	return &sy, nil
}

func (m *SchoolYearModel) GetByIDs(ctx context.Context, sqlExec db.SQLExecuter, ids []string) ([]SchoolYear, error) {
	query := "SELECT sy.* FROM school_years sy WHERE sy.id = ANY($1) AND sy.deleted_at IS NULL"

	schoolYears := []SchoolYear{}
	err := sqlExec.SelectContext(ctx, &schoolYears, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("querying school years by IDs: %w", err)
	}
	return schoolYears, nil
}

func (m *SchoolYearModel) GetAll(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, queryParams *QueryParams) ([]SchoolYear, error) {
	qb := NewQueryBuilder("SELECT sy.* FROM school_years sy")
	m.applyFilters(qb, tenantID, queryParams)
	qb.AddSorting(queryParams.SortBy, queryParams.SortOrder, "sy")
	qb.AddPagination(queryParams.Page, queryParams.PageLimit)
	query, params := qb.BuildAndRebind(sqlExec)

	schoolYears := []SchoolYear{}
	err := sqlExec.SelectContext(ctx, &schoolYears, query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying school years: %w", err)
	}
	return schoolYears, nil
}

func (m *SchoolYearModel) Count(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, queryParams *QueryParams) (int, error) {
	qb := NewQueryBuilder("SELECT COUNT(*) FROM school_years sy")
	m.applyFilters(qb, tenantID, queryParams)
	query, params := qb.BuildAndRebind(sqlExec)

	var count int
	err := sqlExec.GetContext(ctx, &count, query, params...)
	if err != nil {
		return 0, fmt.Errorf("counting school years: %w", err)
	}
	return count, nil
}

func (m *SchoolYearModel) applyFilters(qb *QueryBuilder, tenantID string, queryParams *QueryParams) {
	qb.AddCondition("sy.tenant_id = ?", tenantID)
	if !queryParams.IncludeDeleted {
		qb.AddCondition("sy.deleted_at IS NULL")
	}
	if queryParams.Query != "" {
		qb.AddCondition("(sy.name ILIKE ? OR sy.code ILIKE ?)", "%"+queryParams.Query+"%", "%"+queryParams.Query+"%")
	}
	if status, ok := queryParams.Filters[FilterKeyStatus]; ok {
		qb.AddCondition("sy.status = ?", status)
	}
	if isDefault, ok := queryParams.Filters[FilterKeyIsDefault]; ok {
		qb.AddCondition("sy.is_default = ?", isDefault)
	}
}

func (m *SchoolYearModel) Insert(ctx context.Context, sqlExec db.SQLExecuter, insert SchoolYearInsert) (*SchoolYear, error) {
	const query = `
		INSERT INTO school_years
			(id, tenant_id, name, code, start_date, end_date, status, is_default, enrollment_open_date, enrollment_close_date, term_count, created_by)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING *
	`

	var sy SchoolYear
	err := sqlExec.GetContext(ctx, &sy, query,
		uuid.NewString(), insert.TenantID, insert.Name, insert.Code, insert.StartDate, insert.EndDate,
		insert.Status, insert.IsDefault, insert.EnrollmentOpenDate, insert.EnrollmentCloseDate,
		insert.TermCount, insert.CreatedBy)
	if err != nil {
		if pqError, ok := err.(*pq.Error); ok && pqError.Constraint == "idx_school_years_tenant_code" {
			return nil, ErrRecordAlreadyExists
		}
		return nil, fmt.Errorf("inserting school year: %w", err)
	}
	return &sy, nil
}

func (m *SchoolYearModel) Update(ctx context.Context, sqlExec db.SQLExecuter, id string, update SchoolYearUpdate) (*SchoolYear, error) {
	if update.IsEmpty() {
		return nil, ErrMissingInput
	}

	fields := []string{}
	args := []interface{}{}
	if update.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Code != nil {
		fields = append(fields, "code = ?")
		args = append(args, *update.Code)
	}
	if update.StartDate != nil {
		fields = append(fields, "start_date = ?")
		args = append(args, *update.StartDate)
	}
	if update.EndDate != nil {
		fields = append(fields, "end_date = ?")
		args = append(args, *update.EndDate)
	}
	if update.Status != nil {
		fields = append(fields, "status = ?")
		args = append(args, *update.Status)
	}
	if update.EnrollmentOpenDate != nil {
		fields = append(fields, "enrollment_open_date = ?")
		args = append(args, *update.EnrollmentOpenDate)
	}
	if update.EnrollmentCloseDate != nil {
		fields = append(fields, "enrollment_close_date = ?")
		args = append(args, *update.EnrollmentCloseDate)
	}
	if update.TermCount != nil {
		fields = append(fields, "term_count = ?")
		args = append(args, *update.TermCount)
	}
	if update.UpdatedBy != nil {
		fields = append(fields, "updated_by = ?")
		args = append(args, *update.UpdatedBy)
	}

	query := sqlExec.Rebind(fmt.Sprintf(`
		UPDATE school_years
		SET %s
		WHERE id = ? AND deleted_at IS NULL
		RETURNING *
	`, strings.Join(fields, ", ")))
	args = append(args, id)

	var sy SchoolYear
	err := sqlExec.GetContext(ctx, &sy, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		if pqError, ok := err.(*pq.Error); ok && pqError.Constraint == "idx_school_years_tenant_code" {
			return nil, ErrRecordAlreadyExists
		}
		return nil, fmt.Errorf("updating school year ID %s: %w", id, err)
	}
	return &sy, nil
}

// ExistsOverlapping reports whether any non-deleted school year of the tenant overlaps [startDate, endDate].
// The predicate treats touching endpoints as overlapping, matching the enrollment-calendar rule that two
// years may not share a single day.
func (m *SchoolYearModel) ExistsOverlapping(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, startDate, endDate time.Time, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM school_years
			WHERE tenant_id = $1
			AND deleted_at IS NULL
			AND start_date <= $3
			AND end_date >= $2
			AND ($4 = '' OR id::text <> $4)
		)
	`

	var exists bool
	err := sqlExec.GetContext(ctx, &exists, query, tenantID, startDate, endDate, excludeID)
	if err != nil {
		return false, fmt.Errorf("checking school year overlap for tenant %s: %w", tenantID, err)
	}
	return exists, nil
}

// CodeExists reports whether the code is already taken by a non-deleted school year of the tenant.
func (m *SchoolYearModel) CodeExists(ctx context.Context, sqlExec db.SQLExecuter, tenantID, code, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM school_years
			WHERE tenant_id = $1
			AND code = $2
			AND deleted_at IS NULL
			AND ($3 = '' OR id::text <> $3)
		)
	`

	var exists bool
	err := sqlExec.GetContext(ctx, &exists, query, tenantID, code, excludeID)
	if err != nil {
		return false, fmt.Errorf("checking school year code %q for tenant %s: %w", code, tenantID, err)
	}
	return exists, nil
}

// GetDefault returns the tenant's default school year, or ErrRecordNotFound when none is set.
func (m *SchoolYearModel) GetDefault(ctx context.Context, sqlExec db.SQLExecuter, tenantID string) (*SchoolYear, error) {
	query := "SELECT sy.* FROM school_years sy WHERE sy.tenant_id = $1 AND sy.is_default = TRUE AND sy.deleted_at IS NULL"

	var sy SchoolYear
	err := sqlExec.GetContext(ctx, &sy, query, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying default school year for tenant %s: %w", tenantID, err)
	}
	return &sy, nil
}

// UnsetDefault clears the default flag on whichever school year of the tenant holds it.
func (m *SchoolYearModel) UnsetDefault(ctx context.Context, sqlExec db.SQLExecuter, tenantID string) error {
	query := "UPDATE school_years SET is_default = FALSE WHERE tenant_id = $1 AND is_default = TRUE AND deleted_at IS NULL"
	_, err := sqlExec.ExecContext(ctx, query, tenantID)
	if err != nil {
		return fmt.Errorf("unsetting default school year for tenant %s: %w", tenantID, err)
	}
	return nil
}

// SetDefault marks the given school year as the tenant's default. The caller must have cleared the
// previous default in the same transaction, otherwise the partial unique index rejects the write.
func (m *SchoolYearModel) SetDefault(ctx context.Context, sqlExec db.SQLExecuter, id string) (*SchoolYear, error) {
	const query = `
		UPDATE school_years
		SET is_default = TRUE
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING *
	`

	var sy SchoolYear
	err := sqlExec.GetContext(ctx, &sy, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("setting school year ID %s as default: %w", id, err)
	}
	return &sy, nil
}

func (m *SchoolYearModel) SoftDelete(ctx context.Context, sqlExec db.SQLExecuter, id string) (*SchoolYear, error) {
	const query = `
		UPDATE school_years
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING *
	`

	var sy SchoolYear
	err := sqlExec.GetContext(ctx, &sy, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("soft deleting school year ID %s: %w", id, err)
	}
	return &sy, nil
}

func (m *SchoolYearModel) Restore(ctx context.Context, sqlExec db.SQLExecuter, id string) (*SchoolYear, error) {
	const query = `
		UPDATE school_years
		SET deleted_at = NULL
		WHERE id = $1 AND deleted_at IS NOT NULL
		RETURNING *
	`

	var sy SchoolYear
	err := sqlExec.GetContext(ctx, &sy, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		if pqError, ok := err.(*pq.Error); ok && pqError.Constraint == "idx_school_years_tenant_code" {
			return nil, ErrRecordAlreadyExists
		}
		return nil, fmt.Errorf("restoring school year ID %s: %w", id, err)
	}
	return &sy, nil
}

// HardDelete removes the row permanently. The service layer is responsible for refusing the call
// when denormalized counts are nonzero.
func (m *SchoolYearModel) HardDelete(ctx context.Context, sqlExec db.SQLExecuter, id string) error {
	result, err := sqlExec.ExecContext(ctx, "DELETE FROM school_years WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("permanently deleting school year ID %s: %w", id, err)
	}
	numRowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting number of rows affected: %w", err)
	}
	if numRowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (m *SchoolYearModel) BulkUpdateStatus(ctx context.Context, sqlExec db.SQLExecuter, ids []string, status SchoolYearStatus) (int64, error) {
	query := "UPDATE school_years SET status = $1 WHERE id = ANY($2) AND deleted_at IS NULL"
	result, err := sqlExec.ExecContext(ctx, query, status, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk updating school year status: %w", err)
	}
	numRowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting number of rows affected: %w", err)
	}
	return numRowsAffected, nil
}

func (m *SchoolYearModel) BulkSoftDelete(ctx context.Context, sqlExec db.SQLExecuter, ids []string) (int64, error) {
	query := "UPDATE school_years SET deleted_at = NOW() WHERE id = ANY($1) AND deleted_at IS NULL"
	result, err := sqlExec.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk soft deleting school years: %w", err)
	}
	numRowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting number of rows affected: %w", err)
	}
	return numRowsAffected, nil
}
