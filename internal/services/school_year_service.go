package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/classterra/school-platform-backend/db"
	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/monitor"
)

var (
	ErrSchoolYearCodeInUse        = errors.New("school year code already in use for this tenant")
	ErrSchoolYearOverlap          = errors.New("school year dates overlap an existing school year")
	ErrSchoolYearDeleteNotAllowed = errors.New("cannot delete a default or active school year")
	ErrSchoolYearHasData          = errors.New("cannot permanently delete a school year with associated data")
	ErrSchoolYearNotDeleted       = errors.New("school year is not deleted")
	ErrSchoolYearInvalidDateRange = errors.New("invalid school year date range")
)

type SchoolYearServiceInterface interface {
	CreateSchoolYear(ctx context.Context, tenantID string, insert data.SchoolYearInsert) (*data.SchoolYear, error)
	GetSchoolYear(ctx context.Context, tenantID, id string) (*data.SchoolYear, error)
	GetSchoolYears(ctx context.Context, tenantID string, queryParams *data.QueryParams) ([]data.SchoolYear, int, error)
	GetDefaultSchoolYear(ctx context.Context, tenantID string) (*data.SchoolYear, error)
	UpdateSchoolYear(ctx context.Context, tenantID, id string, update data.SchoolYearUpdate) (*data.SchoolYear, error)
	SetAsDefault(ctx context.Context, tenantID, id string) (*data.SchoolYear, error)
	RemoveSchoolYear(ctx context.Context, tenantID, id string) (*data.SchoolYear, error)
	RestoreSchoolYear(ctx context.Context, tenantID, id string) (*data.SchoolYear, error)
	PermanentlyDeleteSchoolYear(ctx context.Context, tenantID, id string) error
	BulkUpdateStatus(ctx context.Context, tenantID string, ids []string, status data.SchoolYearStatus) (int64, error)
	BulkDelete(ctx context.Context, tenantID string, ids []string) (int64, error)
}

type SchoolYearService struct {
	models         *data.Models
	monitorService monitor.MonitorServiceInterface
}

var _ SchoolYearServiceInterface = (*SchoolYearService)(nil)

func NewSchoolYearService(models *data.Models, monitorService monitor.MonitorServiceInterface) (*SchoolYearService, error) {
	if models == nil {
		return nil, fmt.Errorf("models is required for SchoolYearService")
	}
	return &SchoolYearService{
		models:         models,
		monitorService: monitorService,
	}, nil
}

// CreateSchoolYear inserts a school year after re-checking the code uniqueness and the
// overlap rule inside a single transaction. When the new school year is flagged as
// default, the previous default is cleared in the same transaction.
func (s *SchoolYearService) CreateSchoolYear(ctx context.Context, tenantID string, insert data.SchoolYearInsert) (*data.SchoolYear, error) {
	insert.TenantID = tenantID

	if days := data.DurationDays(insert.StartDate, insert.EndDate); !insert.StartDate.Before(insert.EndDate) ||
		days < data.MinSchoolYearDurationDays || days > data.MaxSchoolYearDurationDays {
		return nil, ErrSchoolYearInvalidDateRange
	}

	schoolYear, err := db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (*data.SchoolYear, error) {
		codeExists, err := s.models.SchoolYears.CodeExists(ctx, dbTx, tenantID, insert.Code, "")
		if err != nil {
			return nil, fmt.Errorf("checking school year code: %w", err)
		}
		if codeExists {
			return nil, ErrSchoolYearCodeInUse
		}

		overlaps, err := s.models.SchoolYears.ExistsOverlapping(ctx, dbTx, tenantID, insert.StartDate, insert.EndDate, "")
		if err != nil {
			return nil, fmt.Errorf("checking school year overlap: %w", err)
		}
		if overlaps {
			return nil, ErrSchoolYearOverlap
		}

		if insert.IsDefault {
			if err = s.models.SchoolYears.UnsetDefault(ctx, dbTx, tenantID); err != nil {
				return nil, fmt.Errorf("unsetting previous default school year: %w", err)
			}
		}

		return s.models.SchoolYears.Insert(ctx, dbTx, insert)
	})
	if err != nil {
		return nil, err
	}

	if s.monitorService != nil {
		if monitorErr := s.monitorService.MonitorCounters(monitor.SchoolYearsCreatedCounterTag, map[string]string{"tenant_id": tenantID}); monitorErr != nil {
			log.WithContext(ctx).Errorf("Error monitoring school years created counter: %s", monitorErr)
		}
	}

	return schoolYear, nil
}

func (s *SchoolYearService) GetSchoolYear(ctx context.Context, tenantID, id string) (*data.SchoolYear, error) {
	schoolYear, err := s.models.SchoolYears.Get(ctx, s.models.DBConnectionPool, id)
	if err != nil {
		return nil, err
	}
	if schoolYear.TenantID != tenantID {
		return nil, data.ErrRecordNotFound
	}
	return schoolYear, nil
}

func (s *SchoolYearService) GetSchoolYears(ctx context.Context, tenantID string, queryParams *data.QueryParams) ([]data.SchoolYear, int, error) {
	totalSchoolYears, err := s.models.SchoolYears.Count(ctx, s.models.DBConnectionPool, tenantID, queryParams)
	if err != nil {
		return nil, 0, fmt.Errorf("counting school years: %w", err)
	}

	if totalSchoolYears == 0 {
		return []data.SchoolYear{}, 0, nil
	}

	schoolYears, err := s.models.SchoolYears.GetAll(ctx, s.models.DBConnectionPool, tenantID, queryParams)
	if err != nil {
		return nil, 0, fmt.Errorf("querying school years: %w", err)
	}

	return schoolYears, totalSchoolYears, nil
}

func (s *SchoolYearService) GetDefaultSchoolYear(ctx context.Context, tenantID string) (*data.SchoolYear, error) {
	return s.models.SchoolYears.GetDefault(ctx, s.models.DBConnectionPool, tenantID)
}

// UpdateSchoolYear patches a school year. When the dates or the code change, the overlap
// and uniqueness rules are re-checked against the merged record inside the transaction.
func (s *SchoolYearService) UpdateSchoolYear(ctx context.Context, tenantID, id string, update data.SchoolYearUpdate) (*data.SchoolYear, error) {
	if update.IsEmpty() {
		return nil, data.ErrMissingInput
	}

	return db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (*data.SchoolYear, error) {
		existing, err := s.models.SchoolYears.Get(ctx, dbTx, id)
		if err != nil {
			return nil, err
		}
		if existing.TenantID != tenantID {
			return nil, data.ErrRecordNotFound
		}

		startDate, endDate := existing.StartDate, existing.EndDate
		if update.StartDate != nil {
			startDate = *update.StartDate
		}
		if update.EndDate != nil {
			endDate = *update.EndDate
		}

		if update.StartDate != nil || update.EndDate != nil {
			if days := data.DurationDays(startDate, endDate); !startDate.Before(endDate) ||
				days < data.MinSchoolYearDurationDays || days > data.MaxSchoolYearDurationDays {
				return nil, ErrSchoolYearInvalidDateRange
			}

			overlaps, overlapErr := s.models.SchoolYears.ExistsOverlapping(ctx, dbTx, tenantID, startDate, endDate, id)
			if overlapErr != nil {
				return nil, fmt.Errorf("checking school year overlap: %w", overlapErr)
			}
			if overlaps {
				return nil, ErrSchoolYearOverlap
			}
		}

		if update.Code != nil && *update.Code != existing.Code {
			codeExists, codeErr := s.models.SchoolYears.CodeExists(ctx, dbTx, tenantID, *update.Code, id)
			if codeErr != nil {
				return nil, fmt.Errorf("checking school year code: %w", codeErr)
			}
			if codeExists {
				return nil, ErrSchoolYearCodeInUse
			}
		}

		return s.models.SchoolYears.Update(ctx, dbTx, id, update)
	})
}

// SetAsDefault promotes a school year to the tenant default. The operation is idempotent:
// promoting the current default is a no-op.
func (s *SchoolYearService) SetAsDefault(ctx context.Context, tenantID, id string) (*data.SchoolYear, error) {
	return db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (*data.SchoolYear, error) {
		schoolYear, err := s.models.SchoolYears.Get(ctx, dbTx, id)
		if err != nil {
			return nil, err
		}
		if schoolYear.TenantID != tenantID {
			return nil, data.ErrRecordNotFound
		}

		if schoolYear.IsDefault {
			return schoolYear, nil
		}

		if err = s.models.SchoolYears.UnsetDefault(ctx, dbTx, tenantID); err != nil {
			return nil, fmt.Errorf("unsetting previous default school year: %w", err)
		}

		return s.models.SchoolYears.SetDefault(ctx, dbTx, id)
	})
}

// RemoveSchoolYear soft-deletes a school year. Default and ACTIVE school years cannot be
// removed.
func (s *SchoolYearService) RemoveSchoolYear(ctx context.Context, tenantID, id string) (*data.SchoolYear, error) {
	return db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (*data.SchoolYear, error) {
		schoolYear, err := s.models.SchoolYears.Get(ctx, dbTx, id)
		if err != nil {
			return nil, err
		}
		if schoolYear.TenantID != tenantID {
			return nil, data.ErrRecordNotFound
		}

		if schoolYear.IsDefault || schoolYear.Status == data.ActiveSchoolYearStatus {
			return nil, ErrSchoolYearDeleteNotAllowed
		}

		return s.models.SchoolYears.SoftDelete(ctx, dbTx, id)
	})
}

// RestoreSchoolYear clears the soft-delete tombstone. The overlap and code rules are
// re-checked, since conflicting school years may have been created while this one was
// deleted.
func (s *SchoolYearService) RestoreSchoolYear(ctx context.Context, tenantID, id string) (*data.SchoolYear, error) {
	return db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (*data.SchoolYear, error) {
		schoolYear, err := s.models.SchoolYears.GetIncludingDeleted(ctx, dbTx, id)
		if err != nil {
			return nil, err
		}
		if schoolYear.TenantID != tenantID {
			return nil, data.ErrRecordNotFound
		}
		if schoolYear.DeletedAt == nil {
			return nil, ErrSchoolYearNotDeleted
		}

		codeExists, err := s.models.SchoolYears.CodeExists(ctx, dbTx, tenantID, schoolYear.Code, id)
		if err != nil {
			return nil, fmt.Errorf("checking school year code: %w", err)
		}
		if codeExists {
			return nil, ErrSchoolYearCodeInUse
		}

		overlaps, err := s.models.SchoolYears.ExistsOverlapping(ctx, dbTx, tenantID, schoolYear.StartDate, schoolYear.EndDate, id)
		if err != nil {
			return nil, fmt.Errorf("checking school year overlap: %w", err)
		}
		if overlaps {
			return nil, ErrSchoolYearOverlap
		}

		return s.models.SchoolYears.Restore(ctx, dbTx, id)
	})
}

// PermanentlyDeleteSchoolYear removes a soft-deleted school year for good. It refuses
// when the denormalized counts show associated data.
func (s *SchoolYearService) PermanentlyDeleteSchoolYear(ctx context.Context, tenantID, id string) error {
	return db.RunInTransaction(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) error {
		schoolYear, err := s.models.SchoolYears.GetIncludingDeleted(ctx, dbTx, id)
		if err != nil {
			return err
		}
		if schoolYear.TenantID != tenantID {
			return data.ErrRecordNotFound
		}
		if schoolYear.DeletedAt == nil {
			return ErrSchoolYearNotDeleted
		}

		if schoolYear.StudentsCount > 0 || schoolYear.StaffCount > 0 || schoolYear.ClassesCount > 0 {
			return ErrSchoolYearHasData
		}

		return s.models.SchoolYears.HardDelete(ctx, dbTx, id)
	})
}

// BulkUpdateStatus updates the status of a batch of school years. Every id must belong
// to the tenant, otherwise the whole batch is rejected.
func (s *SchoolYearService) BulkUpdateStatus(ctx context.Context, tenantID string, ids []string, status data.SchoolYearStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, data.ErrMissingInput
	}

	return db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (int64, error) {
		if err := s.checkBatchOwnership(ctx, dbTx, tenantID, ids); err != nil {
			return 0, err
		}
		return s.models.SchoolYears.BulkUpdateStatus(ctx, dbTx, ids, status)
	})
}

// BulkDelete soft-deletes a batch of school years. The whole batch is rejected when any
// member is the tenant default or ACTIVE.
func (s *SchoolYearService) BulkDelete(ctx context.Context, tenantID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, data.ErrMissingInput
	}

	return db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (int64, error) {
		schoolYears, err := s.models.SchoolYears.GetByIDs(ctx, dbTx, ids)
		if err != nil {
			return 0, fmt.Errorf("querying school years batch: %w", err)
		}
		if len(schoolYears) != len(ids) {
			return 0, data.ErrRecordNotFound
		}

		for _, sy := range schoolYears {
			if sy.TenantID != tenantID {
				return 0, data.ErrRecordNotFound
			}
			if sy.IsDefault || sy.Status == data.ActiveSchoolYearStatus {
				return 0, ErrSchoolYearDeleteNotAllowed
			}
		}

		return s.models.SchoolYears.BulkSoftDelete(ctx, dbTx, ids)
	})
}

func (s *SchoolYearService) checkBatchOwnership(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, ids []string) error {
	schoolYears, err := s.models.SchoolYears.GetByIDs(ctx, sqlExec, ids)
	if err != nil {
		return fmt.Errorf("querying school years batch: %w", err)
	}
	if len(schoolYears) != len(ids) {
		return data.ErrRecordNotFound
	}
	for _, sy := range schoolYears {
		if sy.TenantID != tenantID {
			return data.ErrRecordNotFound
		}
	}
	return nil
}
