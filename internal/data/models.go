package data

import (
	"errors"

	"github.com/classterra/school-platform-backend/db"
)

var (
	ErrRecordNotFound          = errors.New("record not found")
	ErrRecordAlreadyExists     = errors.New("record already exists")
	ErrMismatchNumRowsAffected = errors.New("mismatch number of rows affected")
	ErrMissingInput            = errors.New("missing input")
)

type Models struct {
	Tenants          *TenantModel
	SchoolYears      *SchoolYearModel
	Users            *UserModel
	AccessRequests   *AccessRequestModel
	Waitlist         *WaitlistModel
	DBConnectionPool db.DBConnectionPool
}

func NewModels(dbConnectionPool db.DBConnectionPool) (*Models, error) {
	if dbConnectionPool == nil {
		return nil, errors.New("dbConnectionPool is required for NewModels")
	}
	return &Models{
		Tenants:          &TenantModel{dbConnectionPool: dbConnectionPool},
		SchoolYears:      &SchoolYearModel{dbConnectionPool: dbConnectionPool},
		Users:            &UserModel{dbConnectionPool: dbConnectionPool},
		AccessRequests:   &AccessRequestModel{dbConnectionPool: dbConnectionPool},
		Waitlist:         &WaitlistModel{dbConnectionPool: dbConnectionPool},
		DBConnectionPool: dbConnectionPool,
	}, nil
}
