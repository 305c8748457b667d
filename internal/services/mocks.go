package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/classterra/school-platform-backend/internal/data"
)

type SchoolYearServiceMock struct {
	mock.Mock
}

var _ SchoolYearServiceInterface = (*SchoolYearServiceMock)(nil)

func (m *SchoolYearServiceMock) CreateSchoolYear(ctx context.Context, tenantID string, insert data.SchoolYearInsert) (*data.SchoolYear, error) {
	args := m.Called(ctx, tenantID, insert)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.SchoolYear), args.Error(1)
}

func (m *SchoolYearServiceMock) GetSchoolYear(ctx context.Context, tenantID, id string) (*data.SchoolYear, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.SchoolYear), args.Error(1)
}

func (m *SchoolYearServiceMock) GetSchoolYears(ctx context.Context, tenantID string, queryParams *data.QueryParams) ([]data.SchoolYear, int, error) {
	args := m.Called(ctx, tenantID, queryParams)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]data.SchoolYear), args.Int(1), args.Error(2)
}

func (m *SchoolYearServiceMock) GetDefaultSchoolYear(ctx context.Context, tenantID string) (*data.SchoolYear, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.SchoolYear), args.Error(1)
}

func (m *SchoolYearServiceMock) UpdateSchoolYear(ctx context.Context, tenantID, id string, update data.SchoolYearUpdate) (*data.SchoolYear, error) {
	args := m.Called(ctx, tenantID, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.SchoolYear), args.Error(1)
}

func (m *SchoolYearServiceMock) SetAsDefault(ctx context.Context, tenantID, id string) (*data.SchoolYear, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.SchoolYear), args.Error(1)
}

func (m *SchoolYearServiceMock) RemoveSchoolYear(ctx context.Context, tenantID, id string) (*data.SchoolYear, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.SchoolYear), args.Error(1)
}

func (m *SchoolYearServiceMock) RestoreSchoolYear(ctx context.Context, tenantID, id string) (*data.SchoolYear, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.SchoolYear), args.Error(1)
}

func (m *SchoolYearServiceMock) PermanentlyDeleteSchoolYear(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *SchoolYearServiceMock) BulkUpdateStatus(ctx context.Context, tenantID string, ids []string, status data.SchoolYearStatus) (int64, error) {
	args := m.Called(ctx, tenantID, ids, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SchoolYearServiceMock) BulkDelete(ctx context.Context, tenantID string, ids []string) (int64, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).(int64), args.Error(1)
}

type TenantServiceMock struct {
	mock.Mock
}

var _ TenantServiceInterface = (*TenantServiceMock)(nil)

func (m *TenantServiceMock) CreateTenant(ctx context.Context, params CreateTenantParams) (*data.TenantAggregate, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.TenantAggregate), args.Error(1)
}

func (m *TenantServiceMock) CreateMinimalTenant(ctx context.Context, name, email, creatingUserID string) (*data.TenantAggregate, error) {
	args := m.Called(ctx, name, email, creatingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.TenantAggregate), args.Error(1)
}

func (m *TenantServiceMock) GetTenant(ctx context.Context, id string) (*data.TenantAggregate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.TenantAggregate), args.Error(1)
}

func (m *TenantServiceMock) GetTenantBySlug(ctx context.Context, slug string) (*data.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Tenant), args.Error(1)
}

func (m *TenantServiceMock) GetTenants(ctx context.Context, queryParams *data.QueryParams) ([]data.Tenant, int, error) {
	args := m.Called(ctx, queryParams)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]data.Tenant), args.Int(1), args.Error(2)
}

func (m *TenantServiceMock) UpdateTenant(ctx context.Context, id string, params UpdateTenantParams) (*data.TenantAggregate, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.TenantAggregate), args.Error(1)
}

func (m *TenantServiceMock) ToggleTenantStatus(ctx context.Context, id string) (*data.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Tenant), args.Error(1)
}

func (m *TenantServiceMock) UpdateSubscription(ctx context.Context, tenantID string, plan data.SubscriptionPlan, cycle data.BillingCycle, billingEmail *string) (*data.TenantSubscription, error) {
	args := m.Called(ctx, tenantID, plan, cycle, billingEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.TenantSubscription), args.Error(1)
}

func (m *TenantServiceMock) AddIntegration(ctx context.Context, tenantID string, integration data.TenantIntegration) (*data.TenantIntegration, error) {
	args := m.Called(ctx, tenantID, integration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.TenantIntegration), args.Error(1)
}

func (m *TenantServiceMock) RemoveIntegration(ctx context.Context, tenantID, integrationID string) error {
	args := m.Called(ctx, tenantID, integrationID)
	return args.Error(0)
}

func (m *TenantServiceMock) SoftDeleteTenant(ctx context.Context, id string) (*data.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Tenant), args.Error(1)
}

func (m *TenantServiceMock) RestoreTenant(ctx context.Context, id string) (*data.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Tenant), args.Error(1)
}

func (m *TenantServiceMock) HardDeleteTenant(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type AuthServiceMock struct {
	mock.Mock
}

var _ AuthServiceInterface = (*AuthServiceMock)(nil)

func (m *AuthServiceMock) Register(ctx context.Context, email, password, firstName, lastName string, role data.UserRole) (*RegisterResponse, error) {
	args := m.Called(ctx, email, password, firstName, lastName, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RegisterResponse), args.Error(1)
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password, ip string) (*LoginResponse, error) {
	args := m.Called(ctx, email, password, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LoginResponse), args.Error(1)
}

func (m *AuthServiceMock) VerifyEmailWithCode(ctx context.Context, email, code string) (*data.User, error) {
	args := m.Called(ctx, email, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.User), args.Error(1)
}

func (m *AuthServiceMock) SendVerificationCode(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *AuthServiceMock) ForgotPassword(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *AuthServiceMock) ResetPassword(ctx context.Context, token, password string) error {
	args := m.Called(ctx, token, password)
	return args.Error(0)
}

func (m *AuthServiceMock) GetProfile(ctx context.Context, userID string) (*data.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.User), args.Error(1)
}

type AccessRequestServiceMock struct {
	mock.Mock
}

var _ AccessRequestServiceInterface = (*AccessRequestServiceMock)(nil)

func (m *AccessRequestServiceMock) CreateAccessRequest(ctx context.Context, userID string, insert data.AccessRequestInsert) (*data.AccessRequest, error) {
	args := m.Called(ctx, userID, insert)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.AccessRequest), args.Error(1)
}

func (m *AccessRequestServiceMock) GetAccessRequests(ctx context.Context, queryParams *data.QueryParams) ([]data.AccessRequest, int, error) {
	args := m.Called(ctx, queryParams)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]data.AccessRequest), args.Int(1), args.Error(2)
}

func (m *AccessRequestServiceMock) ApproveAccessRequest(ctx context.Context, requestID string, reviewer *data.User) (*data.AccessRequest, error) {
	args := m.Called(ctx, requestID, reviewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.AccessRequest), args.Error(1)
}

func (m *AccessRequestServiceMock) RejectAccessRequest(ctx context.Context, requestID string, reviewer *data.User, reason string) (*data.AccessRequest, error) {
	args := m.Called(ctx, requestID, reviewer, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.AccessRequest), args.Error(1)
}

func (m *AccessRequestServiceMock) CancelAccessRequest(ctx context.Context, requestID, userID string) (*data.AccessRequest, error) {
	args := m.Called(ctx, requestID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.AccessRequest), args.Error(1)
}

type WaitlistServiceMock struct {
	mock.Mock
}

var _ WaitlistServiceInterface = (*WaitlistServiceMock)(nil)

func (m *WaitlistServiceMock) Subscribe(ctx context.Context, insert data.WaitlistInsert) (*data.WaitlistSubscriber, error) {
	args := m.Called(ctx, insert)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.WaitlistSubscriber), args.Error(1)
}

func (m *WaitlistServiceMock) Unsubscribe(ctx context.Context, email string) (*data.WaitlistSubscriber, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.WaitlistSubscriber), args.Error(1)
}

func (m *WaitlistServiceMock) GetSubscribers(ctx context.Context, queryParams *data.QueryParams) ([]data.WaitlistSubscriber, int, error) {
	args := m.Called(ctx, queryParams)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]data.WaitlistSubscriber), args.Int(1), args.Error(2)
}
