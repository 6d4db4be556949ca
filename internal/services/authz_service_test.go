package services

import (
	"context"
	"errors"
	"testing"

	"innkeeper/internal/caching"
	"innkeeper/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type MockRBACService struct {
	mock.Mock
}

func (m *MockRBACService) DefinePermission(ctx context.Context, tenantID uuid.UUID, name string, description *string) (*models.Permission, error) {
	args := m.Called(ctx, tenantID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Permission), args.Error(1)
}

func (m *MockRBACService) DefineRole(ctx context.Context, tenantID uuid.UUID, name string, description *string) (*models.Role, error) {
	args := m.Called(ctx, tenantID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRBACService) Grant(ctx context.Context, tenantID, roleID, permissionID uuid.UUID) error {
	args := m.Called(ctx, tenantID, roleID, permissionID)
	return args.Error(0)
}

func (m *MockRBACService) Revoke(ctx context.Context, tenantID, roleID, permissionID uuid.UUID) error {
	args := m.Called(ctx, tenantID, roleID, permissionID)
	return args.Error(0)
}

func (m *MockRBACService) AssignRole(ctx context.Context, tenantID, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, tenantID, userID, roleID)
	return args.Error(0)
}

func (m *MockRBACService) UnassignRole(ctx context.Context, tenantID, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, tenantID, userID, roleID)
	return args.Error(0)
}

func (m *MockRBACService) UserHasPermission(ctx context.Context, userID, tenantID uuid.UUID, permissionName string) (bool, error) {
	args := m.Called(ctx, userID, tenantID, permissionName)
	return args.Bool(0), args.Error(1)
}

func (m *MockRBACService) GetUserPermissions(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRBACService) GetUserRoles(ctx context.Context, userID, tenantID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockRBACService) ListRoles(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Role, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Role), args.Error(1)
}

func (m *MockRBACService) ListPermissions(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Permission, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Permission), args.Error(1)
}

type MockModuleBindingRepository struct {
	mock.Mock
}

func (m *MockModuleBindingRepository) Upsert(ctx context.Context, binding *models.ModuleBinding) error {
	args := m.Called(ctx, binding)
	return args.Error(0)
}

func (m *MockModuleBindingRepository) Get(ctx context.Context, tenantID, roleID uuid.UUID, module string) (*models.ModuleBinding, error) {
	args := m.Called(ctx, tenantID, roleID, module)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModuleBinding), args.Error(1)
}

func (m *MockModuleBindingRepository) Delete(ctx context.Context, tenantID, roleID uuid.UUID, module string) error {
	args := m.Called(ctx, tenantID, roleID, module)
	return args.Error(0)
}

func (m *MockModuleBindingRepository) ListByRole(ctx context.Context, tenantID, roleID uuid.UUID) ([]*models.ModuleBinding, error) {
	args := m.Called(ctx, tenantID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ModuleBinding), args.Error(1)
}

type AuthzServiceTestSuite struct {
	suite.Suite
	redisServer  *miniredis.Miniredis
	cacheSvc     caching.CacheService
	mockRBAC     *MockRBACService
	mockBindings *MockModuleBindingRepository
	service      AuthzService
	userID       uuid.UUID
	tenantID     uuid.UUID
}

func (suite *AuthzServiceTestSuite) SetupTest() {
	server, err := miniredis.Run()
	assert.NoError(suite.T(), err)
	suite.redisServer = server
	suite.cacheSvc = caching.NewRedisCacheServiceWithClient(redis.NewClient(&redis.Options{Addr: server.Addr()}))

	suite.mockRBAC = &MockRBACService{}
	suite.mockBindings = &MockModuleBindingRepository{}
	suite.service = NewAuthzService(suite.mockRBAC, suite.mockBindings, suite.cacheSvc, zap.NewNop())
	suite.userID = uuid.New()
	suite.tenantID = uuid.New()

	suite.mockRBAC.Test(suite.T())
	suite.mockBindings.Test(suite.T())
}

func (suite *AuthzServiceTestSuite) TearDownTest() {
	suite.redisServer.Close()
	suite.mockRBAC.AssertExpectations(suite.T())
	suite.mockBindings.AssertExpectations(suite.T())
}

func TestAuthzServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthzServiceTestSuite))
}

func (suite *AuthzServiceTestSuite) TestPermissionRequirement_Allowed() {
	ctx := context.Background()

	suite.mockRBAC.On("UserHasPermission", ctx, suite.userID, suite.tenantID, "manage:bookings").Return(true, nil)

	allowed, err := suite.service.Authorize(ctx, suite.userID, suite.tenantID, PermissionRequirement{Name: "manage:bookings"})
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), allowed)
}

func (suite *AuthzServiceTestSuite) TestPermissionRequirement_DenyIsNotAnError() {
	ctx := context.Background()

	suite.mockRBAC.On("UserHasPermission", ctx, suite.userID, suite.tenantID, "manage:bookings").Return(false, nil)

	allowed, err := suite.service.Authorize(ctx, suite.userID, suite.tenantID, PermissionRequirement{Name: "manage:bookings"})
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), allowed)
}

func (suite *AuthzServiceTestSuite) TestModuleRequirement_CapabilityGranted() {
	ctx := context.Background()
	roleID := uuid.New()

	suite.mockRBAC.On("GetUserRoles", ctx, suite.userID, suite.tenantID).Return([]uuid.UUID{roleID}, nil)
	suite.mockBindings.On("Get", ctx, suite.tenantID, roleID, models.ModuleIoT).Return(&models.ModuleBinding{
		RoleID:       roleID,
		TenantID:     suite.tenantID,
		Module:       models.ModuleIoT,
		Capabilities: map[string]bool{"read": true, "control": true},
	}, nil)

	allowed, err := suite.service.Authorize(ctx, suite.userID, suite.tenantID, ModuleRequirement{Module: models.ModuleIoT, Capability: "control"})
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), allowed)
}

func (suite *AuthzServiceTestSuite) TestModuleRequirement_FlagAbsentDenies() {
	ctx := context.Background()
	roleID := uuid.New()

	suite.mockRBAC.On("GetUserRoles", ctx, suite.userID, suite.tenantID).Return([]uuid.UUID{roleID}, nil)
	suite.mockBindings.On("Get", ctx, suite.tenantID, roleID, models.ModuleIoT).Return(&models.ModuleBinding{
		RoleID:       roleID,
		TenantID:     suite.tenantID,
		Module:       models.ModuleIoT,
		Capabilities: map[string]bool{"read": true, "write": false},
	}, nil)

	allowed, err := suite.service.Authorize(ctx, suite.userID, suite.tenantID, ModuleRequirement{Module: models.ModuleIoT, Capability: "write"})
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), allowed)
}

func (suite *AuthzServiceTestSuite) TestModuleRequirement_AbsentBindingDenies() {
	ctx := context.Background()
	roleID := uuid.New()

	suite.mockRBAC.On("GetUserRoles", ctx, suite.userID, suite.tenantID).Return([]uuid.UUID{roleID}, nil)
	suite.mockBindings.On("Get", ctx, suite.tenantID, roleID, models.ModuleSeo).Return(&models.ModuleBinding{
		RoleID:       roleID,
		TenantID:     suite.tenantID,
		Module:       models.ModuleSeo,
		Capabilities: map[string]bool{},
	}, nil)

	allowed, err := suite.service.Authorize(ctx, suite.userID, suite.tenantID, ModuleRequirement{Module: models.ModuleSeo, Capability: "read"})
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), allowed)
}

func (suite *AuthzServiceTestSuite) TestModuleRequirement_AnyRoleSuffices() {
	ctx := context.Background()
	roleA := uuid.New()
	roleB := uuid.New()

	suite.mockRBAC.On("GetUserRoles", ctx, suite.userID, suite.tenantID).Return([]uuid.UUID{roleA, roleB}, nil)
	suite.mockBindings.On("Get", ctx, suite.tenantID, roleA, models.ModuleBookings).Return(&models.ModuleBinding{
		Capabilities: map[string]bool{},
	}, nil)
	suite.mockBindings.On("Get", ctx, suite.tenantID, roleB, models.ModuleBookings).Return(&models.ModuleBinding{
		Capabilities: map[string]bool{"read": true},
	}, nil)

	allowed, err := suite.service.Authorize(ctx, suite.userID, suite.tenantID, ModuleRequirement{Module: models.ModuleBookings, Capability: "read"})
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), allowed)
}

func (suite *AuthzServiceTestSuite) TestModuleRequirement_NoRolesDenies() {
	ctx := context.Background()

	suite.mockRBAC.On("GetUserRoles", ctx, suite.userID, suite.tenantID).Return([]uuid.UUID{}, nil)

	allowed, err := suite.service.Authorize(ctx, suite.userID, suite.tenantID, ModuleRequirement{Module: models.ModuleBookings, Capability: "read"})
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), allowed)
}

func (suite *AuthzServiceTestSuite) TestNilPrincipalDenies() {
	ctx := context.Background()

	allowed, err := suite.service.Authorize(ctx, uuid.Nil, suite.tenantID, PermissionRequirement{Name: "manage:users"})
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), allowed)
}

func (suite *AuthzServiceTestSuite) TestNilTenantDenies() {
	ctx := context.Background()

	allowed, err := suite.service.Authorize(ctx, suite.userID, uuid.Nil, PermissionRequirement{Name: "manage:users"})
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), allowed)
}

func (suite *AuthzServiceTestSuite) TestDecisionIsMemoized() {
	ctx := context.Background()

	// The underlying check runs once; the second ask is served from cache.
	suite.mockRBAC.On("UserHasPermission", ctx, suite.userID, suite.tenantID, "manage:users").Return(true, nil).Once()

	for i := 0; i < 2; i++ {
		allowed, err := suite.service.Authorize(ctx, suite.userID, suite.tenantID, PermissionRequirement{Name: "manage:users"})
		assert.NoError(suite.T(), err)
		assert.True(suite.T(), allowed)
	}
}

func (suite *AuthzServiceTestSuite) TestNegativeDecisionIsMemoizedToo() {
	ctx := context.Background()

	suite.mockRBAC.On("UserHasPermission", ctx, suite.userID, suite.tenantID, "manage:users").Return(false, nil).Once()

	for i := 0; i < 2; i++ {
		allowed, err := suite.service.Authorize(ctx, suite.userID, suite.tenantID, PermissionRequirement{Name: "manage:users"})
		assert.NoError(suite.T(), err)
		assert.False(suite.T(), allowed)
	}
}

func (suite *AuthzServiceTestSuite) TestTagFlushForcesReevaluation() {
	ctx := context.Background()

	suite.mockRBAC.On("UserHasPermission", ctx, suite.userID, suite.tenantID, "manage:users").Return(false, nil).Once()

	allowed, err := suite.service.Authorize(ctx, suite.userID, suite.tenantID, PermissionRequirement{Name: "manage:users"})
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), allowed)

	// A grant write flushes the tag; the next ask re-evaluates.
	assert.NoError(suite.T(), suite.cacheSvc.Invalidate(ctx, suite.tenantID, "authz"))

	suite.mockRBAC.On("UserHasPermission", ctx, suite.userID, suite.tenantID, "manage:users").Return(true, nil).Once()

	allowed, err = suite.service.Authorize(ctx, suite.userID, suite.tenantID, PermissionRequirement{Name: "manage:users"})
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), allowed)
}

func (suite *AuthzServiceTestSuite) TestDecisionsDoNotCrossTenants() {
	ctx := context.Background()
	otherTenant := uuid.New()

	suite.mockRBAC.On("UserHasPermission", ctx, suite.userID, suite.tenantID, "manage:users").Return(true, nil).Once()
	suite.mockRBAC.On("UserHasPermission", ctx, suite.userID, otherTenant, "manage:users").Return(false, nil).Once()

	allowed, err := suite.service.Authorize(ctx, suite.userID, suite.tenantID, PermissionRequirement{Name: "manage:users"})
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), allowed)

	// Same principal, same requirement, other tenant: its own evaluation,
	// its own answer.
	allowed, err = suite.service.Authorize(ctx, suite.userID, otherTenant, PermissionRequirement{Name: "manage:users"})
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), allowed)
}

func (suite *AuthzServiceTestSuite) TestEvaluationErrorPropagates() {
	ctx := context.Background()

	suite.mockRBAC.On("UserHasPermission", ctx, suite.userID, suite.tenantID, "manage:users").Return(false, errors.New("database connection failed"))

	allowed, err := suite.service.Authorize(ctx, suite.userID, suite.tenantID, PermissionRequirement{Name: "manage:users"})
	assert.Error(suite.T(), err)
	assert.False(suite.T(), allowed)
}
