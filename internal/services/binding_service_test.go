package services

import (
	"context"
	"errors"
	"testing"

	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ModuleBindingServiceTestSuite struct {
	suite.Suite
	mockBindings *MockModuleBindingRepository
	mockCache    *MockCacheService
	service      ModuleBindingService
}

func (suite *ModuleBindingServiceTestSuite) SetupTest() {
	suite.mockBindings = &MockModuleBindingRepository{}
	suite.mockCache = &MockCacheService{}
	suite.service = NewModuleBindingService(suite.mockBindings, suite.mockCache, zap.NewNop())

	suite.mockBindings.Test(suite.T())
	suite.mockCache.Test(suite.T())
}

func (suite *ModuleBindingServiceTestSuite) TearDownTest() {
	suite.mockBindings.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func TestModuleBindingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ModuleBindingServiceTestSuite))
}

func (suite *ModuleBindingServiceTestSuite) TestSetBinding_ReplacesSetAndFlushes() {
	ctx := context.Background()
	tenantID := uuid.New()
	roleID := uuid.New()

	suite.mockBindings.On("Upsert", ctx, mock.AnythingOfType("*models.ModuleBinding")).Return(nil).Run(func(args mock.Arguments) {
		binding := args.Get(1).(*models.ModuleBinding)
		assert.Equal(suite.T(), roleID, binding.RoleID)
		assert.Equal(suite.T(), tenantID, binding.TenantID)
		assert.Equal(suite.T(), models.ModuleIoT, binding.Module)
		assert.Equal(suite.T(), map[string]bool{"read": true, "control": true}, binding.Capabilities)
	})
	suite.mockCache.On("Invalidate", ctx, tenantID, "authz").Return(nil)

	err := suite.service.SetBinding(ctx, tenantID, roleID, models.ModuleIoT, map[string]bool{"read": true, "control": true})
	assert.NoError(suite.T(), err)
}

func (suite *ModuleBindingServiceTestSuite) TestSetBinding_NilCapabilitiesBecomeEmptySet() {
	ctx := context.Background()
	tenantID := uuid.New()

	suite.mockBindings.On("Upsert", ctx, mock.AnythingOfType("*models.ModuleBinding")).Return(nil).Run(func(args mock.Arguments) {
		binding := args.Get(1).(*models.ModuleBinding)
		assert.NotNil(suite.T(), binding.Capabilities)
		assert.Empty(suite.T(), binding.Capabilities)
	})
	suite.mockCache.On("Invalidate", ctx, tenantID, "authz").Return(nil)

	err := suite.service.SetBinding(ctx, tenantID, uuid.New(), models.ModuleSeo, nil)
	assert.NoError(suite.T(), err)
}

func (suite *ModuleBindingServiceTestSuite) TestSetBinding_ForeignRoleIsMismatch() {
	ctx := context.Background()
	tenantID := uuid.New()

	suite.mockBindings.On("Upsert", ctx, mock.AnythingOfType("*models.ModuleBinding")).Return(common.ErrTenantMismatch)

	err := suite.service.SetBinding(ctx, tenantID, uuid.New(), models.ModuleIoT, map[string]bool{"read": true})
	assert.ErrorIs(suite.T(), err, common.ErrTenantMismatch)
	suite.mockCache.AssertNotCalled(suite.T(), "Invalidate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ModuleBindingServiceTestSuite) TestSetBinding_CacheFlushFailureFailsTheWrite() {
	ctx := context.Background()
	tenantID := uuid.New()

	suite.mockBindings.On("Upsert", ctx, mock.AnythingOfType("*models.ModuleBinding")).Return(nil)
	suite.mockCache.On("Invalidate", ctx, tenantID, "authz").Return(errors.New("redis unreachable"))

	err := suite.service.SetBinding(ctx, tenantID, uuid.New(), models.ModuleIoT, map[string]bool{"read": true})
	assert.Error(suite.T(), err)
}

func (suite *ModuleBindingServiceTestSuite) TestGetBinding_AbsentIsEmptySet() {
	ctx := context.Background()
	tenantID := uuid.New()
	roleID := uuid.New()

	suite.mockBindings.On("Get", ctx, tenantID, roleID, models.ModuleCulture).Return(&models.ModuleBinding{
		RoleID:       roleID,
		TenantID:     tenantID,
		Module:       models.ModuleCulture,
		Capabilities: map[string]bool{},
	}, nil)

	caps, err := suite.service.GetBinding(ctx, tenantID, roleID, models.ModuleCulture)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), caps)
}

func (suite *ModuleBindingServiceTestSuite) TestDeleteBinding_FlushesDecisionCache() {
	ctx := context.Background()
	tenantID := uuid.New()
	roleID := uuid.New()

	suite.mockBindings.On("Delete", ctx, tenantID, roleID, models.ModuleIoT).Return(nil)
	suite.mockCache.On("Invalidate", ctx, tenantID, "authz").Return(nil)

	err := suite.service.DeleteBinding(ctx, tenantID, roleID, models.ModuleIoT)
	assert.NoError(suite.T(), err)
}

func (suite *ModuleBindingServiceTestSuite) TestDeleteBinding_AbsentIsNotFound() {
	ctx := context.Background()
	tenantID := uuid.New()
	roleID := uuid.New()

	suite.mockBindings.On("Delete", ctx, tenantID, roleID, models.ModuleIoT).Return(common.ErrNotFound)

	err := suite.service.DeleteBinding(ctx, tenantID, roleID, models.ModuleIoT)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}
