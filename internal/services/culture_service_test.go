package services

import (
	"context"
	"errors"
	"testing"

	"innkeeper/internal/caching"
	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type MockCultureContentRepository struct {
	mock.Mock
}

func (m *MockCultureContentRepository) Create(ctx context.Context, content *models.CultureContent) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}

func (m *MockCultureContentRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CultureContent, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CultureContent), args.Error(1)
}

func (m *MockCultureContentRepository) Update(ctx context.Context, content *models.CultureContent) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}

func (m *MockCultureContentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCultureContentRepository) List(ctx context.Context, tenantID uuid.UUID, language string) ([]*models.CultureContent, error) {
	args := m.Called(ctx, tenantID, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CultureContent), args.Error(1)
}

type CultureServiceTestSuite struct {
	suite.Suite
	redisServer *miniredis.Miniredis
	cacheSvc    caching.CacheService
	mockRepo    *MockCultureContentRepository
	service     CultureService
	tenantID    uuid.UUID
}

func (suite *CultureServiceTestSuite) SetupTest() {
	server, err := miniredis.Run()
	assert.NoError(suite.T(), err)
	suite.redisServer = server
	suite.cacheSvc = caching.NewRedisCacheServiceWithClient(redis.NewClient(&redis.Options{Addr: server.Addr()}))

	suite.mockRepo = &MockCultureContentRepository{}
	suite.service = NewCultureService(suite.mockRepo, suite.cacheSvc, zap.NewNop())
	suite.tenantID = uuid.New()

	suite.mockRepo.Test(suite.T())
}

func (suite *CultureServiceTestSuite) TearDownTest() {
	suite.redisServer.Close()
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestCultureServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CultureServiceTestSuite))
}

func (suite *CultureServiceTestSuite) TestListContent_CachesPerLanguage() {
	ctx := context.Background()
	items := []*models.CultureContent{
		{ID: uuid.New(), TenantID: suite.tenantID, Title: "Obon Festival", Content: "...", Language: "ja"},
	}

	// One database hit; the repeat is served from the cache.
	suite.mockRepo.On("List", ctx, suite.tenantID, "ja").Return(items, nil).Once()

	for i := 0; i < 2; i++ {
		got, err := suite.service.ListContent(ctx, suite.tenantID, "ja")
		assert.NoError(suite.T(), err)
		assert.Len(suite.T(), got, 1)
		assert.Equal(suite.T(), "Obon Festival", got[0].Title)
	}
}

func (suite *CultureServiceTestSuite) TestListContent_EmptyLanguageMeansAll() {
	ctx := context.Background()

	suite.mockRepo.On("List", ctx, suite.tenantID, "").Return([]*models.CultureContent{}, nil).Once()

	got, err := suite.service.ListContent(ctx, suite.tenantID, "")
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), got)
}

func (suite *CultureServiceTestSuite) TestCreateContent_FlushesListings() {
	ctx := context.Background()
	first := []*models.CultureContent{
		{ID: uuid.New(), TenantID: suite.tenantID, Title: "Night Market", Content: "...", Language: "zh_TW"},
	}
	second := append(first, &models.CultureContent{ID: uuid.New(), TenantID: suite.tenantID, Title: "Tea House", Content: "...", Language: "zh_TW"})

	suite.mockRepo.On("List", ctx, suite.tenantID, "zh_TW").Return(first, nil).Once()

	got, err := suite.service.ListContent(ctx, suite.tenantID, "zh_TW")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), got, 1)

	suite.mockRepo.On("Create", ctx, mock.AnythingOfType("*models.CultureContent")).Return(nil)

	err = suite.service.CreateContent(ctx, suite.tenantID, &models.CultureContent{
		Title:    "Tea House",
		Content:  "...",
		Language: "zh_TW",
	})
	assert.NoError(suite.T(), err)

	// The write invalidated the listing; the next read goes back to the
	// database and sees the new row.
	suite.mockRepo.On("List", ctx, suite.tenantID, "zh_TW").Return(second, nil).Once()

	got, err = suite.service.ListContent(ctx, suite.tenantID, "zh_TW")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), got, 2)
}

func (suite *CultureServiceTestSuite) TestCreateContent_StampsAmbientTenant() {
	ctx := context.Background()

	suite.mockRepo.On("Create", ctx, mock.AnythingOfType("*models.CultureContent")).Return(nil).Run(func(args mock.Arguments) {
		content := args.Get(1).(*models.CultureContent)
		assert.Equal(suite.T(), suite.tenantID, content.TenantID)
		assert.NotEqual(suite.T(), uuid.Nil, content.ID)
	})

	err := suite.service.CreateContent(ctx, suite.tenantID, &models.CultureContent{
		Title:    "Hot Springs",
		Content:  "...",
		Language: "en",
	})
	assert.NoError(suite.T(), err)
}

func (suite *CultureServiceTestSuite) TestCreateContent_PayloadNamingOtherTenantIsRejected() {
	ctx := context.Background()

	err := suite.service.CreateContent(ctx, suite.tenantID, &models.CultureContent{
		TenantID: uuid.New(),
		Title:    "Hot Springs",
		Content:  "...",
		Language: "en",
	})
	assert.ErrorIs(suite.T(), err, common.ErrCrossTenantWrite)
	suite.mockRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *CultureServiceTestSuite) TestCreateContent_UnsupportedLanguage() {
	ctx := context.Background()

	err := suite.service.CreateContent(ctx, suite.tenantID, &models.CultureContent{
		Title:    "Hot Springs",
		Content:  "...",
		Language: "fr",
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "unsupported language")
}

func (suite *CultureServiceTestSuite) TestCreateContent_MissingTitle() {
	ctx := context.Background()

	err := suite.service.CreateContent(ctx, suite.tenantID, &models.CultureContent{
		Content:  "...",
		Language: "en",
	})
	assert.Error(suite.T(), err)
}

func (suite *CultureServiceTestSuite) TestUpdateContent_RepositoryErrorPropagates() {
	ctx := context.Background()

	suite.mockRepo.On("Update", ctx, mock.AnythingOfType("*models.CultureContent")).Return(errors.New("database connection failed"))

	err := suite.service.UpdateContent(ctx, suite.tenantID, &models.CultureContent{
		ID:       uuid.New(),
		Title:    "Hot Springs",
		Content:  "...",
		Language: "en",
	})
	assert.Error(suite.T(), err)
}

func (suite *CultureServiceTestSuite) TestDeleteContent_FlushesListings() {
	ctx := context.Background()
	contentID := uuid.New()

	suite.mockRepo.On("List", ctx, suite.tenantID, "").Return([]*models.CultureContent{}, nil).Twice()
	suite.mockRepo.On("Delete", ctx, suite.tenantID, contentID).Return(nil)

	_, err := suite.service.ListContent(ctx, suite.tenantID, "")
	assert.NoError(suite.T(), err)

	assert.NoError(suite.T(), suite.service.DeleteContent(ctx, suite.tenantID, contentID))

	// Second List hits the repository again because the cache was flushed.
	_, err = suite.service.ListContent(ctx, suite.tenantID, "")
	assert.NoError(suite.T(), err)
}

func (suite *CultureServiceTestSuite) TestGetContent_WrongTenantIsNotFound() {
	ctx := context.Background()
	contentID := uuid.New()

	suite.mockRepo.On("GetByID", ctx, suite.tenantID, contentID).Return((*models.CultureContent)(nil), common.ErrNotFound)

	content, err := suite.service.GetContent(ctx, suite.tenantID, contentID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.Nil(suite.T(), content)
}
