package repositories

import (
	"context"
	"testing"
	"time"

	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PermissionRepoTestSuite struct {
	suite.Suite
	mockDB pgxmock.PgxPoolIface
	repo   PermissionRepository
}

func (suite *PermissionRepoTestSuite) SetupTest() {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mockDB = mockDB
	suite.repo = NewPermissionRepo(mockDB)
}

func (suite *PermissionRepoTestSuite) TearDownTest() {
	suite.mockDB.Close()
}

func TestPermissionRepoTestSuite(t *testing.T) {
	suite.Run(t, new(PermissionRepoTestSuite))
}

func permissionRow(perm *models.Permission) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "tenant_id", "name", "guard", "description", "created_at"}).
		AddRow(perm.ID, perm.TenantID, perm.Name, perm.Guard, perm.Description, time.Now())
}

func (suite *PermissionRepoTestSuite) TestUpsert_Insert() {
	ctx := context.Background()
	perm := &models.Permission{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Name:     "manage:culture",
		Guard:    models.GuardAPI,
	}

	suite.mockDB.ExpectExec(`INSERT INTO permissions`).
		WithArgs(perm.ID, perm.TenantID, perm.Name, perm.Guard, perm.Description).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mockDB.ExpectQuery(`SELECT id, tenant_id, name, guard, description, created_at`).
		WithArgs(perm.TenantID, perm.Name, models.GuardAPI).
		WillReturnRows(permissionRow(perm))

	stored, err := suite.repo.Upsert(ctx, perm)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), perm.ID, stored.ID)
	assert.Equal(suite.T(), "manage:culture", stored.Name)
	assert.NoError(suite.T(), suite.mockDB.ExpectationsWereMet())
}

func (suite *PermissionRepoTestSuite) TestUpsert_RedefiningReturnsExistingRow() {
	ctx := context.Background()
	tenantID := uuid.New()
	existing := &models.Permission{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     "manage:culture",
		Guard:    models.GuardAPI,
	}
	redefined := &models.Permission{
		ID:       uuid.New(), // new candidate id, never stored
		TenantID: tenantID,
		Name:     "manage:culture",
		Guard:    models.GuardAPI,
	}

	// ON CONFLICT DO NOTHING: zero rows affected, the re-read returns the
	// row that won.
	suite.mockDB.ExpectExec(`INSERT INTO permissions`).
		WithArgs(redefined.ID, tenantID, redefined.Name, redefined.Guard, redefined.Description).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	suite.mockDB.ExpectQuery(`SELECT id, tenant_id, name, guard, description, created_at`).
		WithArgs(tenantID, redefined.Name, models.GuardAPI).
		WillReturnRows(permissionRow(existing))

	stored, err := suite.repo.Upsert(ctx, redefined)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), existing.ID, stored.ID)
	assert.NoError(suite.T(), suite.mockDB.ExpectationsWereMet())
}

func (suite *PermissionRepoTestSuite) TestGetByName_WrongTenantIsNotFound() {
	ctx := context.Background()
	tenantID := uuid.New()

	suite.mockDB.ExpectQuery(`SELECT id, tenant_id, name, guard, description, created_at`).
		WithArgs(tenantID, "manage:culture", models.GuardAPI).
		WillReturnError(pgx.ErrNoRows)

	perm, err := suite.repo.GetByName(ctx, tenantID, "manage:culture")
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.Nil(suite.T(), perm)
	assert.NoError(suite.T(), suite.mockDB.ExpectationsWereMet())
}

func (suite *PermissionRepoTestSuite) TestDelete_WrongTenantIsNotFound() {
	ctx := context.Background()
	tenantID := uuid.New()
	permissionID := uuid.New()

	suite.mockDB.ExpectExec(`DELETE FROM permissions`).
		WithArgs(tenantID, permissionID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := suite.repo.Delete(ctx, tenantID, permissionID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.NoError(suite.T(), suite.mockDB.ExpectationsWereMet())
}
