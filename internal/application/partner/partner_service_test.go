package partner_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apppartner "github.com/erp/stockledger/internal/application/partner"
	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/erp/stockledger/internal/infrastructure/persistence"
	"github.com/erp/stockledger/internal/infrastructure/persistence/sqlitetest"
)

func newPartnerService(t *testing.T) (*apppartner.PartnerService, *persistence.GormWarehouseRepository) {
	t.Helper()
	db := sqlitetest.Open(t)
	warehouses := persistence.NewGormWarehouseRepository(db)
	svc := apppartner.NewPartnerService(
		warehouses,
		persistence.NewGormVendorRepository(db),
		persistence.NewGormClientRepository(db),
		zaptest.NewLogger(t),
	)
	return svc, warehouses
}

func TestPartnerService_CreateWarehouse(t *testing.T) {
	ctx := context.Background()

	t.Run("only one warehouse stays default", func(t *testing.T) {
		svc, warehouses := newPartnerService(t)

		first, err := svc.CreateWarehouse(ctx, apppartner.CreateWarehouseInput{Code: "main", Name: "Main", IsDefault: true})
		require.NoError(t, err)
		assert.Equal(t, "MAIN", first.Code)

		second, err := svc.CreateWarehouse(ctx, apppartner.CreateWarehouseInput{Code: "east", Name: "East", IsDefault: true})
		require.NoError(t, err)

		def, err := warehouses.FindDefault(ctx)
		require.NoError(t, err)
		assert.Equal(t, second.ID, def.ID)

		reloaded, err := warehouses.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.False(t, reloaded.IsDefault)

		all, err := svc.ListWarehouses(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "EAST", all[0].Code)
	})

	t.Run("duplicate code already exists", func(t *testing.T) {
		svc, _ := newPartnerService(t)
		_, err := svc.CreateWarehouse(ctx, apppartner.CreateWarehouseInput{Code: "MAIN", Name: "Main"})
		require.NoError(t, err)

		_, err = svc.CreateWarehouse(ctx, apppartner.CreateWarehouseInput{Code: "main", Name: "Other"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("blank name fails validation", func(t *testing.T) {
		svc, _ := newPartnerService(t)
		_, err := svc.CreateWarehouse(ctx, apppartner.CreateWarehouseInput{Code: "MAIN"})
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})
}

func TestPartnerService_Contacts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPartnerService(t)

	vendor, err := svc.CreateVendor(ctx, apppartner.CreateContactInput{
		Code: "v-1", Name: "Acme Supply", Email: "sales@acme.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "V-1", vendor.Code)
	assert.True(t, vendor.IsActive)

	client, err := svc.CreateClient(ctx, apppartner.CreateContactInput{
		Code: "c-1", Name: "Bistro", CreditLimit: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	assert.True(t, client.CreditLimit.Equal(decimal.NewFromInt(5000)))

	_, err = svc.CreateClient(ctx, apppartner.CreateContactInput{
		Code: "c-2", Name: "Cafe", CreditLimit: decimal.NewFromInt(-1),
	})
	assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
}
