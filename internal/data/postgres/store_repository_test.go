package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/pos-cash-recon/internal/domain/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &StoreRepository{querier: mock, logger: newTestLogger()}
	s := &store.Store{
		POSID:     "store-1",
		Name:      "ZangTee - 111 Láng Hạ",
		ShortName: "ZangTee -",
		BrandID:   "brand-1",
		CompanyID: "company-1",
		Active:    true,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO stores`).
			WithArgs(s.POSID, s.Name, s.ShortName, s.BrandID, s.CompanyID, s.Active).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Upsert(ctx, s)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectExec(`INSERT INTO stores`).
			WithArgs(s.POSID, s.Name, s.ShortName, s.BrandID, s.CompanyID, s.Active).
			WillReturnError(dbErr)

		err := repo.Upsert(ctx, s)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upsert store")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStoreRepository_ListActive(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &StoreRepository{querier: mock, logger: newTestLogger()}
	now := time.Now()

	rows := pgxmock.NewRows([]string{"pos_id", "name", "short_name", "brand_uid", "company_uid", "active", "created_at", "updated_at"}).
		AddRow("store-1", "ZangTee - 111 Láng Hạ", "ZangTee -", "brand-1", "company-1", true, now, now)
	mock.ExpectQuery(`WHERE active`).WillReturnRows(rows)

	stores, err := repo.ListActive(ctx)
	assert.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "store-1", stores[0].POSID)
	assert.True(t, stores[0].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}
