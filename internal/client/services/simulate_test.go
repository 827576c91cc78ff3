package services

import (
	"context"
	"testing"

	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/client/repositories/branches"
	"github.com/ariefr/credline/internal/client/repositories/products"
	"github.com/ariefr/credline/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogFixture(t *testing.T) (CatalogService, *fakeGateway) {
	t.Helper()
	db := setupDB(t)
	gw := newFakeGateway()
	svc := NewCatalogService(gw, products.NewSQLiteRepository(db), branches.NewSQLiteRepository(db), testLogger())
	return svc, gw
}

func seedProduct(t *testing.T, svc CatalogService, gw *fakeGateway, p models.Product) {
	t.Helper()
	gw.products = []models.Product{p}
	for range svc.Products(context.Background()) {
	}
}

func TestSimulateFlatRateSchedule(t *testing.T) {
	svc, gw := newCatalogFixture(t)
	ctx := context.Background()
	seedProduct(t, svc, gw, models.Product{
		ID: 3, Name: "Micro", MinAmount: 1_000_000, MaxAmount: 50_000_000, AnnualRate: 12, Tenors: []int{3, 6, 12},
	})

	sim, err := Simulate(ctx, svc, 3, 12_000_000, 12)
	require.NoError(t, err)

	// 12% p.a. flat on 12M is 120k per month.
	assert.Equal(t, int64(120_000), sim.Schedule[0].Interest)
	assert.Equal(t, int64(1_000_000), sim.Schedule[0].Principal)
	assert.Equal(t, int64(1_120_000), sim.Schedule[0].Total)
	assert.Equal(t, int64(1_440_000), sim.TotalInterest)
	assert.Equal(t, int64(13_440_000), sim.TotalPayment)
	require.Len(t, sim.Schedule, 12)
	assert.Equal(t, int64(0), sim.Schedule[11].Remaining)
}

func TestSimulatePrincipalRemainderInFinalInstallment(t *testing.T) {
	svc, gw := newCatalogFixture(t)
	ctx := context.Background()
	seedProduct(t, svc, gw, models.Product{
		ID: 3, Name: "Micro", MinAmount: 100, MaxAmount: 50_000_000, AnnualRate: 12, Tenors: []int{3},
	})

	sim, err := Simulate(ctx, svc, 3, 1_000_000, 3)
	require.NoError(t, err)

	var principal int64
	for _, row := range sim.Schedule {
		principal += row.Principal
	}
	assert.Equal(t, int64(1_000_000), principal)
	assert.GreaterOrEqual(t, sim.Schedule[2].Principal, sim.Schedule[0].Principal)
}

func TestSimulateValidation(t *testing.T) {
	svc, gw := newCatalogFixture(t)
	ctx := context.Background()
	seedProduct(t, svc, gw, models.Product{
		ID: 3, Name: "Micro", MinAmount: 1_000_000, MaxAmount: 5_000_000, AnnualRate: 12, Tenors: []int{3, 6},
	})

	_, err := Simulate(ctx, svc, 3, 0, 6)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = Simulate(ctx, svc, 3, 2_000_000, 0)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = Simulate(ctx, svc, 3, 500_000, 6)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = Simulate(ctx, svc, 3, 2_000_000, 9)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = Simulate(ctx, svc, 99, 2_000_000, 6)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCatalogProductsCacheThenRefresh(t *testing.T) {
	svc, gw := newCatalogFixture(t)
	ctx := context.Background()
	gw.products = []models.Product{{ID: 1, Name: "Micro", MinAmount: 1, MaxAmount: 2, AnnualRate: 10, Tenors: []int{3}}}

	var got [][]models.Product
	for s := range svc.Products(ctx) {
		got = append(got, s)
	}
	require.Len(t, got, 2)
	assert.Empty(t, got[0])
	require.Len(t, got[1], 1)

	// Second read serves the refreshed snapshot from cache even offline.
	gw.setOnline(false)
	got = nil
	for s := range svc.Products(ctx) {
		got = append(got, s)
	}
	require.Len(t, got, 1)
	require.Len(t, got[0], 1)
	assert.Equal(t, "Micro", got[0][0].Name)
}

func TestCatalogBranchesOfflineServesCache(t *testing.T) {
	svc, gw := newCatalogFixture(t)
	ctx := context.Background()
	gw.branches = []models.Branch{{ID: 1, Name: "HQ", Address: "Jl. Sudirman 1", Phone: "021-555"}}

	for range svc.Branches(ctx) {
	}

	gw.setOnline(false)
	var got [][]models.Branch
	for s := range svc.Branches(ctx) {
		got = append(got, s)
	}
	require.Len(t, got, 1)
	require.Len(t, got[0], 1)
	assert.Equal(t, "HQ", got[0][0].Name)
}
