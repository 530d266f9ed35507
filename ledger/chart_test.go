package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/bookkeeper/ledger"
)

func TestSeedChart_CreatesDefaultAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entity, err := f.store.CreateEntity(ctx, ledger.Entity{Name: "Fresh Co", Type: "company"})
	require.NoError(t, err)

	created, err := ledger.SeedChart(ctx, f.store, entity.ID)
	require.NoError(t, err)
	assert.Len(t, created, len(ledger.DefaultChart()))

	accounts, err := f.store.ListAccounts(ctx, entity.ID)
	require.NoError(t, err)
	assert.Len(t, accounts, len(ledger.DefaultChart()))
}

func TestSeedChart_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entity, err := f.store.CreateEntity(ctx, ledger.Entity{Name: "Fresh Co", Type: "company"})
	require.NoError(t, err)

	_, err = ledger.SeedChart(ctx, f.store, entity.ID)
	require.NoError(t, err)
	again, err := ledger.SeedChart(ctx, f.store, entity.ID)
	require.NoError(t, err)
	assert.Len(t, again, len(ledger.DefaultChart()))

	accounts, err := f.store.ListAccounts(ctx, entity.ID)
	require.NoError(t, err)
	assert.Len(t, accounts, len(ledger.DefaultChart()), "no duplicates on reseed")
}

func TestDefaultChart_TypesAreValid(t *testing.T) {
	for _, a := range ledger.DefaultChart() {
		assert.True(t, ledger.ValidAccountType(string(a.Type)), "account %q", a.Name)
	}
}
