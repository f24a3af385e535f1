package ledger

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medchain/medchain-api/internal/model"
	"github.com/medchain/medchain-api/internal/repository/leveldb"
	"github.com/medchain/medchain-api/pkg/logger"
	"github.com/medchain/medchain-api/pkg/metrics"
	"github.com/medchain/medchain-api/pkg/worker"
)

func newTestService(t *testing.T) (*Service, *worker.ManualScheduler) {
	t.Helper()

	store, err := leveldb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	scheduler := worker.NewManualScheduler()
	svc := NewService(
		leveldb.NewLedgerRepository(store),
		scheduler,
		time.Second,
		logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard, TimeFormat: time.RFC3339}),
		metrics.NewMetrics(prometheus.NewRegistry()),
	)
	require.NoError(t, svc.Bootstrap(context.Background()))
	return svc, scheduler
}

func TestBootstrapSeedsGenesis(t *testing.T) {
	svc, _ := newTestService(t)

	block, err := svc.GetLatestBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), block.Number)
	assert.Equal(t, model.GenesisHash, block.Hash)
	assert.Equal(t, model.GenesisPreviousHash, block.PreviousHash)
	assert.Empty(t, block.Transactions)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddTransaction(ctx, "GrantConsent", []string{"a"}, uuid.New())
	require.NoError(t, err)
	require.NoError(t, svc.MineBlock(ctx))

	require.NoError(t, svc.Bootstrap(ctx))

	block, err := svc.GetLatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), block.Number)
}

func TestMineSealsPendingInOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	caller := uuid.New()

	// Enough transactions to cross the single-digit key boundary.
	var appended []uuid.UUID
	for i := 0; i < 12; i++ {
		tx, err := svc.AddTransaction(ctx, "UploadRecord", []string{fmt.Sprintf("arg-%d", i)}, caller)
		require.NoError(t, err)
		assert.Equal(t, model.TxStatusValid, tx.Status)
		appended = append(appended, tx.TxID)
	}

	pending, err := svc.PendingTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 12)

	require.NoError(t, svc.MineBlock(ctx))

	block, err := svc.GetLatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), block.Number)
	assert.Equal(t, model.GenesisHash, block.PreviousHash)
	require.Len(t, block.Transactions, 12)
	for i, tx := range block.Transactions {
		assert.Equal(t, appended[i], tx.TxID)
	}

	pending, err = svc.PendingTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMineEmptyPoolIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.MineBlock(ctx))
	require.NoError(t, svc.MineBlock(ctx))

	blocks, err := svc.ListBlocks(ctx)
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
}

func TestHashLinkage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for round := 0; round < 4; round++ {
		_, err := svc.AddTransaction(ctx, "GrantConsent", []string{"x"}, uuid.New())
		require.NoError(t, err)
		require.NoError(t, svc.MineBlock(ctx))
	}

	blocks, err := svc.ListBlocks(ctx)
	require.NoError(t, err)
	require.Len(t, blocks, 5)

	seen := map[string]bool{}
	for i, block := range blocks {
		assert.Equal(t, uint64(i), block.Number)
		assert.False(t, seen[block.Hash], "block hash reused")
		seen[block.Hash] = true
		if i > 0 {
			assert.Equal(t, blocks[i-1].Hash, block.PreviousHash)
		}
	}
}

func TestScheduledMineIsDeferred(t *testing.T) {
	svc, scheduler := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddTransaction(ctx, "RevokeConsent", []string{"c1"}, uuid.New())
	require.NoError(t, err)
	svc.ScheduleMine()

	// Pending-then-sealed: the transaction is visible in the pool
	// before the deferred mine runs.
	pending, err := svc.PendingTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	block, err := svc.GetLatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), block.Number)

	scheduler.Drain()

	pending, err = svc.PendingTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	block, err = svc.GetLatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), block.Number)
	require.Len(t, block.Transactions, 1)
	assert.Equal(t, "RevokeConsent", block.Transactions[0].FunctionName)
}

func TestTransactionsNeverSpanBlocks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddTransaction(ctx, "GrantConsent", []string{"a"}, uuid.New())
	require.NoError(t, err)
	require.NoError(t, svc.MineBlock(ctx))

	_, err = svc.AddTransaction(ctx, "UploadRecord", []string{"b"}, uuid.New())
	require.NoError(t, err)
	require.NoError(t, svc.MineBlock(ctx))

	blocks, err := svc.ListBlocks(ctx)
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	seen := map[uuid.UUID]int{}
	for _, block := range blocks {
		for _, tx := range block.Transactions {
			seen[tx.TxID]++
		}
	}
	for id, count := range seen {
		assert.Equalf(t, 1, count, "transaction %s sealed %d times", id, count)
	}
}
