package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medchain/medchain-api/internal/model"
	"github.com/medchain/medchain-api/internal/repository"
	"github.com/medchain/medchain-api/pkg/logger"
	"github.com/medchain/medchain-api/pkg/metrics"
	"github.com/medchain/medchain-api/pkg/worker"
)

// Service owns the block chain and the pending transaction pool. All
// other components reach the ledger exclusively through AddTransaction
// and the mining entry points; the mutex makes pool mutation and block
// sealing a single state transition.
type Service struct {
	repo      repository.LedgerRepository
	scheduler worker.Scheduler
	mineDelay time.Duration
	logger    *logger.Logger
	metrics   *metrics.Metrics

	mu  sync.Mutex
	now func() time.Time
}

func NewService(
	repo repository.LedgerRepository,
	scheduler worker.Scheduler,
	mineDelay time.Duration,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:      repo,
		scheduler: scheduler,
		mineDelay: mineDelay,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Bootstrap seeds the genesis block on first start.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.repo.EnsureGenesis(ctx, model.GenesisBlock()); err != nil {
		return fmt.Errorf("failed to seed genesis block: %w", err)
	}
	return nil
}

// AddTransaction constructs a VALID transaction and appends it to the
// pending pool. There is no validation or rejection path; every call
// produces a transaction.
func (s *Service) AddTransaction(ctx context.Context, functionName string, args []string, callerID uuid.UUID) (*model.Transaction, error) {
	tx := &model.Transaction{
		TxID:         uuid.New(),
		FunctionName: functionName,
		Args:         args,
		CallerID:     callerID,
		Timestamp:    s.now(),
		Status:       model.TxStatusValid,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.AppendPending(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	s.metrics.TransactionsAppended.Inc()
	s.metrics.PendingPoolSize.Inc()
	s.logger.Debug("transaction appended",
		"tx_id", tx.TxID.String(), "function", functionName, "caller", callerID.String())
	return tx, nil
}

// MineBlock seals the entire pending pool into a new block, in append
// order. With an empty pool it changes nothing. The block write and
// pool clear happen in one atomic store batch under the service mutex,
// so no transaction is lost, duplicated, or reordered.
func (s *Service) MineBlock(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := time.Now()

	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pending pool: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	previous, err := s.repo.LatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("failed to read latest block: %w", err)
	}

	hash, err := newBlockHash()
	if err != nil {
		return err
	}

	block := &model.Block{
		Number:       previous.Number + 1,
		Hash:         hash,
		PreviousHash: previous.Hash,
		Transactions: pending,
		Timestamp:    s.now(),
	}

	if err := s.repo.SealBlock(ctx, block); err != nil {
		return err
	}

	s.metrics.BlocksMined.Inc()
	s.metrics.PendingPoolSize.Set(0)
	s.metrics.MiningLatency.Observe(time.Since(timer).Seconds())
	s.logger.Info("block sealed",
		"number", block.Number, "hash", block.Hash, "transactions", len(block.Transactions))
	return nil
}

// ScheduleMine defers a MineBlock by the configured delay, modelling
// consensus latency. Callers append their transaction synchronously
// first, so an observer sees pending-then-sealed, never the reverse.
func (s *Service) ScheduleMine() {
	s.scheduler.Schedule(s.mineDelay, func() {
		if err := s.MineBlock(context.Background()); err != nil {
			s.logger.Error(err, "scheduled mine failed")
		}
	})
}

// GetLatestBlock is always defined because genesis is never removed.
func (s *Service) GetLatestBlock(ctx context.Context) (*model.Block, error) {
	return s.repo.LatestBlock(ctx)
}

func (s *Service) ListBlocks(ctx context.Context) ([]*model.Block, error) {
	return s.repo.ListBlocks(ctx)
}

func (s *Service) PendingTransactions(ctx context.Context) ([]*model.Transaction, error) {
	return s.repo.ListPending(ctx)
}

// newBlockHash generates an opaque block identifier. Uniqueness and
// linkage are all the chain needs here; this is not a content hash.
func newBlockHash() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate block hash: %w", err)
	}
	return "0x" + hex.EncodeToString(buf), nil
}
