package leveldb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/medchain/medchain-api/internal/model"
)

type LedgerRepository struct {
	store *Store
}

func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Zero-padded keys keep LevelDB's lexicographic iteration order equal
// to numeric order, so blocks and pending transactions scan back in the
// order they were written.
func blockKey(number uint64) string {
	return fmt.Sprintf("%s%012d", prefixBlock, number)
}

func pendingKey(seq uint64) string {
	return fmt.Sprintf("%s%020d", prefixPending, seq)
}

func (r *LedgerRepository) AppendPending(ctx context.Context, tx *model.Transaction) error {
	seq, err := r.nextPendingSeq()
	if err != nil {
		return err
	}

	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(pendingKey(seq)), data)
	batch.Put([]byte(keyPendingSeq), []byte(strconv.FormatUint(seq+1, 10)))
	if err := r.store.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to append pending transaction: %w", err)
	}
	return nil
}

func (r *LedgerRepository) nextPendingSeq() (uint64, error) {
	data, err := r.store.db.Get([]byte(keyPendingSeq), nil)
	if err == leveldb.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read pending sequence: %w", err)
	}
	seq, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt pending sequence %q: %w", data, err)
	}
	return seq, nil
}

func (r *LedgerRepository) ListPending(ctx context.Context) ([]*model.Transaction, error) {
	txs := []*model.Transaction{}
	err := r.store.scanPrefix(prefixPending, func(value []byte) error {
		var tx model.Transaction
		if err := json.Unmarshal(value, &tx); err != nil {
			return fmt.Errorf("failed to unmarshal transaction: %w", err)
		}
		txs = append(txs, &tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *LedgerRepository) GetBlock(ctx context.Context, number uint64) (*model.Block, error) {
	var block model.Block
	if err := r.store.getJSON(blockKey(number), &block); err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *LedgerRepository) LatestBlock(ctx context.Context) (*model.Block, error) {
	height, err := r.height()
	if err != nil {
		return nil, err
	}
	return r.GetBlock(ctx, height)
}

func (r *LedgerRepository) height() (uint64, error) {
	data, err := r.store.db.Get([]byte(keyChainHeight), nil)
	if err == leveldb.ErrNotFound {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read chain height: %w", err)
	}
	height, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt chain height %q: %w", data, err)
	}
	return height, nil
}

func (r *LedgerRepository) ListBlocks(ctx context.Context) ([]*model.Block, error) {
	blocks := []*model.Block{}
	err := r.store.scanPrefix(prefixBlock, func(value []byte) error {
		var block model.Block
		if err := json.Unmarshal(value, &block); err != nil {
			return fmt.Errorf("failed to unmarshal block: %w", err)
		}
		blocks = append(blocks, &block)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

// SealBlock appends the block and clears the pending pool in one batch,
// so no transaction can be lost or duplicated between the two writes.
func (r *LedgerRepository) SealBlock(ctx context.Context, block *model.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("failed to marshal block: %w", err)
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(blockKey(block.Number)), data)
	batch.Put([]byte(keyChainHeight), []byte(strconv.FormatUint(block.Number, 10)))

	iter := r.store.db.NewIterator(util.BytesPrefix([]byte(prefixPending)), nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		batch.Delete(key)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("failed to scan pending pool: %w", err)
	}

	if err := r.store.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to seal block %d: %w", block.Number, err)
	}
	return nil
}

// EnsureGenesis seeds block 0 on first start and is a no-op afterwards.
func (r *LedgerRepository) EnsureGenesis(ctx context.Context, genesis *model.Block) error {
	if _, err := r.height(); err == nil {
		return nil
	} else if err != ErrNotFound {
		return err
	}
	return r.SealBlock(ctx, genesis)
}
