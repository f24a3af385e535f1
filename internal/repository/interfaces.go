package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/medchain/medchain-api/internal/model"
)

// All repository interfaces in one file. Each repository persists its
// component's state under an independent keyspace; there is no
// cross-repository transactionality.
type (
	// UserRepository handles identity state.
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context) ([]*model.User, error)
		EnsureSeedAdmin(ctx context.Context) error
	}

	// ConsentRepository handles consent tokens and emergency requests.
	ConsentRepository interface {
		CreateConsent(ctx context.Context, consent *model.ConsentToken) error
		GetConsent(ctx context.Context, id uuid.UUID) (*model.ConsentToken, error)
		UpdateConsent(ctx context.Context, consent *model.ConsentToken) error
		ListConsentsByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ConsentToken, error)
		ListConsentsByGrantee(ctx context.Context, granteeID uuid.UUID) ([]*model.ConsentToken, error)

		CreateRequest(ctx context.Context, req *model.EmergencyAccessRequest) error
		GetRequest(ctx context.Context, id uuid.UUID) (*model.EmergencyAccessRequest, error)
		UpdateRequest(ctx context.Context, req *model.EmergencyAccessRequest) error
		ListPendingRequests(ctx context.Context) ([]*model.EmergencyAccessRequest, error)
	}

	// RecordRepository handles medical record metadata. Records are
	// write-once: there is no update or delete.
	RecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error)
	}

	// LedgerRepository owns the block chain and the pending pool.
	// SealBlock must persist the new block and clear the pool as a
	// single atomic write.
	LedgerRepository interface {
		AppendPending(ctx context.Context, tx *model.Transaction) error
		ListPending(ctx context.Context) ([]*model.Transaction, error)
		GetBlock(ctx context.Context, number uint64) (*model.Block, error)
		LatestBlock(ctx context.Context) (*model.Block, error)
		ListBlocks(ctx context.Context) ([]*model.Block, error)
		SealBlock(ctx context.Context, block *model.Block) error
		EnsureGenesis(ctx context.Context, genesis *model.Block) error
	}
)
