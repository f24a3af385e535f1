package model

import (
	"time"

	"github.com/google/uuid"
)

// Transaction status constants. Every transaction is created VALID; no
// validation step rejects one in this design.
const (
	TxStatusValid   = "VALID"
	TxStatusInvalid = "INVALID"
)

// Transaction is a single ledger entry. Transactions are pooled until
// sealed into a block and never mutated afterwards.
type Transaction struct {
	TxID         uuid.UUID `json:"tx_id"`
	FunctionName string    `json:"function_name"`
	Args         []string  `json:"args"`
	CallerID     uuid.UUID `json:"caller_id"`
	Timestamp    time.Time `json:"timestamp"`
	Status       string    `json:"status"`
}

// Ledger function names recorded on-chain.
const (
	TxGrantConsent           = "GrantConsent"
	TxRevokeConsent          = "RevokeConsent"
	TxRequestEmergencyAccess = "RequestEmergencyAccess"
	TxApproveEmergencyAccess = "ApproveEmergencyAccess"
	TxRejectEmergencyAccess  = "RejectEmergencyAccess"
	TxUploadRecord           = "UploadRecord"
)

// Block is a sealed, hash-linked batch of transactions.
type Block struct {
	Number       uint64         `json:"number"`
	Hash         string         `json:"hash"`
	PreviousHash string         `json:"previous_hash"`
	Transactions []*Transaction `json:"transactions"`
	Timestamp    time.Time      `json:"timestamp"`
}

// Genesis block constants. The genesis block exists from process start
// and is never removed.
const (
	GenesisHash         = "0x0000000000000000000000000000000000000000"
	GenesisPreviousHash = "0x0"
)

// GenesisBlock returns block number 0.
func GenesisBlock() *Block {
	return &Block{
		Number:       0,
		Hash:         GenesisHash,
		PreviousHash: GenesisPreviousHash,
		Transactions: []*Transaction{},
		Timestamp:    time.Now(),
	}
}
