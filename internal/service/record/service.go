package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medchain/medchain-api/internal/model"
	"github.com/medchain/medchain-api/internal/repository"
	"github.com/medchain/medchain-api/internal/repository/leveldb"
	"github.com/medchain/medchain-api/pkg/crypto"
	apperrors "github.com/medchain/medchain-api/pkg/errors"
	"github.com/medchain/medchain-api/pkg/logger"
)

const placeholderContent = "mock-file-content"

// Ledger is the slice of the ledger engine the registry emits into.
type Ledger interface {
	AddTransaction(ctx context.Context, functionName string, args []string, callerID uuid.UUID) (*model.Transaction, error)
	ScheduleMine()
}

// ConsentChecker answers whether a grantee holds effective consent for
// a patient's record type.
type ConsentChecker interface {
	HasConsent(ctx context.Context, patientID, granteeID uuid.UUID, recordType model.RecordType) (bool, error)
}

// Service owns medical record metadata and the mock encryption
// envelope attached to each record.
type Service struct {
	repo      repository.RecordRepository
	consents  ConsentChecker
	ledger    Ledger
	encryptor crypto.Encryptor
	cache     *gocache.Cache
	logger    *logger.Logger
	now       func() time.Time
}

func NewService(
	repo repository.RecordRepository,
	consents ConsentChecker,
	ledger Ledger,
	encryptor crypto.Encryptor,
	logger *logger.Logger,
) *Service {
	// Records are immutable once written, so cached entries can never
	// go stale; the TTL only bounds memory.
	return &Service{
		repo:      repo,
		consents:  consents,
		ledger:    ledger,
		encryptor: encryptor,
		cache:     gocache.New(10*time.Minute, 15*time.Minute),
		logger:    logger,
		now:       time.Now,
	}
}

// UploadRecord wraps the payload in a mock encryption envelope, stores
// the record, and emits an UploadRecord transaction. The record is
// visible to queries immediately, before any mining happens.
func (s *Service) UploadRecord(
	ctx context.Context,
	patientID, uploadedBy uuid.UUID,
	recordType model.RecordType,
	title, description string,
	fileData, fileName, fileType string,
) (*model.MedicalRecord, error) {
	plaintext := fileData
	if plaintext == "" {
		plaintext = placeholderContent
	}

	envelope, err := s.encryptor.Encrypt([]byte(plaintext), "patient-key-"+patientID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt record payload: %w", err)
	}

	now := s.now()
	rec := &model.MedicalRecord{
		ID:          uuid.New(),
		PatientID:   patientID,
		UploadedBy:  uploadedBy,
		Type:        recordType,
		Title:       title,
		Description: description,
		Date:        now,
		FileData:    fileData,
		FileName:    fileName,
		FileType:    fileType,
		Encryption: model.EncryptionEnvelope{
			IV: envelope.IV,
			KeyMeta: model.KeyMeta{
				Type:       envelope.KeyType,
				Algorithm:  envelope.Algorithm,
				WrappedKey: envelope.WrappedKey,
			},
		},
		Timestamp: now.UnixMilli(),
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store record: %w", err)
	}
	s.cache.Set(rec.ID.String(), rec, gocache.DefaultExpiration)

	if _, err := s.ledger.AddTransaction(ctx, model.TxUploadRecord,
		[]string{rec.ID.String(), patientID.String(), string(recordType), title},
		uploadedBy,
	); err != nil {
		return nil, err
	}
	s.ledger.ScheduleMine()

	s.logger.Info("record uploaded",
		"record_id", rec.ID.String(), "patient_id", patientID.String(), "type", string(recordType))
	return rec, nil
}

// PatientRecords is a pure lookup; authorization is the caller's job.
func (s *Service) PatientRecords(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) RecordByID(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached.(*model.MedicalRecord), nil
	}

	rec, err := s.repo.Get(ctx, id)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, apperrors.NotFound("record", err)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Set(id.String(), rec, gocache.DefaultExpiration)
	return rec, nil
}

// CanView authorizes a read: the patient always sees their own
// records, anyone else needs effective consent covering the record's
// type. Denial is an ordinary false, not an error.
func (s *Service) CanView(ctx context.Context, viewerID uuid.UUID, rec *model.MedicalRecord) (bool, error) {
	if viewerID == rec.PatientID {
		return true, nil
	}
	return s.consents.HasConsent(ctx, rec.PatientID, viewerID, rec.Type)
}
