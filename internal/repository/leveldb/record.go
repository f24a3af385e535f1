package leveldb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/medchain/medchain-api/internal/model"
)

type RecordRepository struct {
	store *Store
}

func NewRecordRepository(store *Store) *RecordRepository {
	return &RecordRepository{store: store}
}

// Create persists a record. Records are write-once; there is no update
// or delete path.
func (r *RecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	return r.store.putJSON(prefixRecord+record.ID.String(), record)
}

func (r *RecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	var record model.MedicalRecord
	if err := r.store.getJSON(prefixRecord+id.String(), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	records := []*model.MedicalRecord{}
	err := r.store.scanPrefix(prefixRecord, func(value []byte) error {
		var record model.MedicalRecord
		if err := json.Unmarshal(value, &record); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}
		if record.PatientID == patientID {
			records = append(records, &record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return records, nil
}
