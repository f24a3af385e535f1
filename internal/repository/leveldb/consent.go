package leveldb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/medchain/medchain-api/internal/model"
)

type ConsentRepository struct {
	store *Store
}

func NewConsentRepository(store *Store) *ConsentRepository {
	return &ConsentRepository{store: store}
}

func (r *ConsentRepository) CreateConsent(ctx context.Context, consent *model.ConsentToken) error {
	return r.store.putJSON(prefixConsent+consent.ID.String(), consent)
}

func (r *ConsentRepository) GetConsent(ctx context.Context, id uuid.UUID) (*model.ConsentToken, error) {
	var consent model.ConsentToken
	if err := r.store.getJSON(prefixConsent+id.String(), &consent); err != nil {
		return nil, err
	}
	return &consent, nil
}

func (r *ConsentRepository) UpdateConsent(ctx context.Context, consent *model.ConsentToken) error {
	return r.store.putJSON(prefixConsent+consent.ID.String(), consent)
}

func (r *ConsentRepository) ListConsentsByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ConsentToken, error) {
	return r.listConsents(func(c *model.ConsentToken) bool { return c.PatientID == patientID })
}

func (r *ConsentRepository) ListConsentsByGrantee(ctx context.Context, granteeID uuid.UUID) ([]*model.ConsentToken, error) {
	return r.listConsents(func(c *model.ConsentToken) bool { return c.GranteeID == granteeID })
}

func (r *ConsentRepository) listConsents(keep func(*model.ConsentToken) bool) ([]*model.ConsentToken, error) {
	consents := []*model.ConsentToken{}
	err := r.store.scanPrefix(prefixConsent, func(value []byte) error {
		var consent model.ConsentToken
		if err := json.Unmarshal(value, &consent); err != nil {
			return fmt.Errorf("failed to unmarshal consent: %w", err)
		}
		if keep(&consent) {
			consents = append(consents, &consent)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(consents, func(i, j int) bool {
		return consents[i].CreatedAt.Before(consents[j].CreatedAt)
	})
	return consents, nil
}

func (r *ConsentRepository) CreateRequest(ctx context.Context, req *model.EmergencyAccessRequest) error {
	return r.store.putJSON(prefixEmergency+req.ID.String(), req)
}

func (r *ConsentRepository) GetRequest(ctx context.Context, id uuid.UUID) (*model.EmergencyAccessRequest, error) {
	var req model.EmergencyAccessRequest
	if err := r.store.getJSON(prefixEmergency+id.String(), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ConsentRepository) UpdateRequest(ctx context.Context, req *model.EmergencyAccessRequest) error {
	return r.store.putJSON(prefixEmergency+req.ID.String(), req)
}

func (r *ConsentRepository) ListPendingRequests(ctx context.Context) ([]*model.EmergencyAccessRequest, error) {
	requests := []*model.EmergencyAccessRequest{}
	err := r.store.scanPrefix(prefixEmergency, func(value []byte) error {
		var req model.EmergencyAccessRequest
		if err := json.Unmarshal(value, &req); err != nil {
			return fmt.Errorf("failed to unmarshal emergency request: %w", err)
		}
		if req.Status == model.EmergencyStatusPending {
			requests = append(requests, &req)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].RequestedAt.Before(requests[j].RequestedAt)
	})
	return requests, nil
}
