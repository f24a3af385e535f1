package consent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medchain/medchain-api/internal/model"
	"github.com/medchain/medchain-api/internal/repository"
	"github.com/medchain/medchain-api/internal/repository/leveldb"
	apperrors "github.com/medchain/medchain-api/pkg/errors"
	"github.com/medchain/medchain-api/pkg/logger"
)

const (
	defaultExpiryDays = 30
	emergencyValidity = 24 * time.Hour
)

// Ledger is the slice of the ledger engine the consent engine emits
// into. Every mutating operation appends its transaction synchronously
// and then schedules a deferred mine.
type Ledger interface {
	AddTransaction(ctx context.Context, functionName string, args []string, callerID uuid.UUID) (*model.Transaction, error)
	ScheduleMine()
}

// Service owns the consent token lifecycle and the break-glass
// workflow.
type Service struct {
	repo   repository.ConsentRepository
	ledger Ledger
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo repository.ConsentRepository, ledger Ledger, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		ledger: ledger,
		logger: logger,
		now:    time.Now,
	}
}

// GrantConsent creates an ACTIVE token expiring expiryDays from now
// (30 when unset). Whether granteeID refers to a real user is the
// caller's concern; overlapping grants for the same pair are allowed.
func (s *Service) GrantConsent(
	ctx context.Context,
	patientID, granteeID uuid.UUID,
	granteeName string,
	granteeRole model.Role,
	scope []model.RecordType,
	expiryDays int,
) (*model.ConsentToken, error) {
	if expiryDays <= 0 {
		expiryDays = defaultExpiryDays
	}

	now := s.now()
	consent := &model.ConsentToken{
		ID:          uuid.New(),
		PatientID:   patientID,
		GranteeID:   granteeID,
		GranteeName: granteeName,
		GranteeRole: granteeRole,
		Scope:       scope,
		Expiry:      now.Add(time.Duration(expiryDays) * 24 * time.Hour),
		Status:      model.ConsentStatusActive,
		CreatedAt:   now,
	}

	if err := s.repo.CreateConsent(ctx, consent); err != nil {
		return nil, fmt.Errorf("failed to create consent: %w", err)
	}

	if _, err := s.ledger.AddTransaction(ctx, model.TxGrantConsent,
		[]string{consent.ID.String(), patientID.String(), granteeID.String(), joinScope(scope)},
		patientID,
	); err != nil {
		return nil, err
	}
	s.ledger.ScheduleMine()

	s.logger.Info("consent granted",
		"consent_id", consent.ID.String(), "patient_id", patientID.String(), "grantee_id", granteeID.String())
	return consent, nil
}

// RevokeConsent permanently revokes a token. Revocation requires the
// caller to be the token's patient; a mismatch is refused rather than
// silently honored.
func (s *Service) RevokeConsent(ctx context.Context, consentID, patientID uuid.UUID) error {
	consent, err := s.repo.GetConsent(ctx, consentID)
	if errors.Is(err, leveldb.ErrNotFound) {
		return apperrors.NotFound("consent", err)
	}
	if err != nil {
		return err
	}

	if consent.PatientID != patientID {
		return apperrors.Forbidden("consent does not belong to caller")
	}

	consent.Status = model.ConsentStatusRevoked
	if err := s.repo.UpdateConsent(ctx, consent); err != nil {
		return fmt.Errorf("failed to revoke consent: %w", err)
	}

	if _, err := s.ledger.AddTransaction(ctx, model.TxRevokeConsent,
		[]string{consentID.String()}, patientID); err != nil {
		return err
	}
	s.ledger.ScheduleMine()

	s.logger.Info("consent revoked", "consent_id", consentID.String())
	return nil
}

// HasConsent reports whether an effective token covers the access:
// ACTIVE status, unexpired, and (when recordType is non-empty) the
// type in scope. Expiry is evaluated lazily here; nothing sweeps
// expired tokens. Self-access is not special-cased; callers check
// viewer==patient themselves.
func (s *Service) HasConsent(ctx context.Context, patientID, granteeID uuid.UUID, recordType model.RecordType) (bool, error) {
	consents, err := s.repo.ListConsentsByPatient(ctx, patientID)
	if err != nil {
		return false, err
	}

	now := s.now()
	for _, c := range consents {
		if c.GranteeID != granteeID || c.Status != model.ConsentStatusActive || !c.Expiry.After(now) {
			continue
		}
		if recordType == "" || c.InScope(recordType) {
			return true, nil
		}
	}
	return false, nil
}

// RequestEmergencyAccess files a PENDING break-glass request. A doctor
// may hold multiple concurrent pending requests for the same patient.
func (s *Service) RequestEmergencyAccess(
	ctx context.Context,
	doctorID uuid.UUID,
	doctorName string,
	patientID uuid.UUID,
	patientName, reason string,
) (*model.EmergencyAccessRequest, error) {
	req := &model.EmergencyAccessRequest{
		ID:          uuid.New(),
		DoctorID:    doctorID,
		DoctorName:  doctorName,
		PatientID:   patientID,
		PatientName: patientName,
		Reason:      reason,
		Status:      model.EmergencyStatusPending,
		RequestedAt: s.now(),
	}

	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create emergency request: %w", err)
	}

	if _, err := s.ledger.AddTransaction(ctx, model.TxRequestEmergencyAccess,
		[]string{req.ID.String(), doctorID.String(), patientID.String(), reason},
		doctorID,
	); err != nil {
		return nil, err
	}
	s.ledger.ScheduleMine()

	s.logger.Info("emergency access requested",
		"request_id", req.ID.String(), "doctor_id", doctorID.String(), "patient_id", patientID.String())
	return req, nil
}

// ApproveEmergencyAccess marks the request APPROVED and derives a
// full-scope 24-hour emergency token for the requesting doctor. The
// request and the token have independent lifecycles afterwards. A
// missing or already-reviewed request is a silent no-op.
func (s *Service) ApproveEmergencyAccess(ctx context.Context, requestID, adminID uuid.UUID) (*model.ConsentToken, error) {
	req, err := s.repo.GetRequest(ctx, requestID)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if req.Status != model.EmergencyStatusPending {
		return nil, nil
	}

	now := s.now()
	req.Status = model.EmergencyStatusApproved
	req.ReviewedAt = &now
	req.ReviewedBy = &adminID
	if err := s.repo.UpdateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to approve emergency request: %w", err)
	}

	consent := &model.ConsentToken{
		ID:          uuid.New(),
		PatientID:   req.PatientID,
		GranteeID:   req.DoctorID,
		GranteeName: req.DoctorName,
		GranteeRole: model.RoleDoctor,
		Scope:       append([]model.RecordType{}, model.RecordTypes...),
		Expiry:      now.Add(emergencyValidity),
		Status:      model.ConsentStatusActive,
		CreatedAt:   now,
		IsEmergency: true,
	}
	if err := s.repo.CreateConsent(ctx, consent); err != nil {
		return nil, fmt.Errorf("failed to create emergency consent: %w", err)
	}

	if _, err := s.ledger.AddTransaction(ctx, model.TxApproveEmergencyAccess,
		[]string{requestID.String(), consent.ID.String()}, adminID); err != nil {
		return nil, err
	}
	s.ledger.ScheduleMine()

	s.logger.Info("emergency access approved",
		"request_id", requestID.String(), "consent_id", consent.ID.String(), "admin_id", adminID.String())
	return consent, nil
}

// RejectEmergencyAccess marks the request REJECTED. No token is
// created. Missing or already-reviewed requests no-op.
func (s *Service) RejectEmergencyAccess(ctx context.Context, requestID, adminID uuid.UUID) error {
	req, err := s.repo.GetRequest(ctx, requestID)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if req.Status != model.EmergencyStatusPending {
		return nil
	}

	now := s.now()
	req.Status = model.EmergencyStatusRejected
	req.ReviewedAt = &now
	req.ReviewedBy = &adminID
	if err := s.repo.UpdateRequest(ctx, req); err != nil {
		return fmt.Errorf("failed to reject emergency request: %w", err)
	}

	if _, err := s.ledger.AddTransaction(ctx, model.TxRejectEmergencyAccess,
		[]string{requestID.String()}, adminID); err != nil {
		return err
	}
	s.ledger.ScheduleMine()

	s.logger.Info("emergency access rejected",
		"request_id", requestID.String(), "admin_id", adminID.String())
	return nil
}

// PatientConsents returns every token for a patient, any status.
func (s *Service) PatientConsents(ctx context.Context, patientID uuid.UUID) ([]*model.ConsentToken, error) {
	return s.repo.ListConsentsByPatient(ctx, patientID)
}

// GranteeConsents returns a grantee's ACTIVE-status tokens. Expiry is
// deliberately not filtered here; this mirrors what the grantee sees
// listed, not what is effective.
func (s *Service) GranteeConsents(ctx context.Context, granteeID uuid.UUID) ([]*model.ConsentToken, error) {
	consents, err := s.repo.ListConsentsByGrantee(ctx, granteeID)
	if err != nil {
		return nil, err
	}
	active := []*model.ConsentToken{}
	for _, c := range consents {
		if c.Status == model.ConsentStatusActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *Service) PendingEmergencyRequests(ctx context.Context) ([]*model.EmergencyAccessRequest, error) {
	return s.repo.ListPendingRequests(ctx)
}

func joinScope(scope []model.RecordType) string {
	parts := make([]string, len(scope))
	for i, t := range scope {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}
