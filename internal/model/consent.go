package model

import (
	"time"

	"github.com/google/uuid"
)

// RecordType classifies medical records and scopes consent tokens.
type RecordType string

const (
	RecordTypeLabReport    RecordType = "LAB_REPORT"
	RecordTypePrescription RecordType = "PRESCRIPTION"
	RecordTypeImaging      RecordType = "IMAGING"
	RecordTypeClinicalNote RecordType = "CLINICAL_NOTE"
	RecordTypeVaccination  RecordType = "VACCINATION"
)

// RecordTypes lists every known record type. Emergency consents are
// scoped to all of them.
var RecordTypes = []RecordType{
	RecordTypeLabReport,
	RecordTypePrescription,
	RecordTypeImaging,
	RecordTypeClinicalNote,
	RecordTypeVaccination,
}

// Valid reports whether t is one of the known record types.
func (t RecordType) Valid() bool {
	for _, rt := range RecordTypes {
		if t == rt {
			return true
		}
	}
	return false
}

// Consent status constants. Revocation is permanent; a REVOKED token is
// never re-activated.
const (
	ConsentStatusActive  = "ACTIVE"
	ConsentStatusRevoked = "REVOKED"
)

// ConsentToken is a capability granting a grantee read access to a
// patient's records within a record-type scope, for a bounded time.
// A token is effective only while its status is ACTIVE and its expiry
// lies in the future; expiry is evaluated lazily at query time.
type ConsentToken struct {
	ID          uuid.UUID    `json:"id"`
	PatientID   uuid.UUID    `json:"patient_id"`
	GranteeID   uuid.UUID    `json:"grantee_id"`
	GranteeName string       `json:"grantee_name"`
	GranteeRole Role         `json:"grantee_role"`
	Scope       []RecordType `json:"scope"`
	Expiry      time.Time    `json:"expiry"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	IsEmergency bool         `json:"is_emergency,omitempty"`
}

// InScope reports whether the token covers the given record type.
func (c *ConsentToken) InScope(t RecordType) bool {
	for _, s := range c.Scope {
		if s == t {
			return true
		}
	}
	return false
}

// Emergency request status constants. A request is terminal once
// reviewed; there is no re-review.
const (
	EmergencyStatusPending  = "PENDING"
	EmergencyStatusApproved = "APPROVED"
	EmergencyStatusRejected = "REJECTED"
)

// EmergencyAccessRequest is a doctor-initiated break-glass request.
// Approval creates a separate short-lived full-scope ConsentToken; the
// request and the derived consent have independent lifecycles.
type EmergencyAccessRequest struct {
	ID          uuid.UUID  `json:"id"`
	DoctorID    uuid.UUID  `json:"doctor_id"`
	DoctorName  string     `json:"doctor_name"`
	PatientID   uuid.UUID  `json:"patient_id"`
	PatientName string     `json:"patient_name"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  *uuid.UUID `json:"reviewed_by,omitempty"`
}

// GrantConsentRequest represents consent grant parameters.
type GrantConsentRequest struct {
	PatientID   string   `json:"patient_id" binding:"required,uuid"`
	GranteeID   string   `json:"grantee_id" binding:"required,uuid"`
	GranteeName string   `json:"grantee_name" binding:"required"`
	GranteeRole string   `json:"grantee_role" binding:"required,role"`
	Scope       []string `json:"scope" binding:"required,min=1,dive,recordtype"`
	ExpiryDays  int      `json:"expiry_days" binding:"omitempty,min=1"`
}

// EmergencyAccessRequestRequest represents break-glass request
// parameters. The minimum reason length is a boundary-layer rule.
type EmergencyAccessRequestRequest struct {
	DoctorID    string `json:"doctor_id" binding:"required,uuid"`
	DoctorName  string `json:"doctor_name" binding:"required"`
	PatientID   string `json:"patient_id" binding:"required,uuid"`
	PatientName string `json:"patient_name" binding:"required"`
	Reason      string `json:"reason" binding:"required,min=10"`
}
