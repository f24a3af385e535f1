package model

import (
	"time"

	"github.com/google/uuid"
)

// KeyMeta describes how the per-record content key was wrapped. The
// encryption here is a non-functional stand-in; only the persisted
// shape matters.
type KeyMeta struct {
	Type       string `json:"type"`
	Algorithm  string `json:"algorithm,omitempty"`
	WrappedKey string `json:"wrapped_key"`
}

// EncryptionEnvelope is stored alongside every record.
type EncryptionEnvelope struct {
	IV      string  `json:"iv"`
	KeyMeta KeyMeta `json:"key_meta"`
}

// MedicalRecord is an uploaded record. Records are immutable and
// undeletable; the only state transition is non-existence to existence.
// Date is the calendar date of upload and Timestamp the epoch-millis
// instant; both are set once at creation.
type MedicalRecord struct {
	ID          uuid.UUID          `json:"id"`
	PatientID   uuid.UUID          `json:"patient_id"`
	UploadedBy  uuid.UUID          `json:"uploaded_by"`
	Type        RecordType         `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Date        time.Time          `json:"date"`
	FileData    string             `json:"file_data,omitempty"`
	FileName    string             `json:"file_name,omitempty"`
	FileType    string             `json:"file_type,omitempty"`
	Encryption  EncryptionEnvelope `json:"encryption"`
	Timestamp   int64              `json:"timestamp"`
}

// UploadRecordRequest represents record upload parameters. FileData is
// an opaque base64 blob; the core never parses it.
type UploadRecordRequest struct {
	PatientID   string `json:"patient_id" binding:"required,uuid"`
	UploadedBy  string `json:"uploaded_by" binding:"required,uuid"`
	Type        string `json:"type" binding:"required,recordtype"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	FileData    string `json:"file_data"`
	FileName    string `json:"file_name"`
	FileType    string `json:"file_type"`
}
