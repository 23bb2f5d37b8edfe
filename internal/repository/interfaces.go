package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/homecare-api/internal/model"
)

type AgencyRepository interface {
	Create(ctx context.Context, agency *model.Agency) error
	Get(ctx context.Context, id int64) (*model.Agency, error)
	GetByName(ctx context.Context, name string) (*model.Agency, error)
	Update(ctx context.Context, agency *model.Agency) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter model.AgencyFilter) ([]*model.Agency, error)
	AdjustPatientCount(ctx context.Context, id int64, delta int) error
	Stats(ctx context.Context) (*model.AgencyStats, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id int64) (*model.Patient, error)
	// GetForUpdate locks the patient row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	UpdateStatus(ctx context.Context, id int64, status model.PatientStatus) error
	List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error)
	ListIDsByAgency(ctx context.Context, agencyID int64) ([]int64, error)
	DeleteByAgency(ctx context.Context, agencyID int64) (int64, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	Get(ctx context.Context, id int64) (*model.Assignment, error)
	// FindCurrent returns the authoritative row for a discipline, the oldest one.
	FindCurrent(ctx context.Context, patientID int64, discipline model.Discipline) (*model.Assignment, error)
	Update(ctx context.Context, assignment *model.Assignment) error
	Delete(ctx context.Context, id int64) error
	ListByPatient(ctx context.Context, patientID int64) ([]*model.Assignment, error)
	ListByPatients(ctx context.Context, patientIDs []int64) (map[int64][]*model.Assignment, error)
	DeleteByPatients(ctx context.Context, patientIDs []int64) error
}

type RejectionRepository interface {
	AddReason(ctx context.Context, reason *model.RejectionReason) error
	AddTherapist(ctx context.Context, rejection *model.TherapistRejection) error
	ListReasons(ctx context.Context, patientID int64) ([]*model.RejectionReason, error)
	ListTherapists(ctx context.Context, patientID int64) ([]*model.TherapistRejection, error)
	DeleteByPatients(ctx context.Context, patientIDs []int64) error
}

type TherapistRepository interface {
	Create(ctx context.Context, therapist *model.Therapist) error
	Get(ctx context.Context, id int64) (*model.Therapist, error)
	Update(ctx context.Context, therapist *model.Therapist) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter model.TherapistFilter) ([]*model.Therapist, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	// GetPendingWithLock must run inside WithTx; rows stay locked until commit.
	GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id int64) error
	MarkRetry(ctx context.Context, id int64, errMsg string, retryAt time.Time) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

// Store groups the repositories over one connection or one transaction.
type Store interface {
	Agencies() AgencyRepository
	Patients() PatientRepository
	Assignments() AssignmentRepository
	Rejections() RejectionRepository
	Therapists() TherapistRepository
	Outbox() OutboxRepository

	// WithTx runs fn with a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling WithTx on a transactional Store reuses the transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Close() error
}
