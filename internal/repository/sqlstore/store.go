package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/homecare-api/internal/repository"
)

// Store implements repository.Store over a sqlx connection pool.
type Store struct {
	db *sqlx.DB
	tx *sqlx.Tx
	q  sqlx.ExtContext
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) base() baseRepository {
	return baseRepository{q: s.q}
}

func (s *Store) Agencies() repository.AgencyRepository {
	return &agencyRepository{s.base()}
}

func (s *Store) Patients() repository.PatientRepository {
	return &patientRepository{s.base()}
}

func (s *Store) Assignments() repository.AssignmentRepository {
	return &assignmentRepository{s.base()}
}

func (s *Store) Rejections() repository.RejectionRepository {
	return &rejectionRepository{s.base()}
}

func (s *Store) Therapists() repository.TherapistRepository {
	return &therapistRepository{s.base()}
}

func (s *Store) Outbox() repository.OutboxRepository {
	return &outboxRepository{s.base()}
}

// WithTx executes a function within a transaction
func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Store{db: s.db, tx: tx, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
