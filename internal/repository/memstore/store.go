// Package memstore is an in-process implementation of repository.Store.
// Transactions are serialized and applied copy-on-write, so a failed
// transaction leaves no trace.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/repository"
)

type data struct {
	agencies            map[int64]model.Agency
	patients            map[int64]model.Patient
	assignments         map[int64]model.Assignment
	reasons             map[int64]model.RejectionReason
	therapistRejections map[int64]model.TherapistRejection
	therapists          map[int64]model.Therapist
	outbox              map[int64]model.OutboxEvent
	seq                 map[string]int64
}

func newData() *data {
	return &data{
		agencies:            map[int64]model.Agency{},
		patients:            map[int64]model.Patient{},
		assignments:         map[int64]model.Assignment{},
		reasons:             map[int64]model.RejectionReason{},
		therapistRejections: map[int64]model.TherapistRejection{},
		therapists:          map[int64]model.Therapist{},
		outbox:              map[int64]model.OutboxEvent{},
		seq:                 map[string]int64{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.agencies {
		c.agencies[k] = v
	}
	for k, v := range d.patients {
		c.patients[k] = v
	}
	for k, v := range d.assignments {
		c.assignments[k] = v
	}
	for k, v := range d.reasons {
		c.reasons[k] = v
	}
	for k, v := range d.therapistRejections {
		c.therapistRejections[k] = v
	}
	for k, v := range d.therapists {
		c.therapists[k] = v
	}
	for k, v := range d.outbox {
		c.outbox[k] = v
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	return c
}

func (d *data) nextID(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

type shared struct {
	mu    sync.Mutex
	state *data
	clock func() time.Time
}

// Store is safe for concurrent use.
type Store struct {
	shared *shared
	tx     *data
}

type Option func(*shared)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(s *shared) {
		s.clock = clock
	}
}

func New(opts ...Option) *Store {
	sh := &shared{
		state: newData(),
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(sh)
	}
	return &Store{shared: sh}
}

func (s *Store) now() time.Time {
	return s.shared.clock().UTC().Truncate(time.Second)
}

func (s *Store) do(fn func(d *data) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	return fn(s.shared.state)
}

func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	work := s.shared.state.clone()
	if err := fn(&Store{shared: s.shared, tx: work}); err != nil {
		return err
	}
	s.shared.state = work
	return nil
}

func (s *Store) Agencies() repository.AgencyRepository {
	return &agencyRepository{s}
}

func (s *Store) Patients() repository.PatientRepository {
	return &patientRepository{s}
}

func (s *Store) Assignments() repository.AssignmentRepository {
	return &assignmentRepository{s}
}

func (s *Store) Rejections() repository.RejectionRepository {
	return &rejectionRepository{s}
}

func (s *Store) Therapists() repository.TherapistRepository {
	return &therapistRepository{s}
}

func (s *Store) Outbox() repository.OutboxRepository {
	return &outboxRepository{s}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}
