package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/repository"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
)

func seedAgency(t *testing.T, s *Store, name string) *model.Agency {
	t.Helper()
	a := &model.Agency{Name: name, Status: model.AgencyStatusActive, Docs: model.DocsNo}
	require.NoError(t, s.Agencies().Create(context.Background(), a))
	return a
}

func seedPatient(t *testing.T, s *Store, agencyID int64, nombre, reqs string) *model.Patient {
	t.Helper()
	p := &model.Patient{
		Nombre:         nombre,
		Requerimientos: reqs,
		AgenciaID:      agencyID,
		LinkCorreo:     "http://mail/1",
		Estado:         model.PatientStatusNew,
	}
	require.NoError(t, s.Patients().Create(context.Background(), p))
	return p
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	agency := seedAgency(t, s, "Acme Care")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Agencies().AdjustPatientCount(ctx, agency.ID, 5))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Agencies().Get(ctx, agency.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Patients)
}

func TestWithTxCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	agency := seedAgency(t, s, "Acme Care")

	err := s.WithTx(ctx, func(tx repository.Store) error {
		return tx.WithTx(ctx, func(inner repository.Store) error {
			return inner.Agencies().AdjustPatientCount(ctx, agency.ID, 2)
		})
	})
	require.NoError(t, err)

	got, err := s.Agencies().Get(ctx, agency.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Patients)
}

func TestConcurrentTransactionsSerialize(t *testing.T) {
	ctx := context.Background()
	s := New()
	agency := seedAgency(t, s, "Acme Care")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithTx(ctx, func(tx repository.Store) error {
				a, err := tx.Agencies().Get(ctx, agency.ID)
				if err != nil {
					return err
				}
				return tx.Agencies().AdjustPatientCount(ctx, a.ID, 1)
			})
		}()
	}
	wg.Wait()

	got, err := s.Agencies().Get(ctx, agency.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Patients)
}

func TestPatientListFilters(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return clock }))

	acme := seedAgency(t, s, "Acme Care")
	other := seedAgency(t, s, "Sunset HH")

	jane := seedPatient(t, s, acme.ID, "Jane Doe", "PT,OT")
	clock = clock.Add(24 * time.Hour)
	john := seedPatient(t, s, other.ID, "John Roe", "PTA")
	clock = clock.Add(24 * time.Hour)
	ann := seedPatient(t, s, acme.ID, "Ann Poe", "ST")
	require.NoError(t, s.Patients().UpdateStatus(ctx, ann.ID, model.PatientStatusNotAttended))

	all, err := s.Patients().List(ctx, model.PatientFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{ann.ID, john.ID, jane.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "Acme Care", all[2].AgenciaNombre)

	pt, err := s.Patients().List(ctx, model.PatientFilter{Discipline: model.DisciplinePT})
	require.NoError(t, err)
	require.Len(t, pt, 1)
	assert.Equal(t, jane.ID, pt[0].ID)

	byAgencyName, err := s.Patients().List(ctx, model.PatientFilter{Term: "sunset"})
	require.NoError(t, err)
	require.Len(t, byAgencyName, 1)
	assert.Equal(t, john.ID, byAgencyName[0].ID)

	active, err := s.Patients().List(ctx, model.PatientFilter{AgencyID: acme.ID, ExcludeRejected: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, jane.ID, active[0].ID)

	from := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	ranged, err := s.Patients().List(ctx, model.PatientFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, john.ID, ranged[0].ID)
}

func TestAssignmentsFindCurrentReturnsOldest(t *testing.T) {
	ctx := context.Background()
	s := New()
	agency := seedAgency(t, s, "Acme Care")
	p := seedPatient(t, s, agency.ID, "Jane Doe", "PT")

	first := &model.Assignment{PacienteID: p.ID, TerapeutaNombre: "Dr. Smith", Disciplina: model.DisciplinePT, Estado: model.AssignmentStatusPending}
	second := &model.Assignment{PacienteID: p.ID, TerapeutaNombre: "Dr. Lee", Disciplina: model.DisciplinePT, Estado: model.AssignmentStatusPending}
	require.NoError(t, s.Assignments().Create(ctx, first))
	require.NoError(t, s.Assignments().Create(ctx, second))

	current, err := s.Assignments().FindCurrent(ctx, p.ID, model.DisciplinePT)
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID)

	_, err = s.Assignments().FindCurrent(ctx, p.ID, model.DisciplineOT)
	assert.True(t, apperrors.IsNotFound(err))

	byPatient, err := s.Assignments().ListByPatients(ctx, []int64{p.ID, 999})
	require.NoError(t, err)
	assert.Len(t, byPatient[p.ID], 2)
	assert.Empty(t, byPatient[999])
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	agency := seedAgency(t, s, "Acme Care")

	got, err := s.Agencies().Get(ctx, agency.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := s.Agencies().Get(ctx, agency.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Care", again.Name)
}

func TestOutboxLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return clock }))

	evt, err := model.NewOutboxEvent(model.EventPatientCreated, map[string]int{"id": 1})
	require.NoError(t, err)
	require.NoError(t, s.Outbox().Create(ctx, evt))

	pending, err := s.Outbox().GetPendingWithLock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, s.Outbox().MarkRetry(ctx, evt.ID, "redis down", clock.Add(time.Minute)))
	pending, err = s.Outbox().GetPendingWithLock(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	clock = clock.Add(2 * time.Minute)
	pending, err = s.Outbox().GetPendingWithLock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)

	require.NoError(t, s.Outbox().MarkProcessed(ctx, evt.ID))
	n, err := s.Outbox().DeleteProcessedBefore(ctx, clock.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
