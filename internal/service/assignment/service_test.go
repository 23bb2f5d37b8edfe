package assignment

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/repository/memstore"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
	"github.com/jwalitptl/homecare-api/pkg/metrics"
)

func setup(t *testing.T, reqs string) (*Service, *memstore.Store, *model.Patient) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()

	agency := &model.Agency{Name: "Acme Care", Status: model.AgencyStatusActive, Docs: model.DocsNo}
	require.NoError(t, store.Agencies().Create(ctx, agency))

	patient := &model.Patient{
		Nombre:         "Jane Doe",
		Requerimientos: reqs,
		AgenciaID:      agency.ID,
		LinkCorreo:     "http://x",
		Estado:         model.PatientStatusNew,
	}
	require.NoError(t, store.Patients().Create(ctx, patient))

	return NewService(store, nil, metrics.New("test", nil)), store, patient
}

func status(t *testing.T, store *memstore.Store, id int64) model.PatientStatus {
	t.Helper()
	p, err := store.Patients().Get(context.Background(), id)
	require.NoError(t, err)
	return p.Estado
}

func outboxTypes(t *testing.T, store *memstore.Store) []string {
	t.Helper()
	events, err := store.Outbox().GetPendingWithLock(context.Background(), 0)
	require.NoError(t, err)
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType
	}
	return types
}

func TestDeriveStatus(t *testing.T) {
	confirmed := func(d model.Discipline) *model.Assignment {
		return &model.Assignment{Disciplina: d, Estado: model.AssignmentStatusConfirmed}
	}
	pending := func(d model.Discipline) *model.Assignment {
		return &model.Assignment{Disciplina: d, Estado: model.AssignmentStatusPending}
	}
	ptot := model.Requirements{model.DisciplinePT, model.DisciplineOT}

	tests := []struct {
		name        string
		current     model.PatientStatus
		reqs        model.Requirements
		assignments []*model.Assignment
		want        model.PatientStatus
	}{
		{"no assignments", model.PatientStatusNew, ptot, nil, model.PatientStatusNew},
		{"partial coverage", model.PatientStatusNew, ptot, []*model.Assignment{confirmed(model.DisciplinePT)}, model.PatientStatusNew},
		{"one unconfirmed", model.PatientStatusNew, ptot, []*model.Assignment{confirmed(model.DisciplinePT), pending(model.DisciplineOT)}, model.PatientStatusNew},
		{"all confirmed", model.PatientStatusNew, ptot, []*model.Assignment{confirmed(model.DisciplinePT), confirmed(model.DisciplineOT)}, model.PatientStatusAssigned},
		{"assistant does not cover licensed", model.PatientStatusNew, model.Requirements{model.DisciplinePT}, []*model.Assignment{confirmed(model.DisciplinePTA)}, model.PatientStatusNew},
		{"never regresses", model.PatientStatusTherapySync, ptot, []*model.Assignment{pending(model.DisciplinePT)}, model.PatientStatusTherapySync},
		{"terminal untouched", model.PatientStatusNotAttended, ptot, []*model.Assignment{confirmed(model.DisciplinePT), confirmed(model.DisciplineOT)}, model.PatientStatusNotAttended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.current, tt.reqs, tt.assignments))
		})
	}
}

func TestJaneDoeScenario(t *testing.T) {
	ctx := context.Background()
	svc, store, jane := setup(t, "PT,OT")
	assert.Equal(t, model.PatientStatusNew, jane.Estado)

	res, err := svc.Upsert(ctx, jane.ID, model.AssignmentInput{TerapeutaNombre: "Dr. Smith", Disciplina: "PT", Estado: "confirmado"})
	require.NoError(t, err)
	assert.False(t, res.StatusChanged)
	assert.Equal(t, model.PatientStatusNew, status(t, store, jane.ID))

	res, err = svc.Upsert(ctx, jane.ID, model.AssignmentInput{TerapeutaNombre: "Dr. Lee", Disciplina: "OT", Estado: "confirmado"})
	require.NoError(t, err)
	assert.True(t, res.StatusChanged)
	assert.Equal(t, model.PatientStatusAssigned, res.PatientStatus)
	assert.Equal(t, model.PatientStatusAssigned, status(t, store, jane.ID))

	assert.Contains(t, outboxTypes(t, store), model.EventPatientStatusChanged)
}

func TestUpsertOverwritesCurrentRow(t *testing.T) {
	ctx := context.Background()
	svc, _, p := setup(t, "PT")

	first, err := svc.Upsert(ctx, p.ID, model.AssignmentInput{TerapeutaNombre: "Dr. Smith", Disciplina: "pt"})
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentStatusPending, first.Assignment.Estado)
	assert.Equal(t, model.DisciplinePT, first.Assignment.Disciplina)

	second, err := svc.Upsert(ctx, p.ID, model.AssignmentInput{TerapeutaNombre: "Dr. Lee", Disciplina: "PT", Estado: "consultado"})
	require.NoError(t, err)
	assert.Equal(t, first.Assignment.ID, second.Assignment.ID)

	// An omitted status keeps the stored one.
	third, err := svc.Upsert(ctx, p.ID, model.AssignmentInput{TerapeutaNombre: "Dr. Kim", Disciplina: "PT"})
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentStatusConsulted, third.Assignment.Estado)

	list, err := svc.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Dr. Kim", list[0].TerapeutaNombre)
}

func TestAppendKeepsEveryTherapist(t *testing.T) {
	ctx := context.Background()
	svc, store, p := setup(t, "PT")

	_, err := svc.Append(ctx, p.ID, model.AssignmentInput{TerapeutaNombre: "Dr. Smith", Disciplina: "PT", Estado: "confirmado"})
	require.NoError(t, err)
	assert.Equal(t, model.PatientStatusAssigned, status(t, store, p.ID))

	_, err = svc.Append(ctx, p.ID, model.AssignmentInput{TerapeutaNombre: "Dr. Lee", Disciplina: "PT"})
	require.NoError(t, err)

	list, err := svc.List(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	// Advanced statuses never regress on a pending assignment.
	assert.Equal(t, model.PatientStatusAssigned, status(t, store, p.ID))
}

func TestUpsertValidation(t *testing.T) {
	ctx := context.Background()
	svc, store, p := setup(t, "PT")

	_, err := svc.Upsert(ctx, p.ID, model.AssignmentInput{TerapeutaNombre: "  ", Disciplina: "PT"})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	_, err = svc.Upsert(ctx, p.ID, model.AssignmentInput{TerapeutaNombre: "Dr. Smith", Disciplina: "RN"})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	_, err = svc.Upsert(ctx, 999, model.AssignmentInput{TerapeutaNombre: "Dr. Smith", Disciplina: "PT"})
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "Paciente no encontrado", err.Error())

	assert.Empty(t, outboxTypes(t, store))
}

func TestUpdateStatusAndDeleteRecompute(t *testing.T) {
	ctx := context.Background()
	svc, store, p := setup(t, "PT")

	confirmed, err := svc.Append(ctx, p.ID, model.AssignmentInput{TerapeutaNombre: "Dr. Smith", Disciplina: "PT", Estado: "rechazado"})
	require.NoError(t, err)
	extra, err := svc.Append(ctx, p.ID, model.AssignmentInput{TerapeutaNombre: "Dr. Lee", Disciplina: "PT"})
	require.NoError(t, err)

	res, err := svc.UpdateStatus(ctx, confirmed.Assignment.ID, model.AssignmentUpdate{Estado: "confirmado"})
	require.NoError(t, err)
	assert.False(t, res.StatusChanged)
	assert.Equal(t, model.PatientStatusNew, status(t, store, p.ID))

	res, err = svc.Delete(ctx, extra.Assignment.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Assignment)
	assert.True(t, res.StatusChanged)
	assert.Equal(t, model.PatientStatusAssigned, status(t, store, p.ID))

	_, err = svc.Delete(ctx, extra.Assignment.ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.UpdateStatus(ctx, confirmed.Assignment.ID, model.AssignmentUpdate{Estado: "hecho"})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	assert.Contains(t, outboxTypes(t, store), model.EventAssignmentDeleted)
}

func TestConcurrentConfirmationsAdvanceOnce(t *testing.T) {
	ctx := context.Background()
	svc, store, p := setup(t, "PT,OT,ST")

	var wg sync.WaitGroup
	for _, d := range []string{"PT", "OT", "ST"} {
		wg.Add(1)
		go func(d string) {
			defer wg.Done()
			_, err := svc.Upsert(ctx, p.ID, model.AssignmentInput{TerapeutaNombre: "Dr. " + d, Disciplina: d, Estado: "confirmado"})
			assert.NoError(t, err)
		}(d)
	}
	wg.Wait()

	assert.Equal(t, model.PatientStatusAssigned, status(t, store, p.ID))

	changes := 0
	for _, typ := range outboxTypes(t, store) {
		if typ == model.EventPatientStatusChanged {
			changes++
		}
	}
	assert.Equal(t, 1, changes)
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	svc, store, p := setup(t, "PT")

	_, err := svc.Reject(ctx, p.ID, model.RejectionRequest{Motivos: []string{" ", ""}})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	assert.Equal(t, model.PatientStatusNew, status(t, store, p.ID))

	_, err = svc.Reject(ctx, p.ID, model.RejectionRequest{
		Motivos:    []string{"No habla español"},
		Terapeutas: []model.RejectingTherapist{{TerapeutaNombre: "Dr. Smith", Disciplina: "XX"}},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	_, err = svc.SetStatus(ctx, p.ID, model.StatusChangeRequest{Estado: "completado"})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, p.ID, model.RejectionRequest{
		Motivos:    []string{"No habla español", " No habla español ", "Cliente viaja"},
		Terapeutas: []model.RejectingTherapist{{TerapeutaNombre: "Dr. Smith", Disciplina: "pt"}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.PatientStatusNotAttended, rejected.Estado)
	require.Len(t, rejected.MotivosRechazo, 2)
	assert.Equal(t, "No habla español", rejected.MotivosRechazo[0].Motivo)
	assert.Equal(t, "Cliente viaja", rejected.MotivosRechazo[1].Motivo)

	history, err := svc.ListRejections(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, history.Motivos, 2)
	require.Len(t, history.Terapeutas, 1)
	assert.Equal(t, model.DisciplinePT, history.Terapeutas[0].Disciplina)

	_, err = svc.Reject(ctx, 999, model.RejectionRequest{Motivos: []string{"x"}})
	assert.True(t, apperrors.IsNotFound(err))

	assert.Contains(t, outboxTypes(t, store), model.EventPatientRejected)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, p := setup(t, "PT")

	for _, to := range []string{"therapy_sync", "nuevo", "asignado", "completado"} {
		got, err := svc.SetStatus(ctx, p.ID, model.StatusChangeRequest{Estado: to})
		require.NoError(t, err)
		assert.Equal(t, model.PatientStatus(to), got.Estado)
	}

	_, err := svc.SetStatus(ctx, p.ID, model.StatusChangeRequest{Estado: "nuevo"})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	_, err = svc.SetStatus(ctx, p.ID, model.StatusChangeRequest{Estado: "desconocido"})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	got, err := svc.SetStatus(ctx, p.ID, model.StatusChangeRequest{Estado: "no_asistido", Motivos: []string{"Área no cubierta"}})
	require.NoError(t, err)
	assert.Equal(t, model.PatientStatusNotAttended, got.Estado)
}

func TestListReasonsReturnsCopy(t *testing.T) {
	svc, _, _ := setup(t, "PT")

	reasons := svc.ListReasons()
	require.Len(t, reasons, 6)
	reasons[0] = "mutated"
	assert.Equal(t, "No disponible en el área", svc.ListReasons()[0])
}
