package reply

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/homecare-api/internal/email"
	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/repository/memstore"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
	"github.com/jwalitptl/homecare-api/pkg/metrics"
)

type recordingMailer struct {
	sent []email.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg email.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var fixedNow = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T, agencyEmail string) (*Service, *memstore.Store, *recordingMailer, *model.Patient) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()

	a := &model.Agency{Name: "Acme  Home Care!", Email: agencyEmail, Status: model.AgencyStatusActive, Docs: model.DocsNo}
	require.NoError(t, store.Agencies().Create(ctx, a))
	addr := "123 Main St"
	p := &model.Patient{Nombre: "Jane Doe", Requerimientos: "PT,OT", Direccion: &addr, AgenciaID: a.ID, LinkCorreo: "http://x", Estado: model.PatientStatusNew}
	require.NoError(t, store.Patients().Create(ctx, p))

	mailer := &recordingMailer{}
	svc := NewService(store, mailer, nil, metrics.New("test", prometheus.NewRegistry()), Config{})
	svc.now = func() time.Time { return fixedNow }
	return svc, store, mailer, p
}

func intPtr(v int) *int { return &v }

func TestRender(t *testing.T) {
	addr := "  "
	p := &model.Patient{Nombre: "Jane", Requerimientos: "PT", Direccion: &addr}

	got := Render("{nombre}|{servicios}|{direccion}|{agencia}|{fecha}|{nombre}", p, fixedNow)
	assert.Equal(t, "Jane|PT|dirección del paciente|agencia|5/3/2024|Jane", got)

	got = Render("{nombre} {servicios}", nil, fixedNow)
	assert.Equal(t, "paciente servicios solicitados", got)

	assert.Equal(t, "no placeholders", Render("no placeholders", p, fixedNow))
}

func TestRecipient(t *testing.T) {
	assert.Equal(t, "ops@acme.com", Recipient(&model.Patient{AgenciaEmail: "ops@acme.com", AgenciaNombre: "Acme"}))
	assert.Equal(t, "info@acme.home.care.com", Recipient(&model.Patient{AgenciaNombre: "Acme  Home Care!"}))
	assert.Equal(t, "info@247.com", Recipient(&model.Patient{AgenciaNombre: "24/7"}))
}

func TestListTemplates(t *testing.T) {
	svc := NewService(memstore.New(), nil, nil, nil, Config{})
	templates := svc.ListTemplates()
	require.Len(t, templates, 5)
	for i, tpl := range templates {
		assert.Equal(t, i+1, tpl.ID)
	}
	assert.Equal(t, "Documentos faltantes", templates[3].Nombre)

	templates[0].Nombre = "changed"
	assert.Equal(t, "Solo virtual disponible", svc.ListTemplates()[0].Nombre)
}

func TestParseTemplates(t *testing.T) {
	raw := []byte(`
templates:
  - id: 7
    nombre: Bienvenida
    asunto: Welcome {nombre}
    cuerpo: Hello {agencia}
`)
	templates, err := ParseTemplates(raw)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Welcome {nombre}", templates[0].Asunto)

	_, err = ParseTemplates([]byte("templates: []"))
	assert.Error(t, err)
	_, err = ParseTemplates([]byte("templates:\n  - {id: 1, cuerpo: a}\n  - {id: 1, cuerpo: b}\n"))
	assert.Error(t, err)

	defaults, err := LoadTemplates("")
	require.NoError(t, err)
	assert.Len(t, defaults, 5)
}

func TestComposeTemplate(t *testing.T) {
	svc, _, _, p := setup(t, "")

	reply, err := svc.Compose(context.Background(), p.ID, model.ReplyRequest{PlantillaID: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, "info@acme.home.care.com", reply.Para)
	assert.Equal(t, "Referral Update - Case Accepted", reply.Asunto)
	assert.Equal(t, "Hello team, Yes we can accept the case. Just waiting on a confirmed date from therapist.", reply.Cuerpo)

	reply, err = svc.Compose(context.Background(), p.ID, model.ReplyRequest{PlantillaID: intPtr(1), Asunto: "Update for {nombre}"})
	require.NoError(t, err)
	assert.Equal(t, "Update for Jane Doe", reply.Asunto)

	_, err = svc.Compose(context.Background(), p.ID, model.ReplyRequest{PlantillaID: intPtr(42)})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestComposeCustom(t *testing.T) {
	svc, _, _, p := setup(t, "intake@acme.com")

	reply, err := svc.Compose(context.Background(), p.ID, model.ReplyRequest{Cuerpo: "Referral for {nombre} on {fecha} at {direccion}"})
	require.NoError(t, err)
	assert.Equal(t, "intake@acme.com", reply.Para)
	assert.Equal(t, "RE: Referral Request - Jane Doe", reply.Asunto)
	assert.Equal(t, "Referral for Jane Doe on 5/3/2024 at 123 Main St", reply.Cuerpo)

	_, err = svc.Compose(context.Background(), p.ID, model.ReplyRequest{Cuerpo: "  "})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	_, err = svc.Compose(context.Background(), 999, model.ReplyRequest{Cuerpo: "x"})
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "Paciente no encontrado", err.Error())
}

func TestDraft(t *testing.T) {
	svc, _, _, p := setup(t, "")

	reply, err := svc.Draft(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "RE: Referral Request - Jane Doe", reply.Asunto)
	assert.Contains(t, reply.Cuerpo, "Dear Acme  Home Care! Team,")
	assert.Contains(t, reply.Cuerpo, "Thank you for the referral for Jane Doe.")
	assert.Contains(t, reply.Cuerpo, "[Write your message here]")

	assert.Contains(t, Draft(&model.Patient{}), "Dear Agency Team,")
	assert.Contains(t, Draft(&model.Patient{}), "referral for the patient.")
}

func TestSend(t *testing.T) {
	ctx := context.Background()
	svc, store, mailer, p := setup(t, "intake@acme.com")

	reply, err := svc.Send(ctx, p.ID, model.ReplyRequest{PlantillaID: intPtr(4)})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, DefaultFromAddress, mailer.sent[0].From)
	assert.Equal(t, "intake@acme.com", mailer.sent[0].To)
	assert.Equal(t, reply.Asunto, mailer.sent[0].Subject)

	events, err := store.Outbox().GetPendingWithLock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventReplySent, events[0].EventType)
	assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.RepliesSent.WithLabelValues(kindTemplate)))

	mailer.err = errors.New("smtp down")
	_, err = svc.Send(ctx, p.ID, model.ReplyRequest{Cuerpo: "hi"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
	events, err = store.Outbox().GetPendingWithLock(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
