package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiscipline(t *testing.T) {
	d, err := ParseDiscipline(" cota ")
	require.NoError(t, err)
	assert.Equal(t, DisciplineCOTA, d)
	assert.Equal(t, DisciplineOT, d.Family())

	_, err = ParseDiscipline("RN")
	assert.Error(t, err)
}

func TestParseRequirements(t *testing.T) {
	reqs, err := ParseRequirements("pt, OT,pt,, sta")
	require.NoError(t, err)
	assert.Equal(t, Requirements{DisciplinePT, DisciplineOT, DisciplineSTA}, reqs)
	assert.Equal(t, "PT,OT,STA", reqs.String())
	assert.True(t, reqs.Contains(DisciplineOT))
	assert.False(t, reqs.Contains(DisciplinePTA))

	_, err = ParseRequirements(" , ")
	assert.Error(t, err)

	_, err = ParseRequirements("PT,XX")
	assert.Error(t, err)
}

func TestPatientStatusTerminal(t *testing.T) {
	assert.True(t, PatientStatusCompleted.Terminal())
	assert.True(t, PatientStatusNotAttended.Terminal())
	assert.False(t, PatientStatusNew.Terminal())
	assert.False(t, PatientStatusTherapySync.Terminal())

	st, err := ParsePatientStatus("Therapy_Sync")
	require.NoError(t, err)
	assert.Equal(t, PatientStatusTherapySync, st)
}

func TestAgencyEnums(t *testing.T) {
	st, err := ParseAgencyStatus("")
	require.NoError(t, err)
	assert.Equal(t, AgencyStatusActive, st)

	st, err = ParseAgencyStatus("pendiente")
	require.NoError(t, err)
	assert.Equal(t, AgencyStatusPending, st)

	_, err = ParseAgencyStatus("Closed")
	assert.Error(t, err)

	docs, err := ParseDocsFlag("si")
	require.NoError(t, err)
	assert.Equal(t, DocsYes, docs)
}

func TestTherapistEnums(t *testing.T) {
	st, err := ParseTherapistStatus("Inactivo")
	require.NoError(t, err)
	assert.Equal(t, TherapistStatusInactive, st)

	_, err = ParseTherapistCategory("gold")
	assert.Error(t, err)
}

func TestPatientRequirementsIgnoresGarbage(t *testing.T) {
	p := &Patient{Requerimientos: "PT,??"}
	assert.Nil(t, p.Requirements())

	p.Requerimientos = "OT,PT"
	assert.Equal(t, Requirements{DisciplineOT, DisciplinePT}, p.Requirements())
}

func TestNewOutboxEvent(t *testing.T) {
	evt, err := NewOutboxEvent(EventPatientRejected, map[string]int64{"paciente_id": 7})
	require.NoError(t, err)
	assert.Equal(t, OutboxStatusPending, evt.Status)
	assert.JSONEq(t, `{"paciente_id":7}`, string(evt.Payload))
}
