package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForKnownDrivers(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres"} {
		t.Run(driver, func(t *testing.T) {
			ms, err := For(driver)
			require.NoError(t, err)
			require.NotEmpty(t, ms)
			assert.Equal(t, driver+"/001_init.sql", ms[0].Name)
			for _, table := range []string{"agencias", "pacientes", "asignaciones_terapeutas",
				"rechazos_paciente", "rechazos_terapeuta", "therapists", "outbox_events"} {
				assert.Contains(t, ms[0].SQL, "CREATE TABLE IF NOT EXISTS "+table)
			}
			assert.Contains(t, ms[0].SQL, "ON DELETE CASCADE")
		})
	}
}

func TestForUnknownDriver(t *testing.T) {
	_, err := For("memory")
	assert.ErrorContains(t, err, `no migrations for driver "memory"`)
}
