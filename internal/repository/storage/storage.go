// Package storage selects the Store implementation named by configuration.
package storage

import (
	"fmt"

	"github.com/jwalitptl/homecare-api/internal/config"
	"github.com/jwalitptl/homecare-api/internal/repository"
	"github.com/jwalitptl/homecare-api/internal/repository/memstore"
	"github.com/jwalitptl/homecare-api/internal/repository/sqlstore"
)

const DriverMemory = "memory"

func Open(cfg config.DatabaseConfig) (repository.Store, error) {
	if cfg.Driver == DriverMemory {
		return memstore.New(), nil
	}

	db, err := sqlstore.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Driver, err)
	}
	return sqlstore.New(db), nil
}
