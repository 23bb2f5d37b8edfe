// Package migrations embeds the schema of each supported SQL dialect.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed mysql/*.sql postgres/*.sql
var files embed.FS

// Migration is one schema file.
type Migration struct {
	Name string
	SQL  string
}

// For returns the migrations of driver in apply order.
func For(driver string) ([]Migration, error) {
	names, err := fs.Glob(files, driver+"/*.sql")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		out = append(out, Migration{Name: name, SQL: string(data)})
	}
	return out, nil
}
