package database

import (
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFS_Pairs(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}

	assert.Equal(t, ups, downs, "every migration has a rollback")

	versions := make([]string, 0, len(ups))
	for v := range ups {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	assert.Equal(t, []string{
		"000001_create_users",
		"000002_create_attendance",
		"000003_create_capture_attempts",
	}, versions)
}

func TestMigrationsFS_Schema(t *testing.T) {
	users, err := fs.ReadFile(migrationsFS, "migrations/000001_create_users.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(users), "vector(128)")

	attendance, err := fs.ReadFile(migrationsFS, "migrations/000002_create_attendance.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(attendance), "PRIMARY KEY (attendance_date, user_key)")
}

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig("postgres://localhost/presenca")

	assert.Equal(t, "postgres://localhost/presenca", cfg.DSN)
	assert.Greater(t, cfg.MaxConns, cfg.MinConns)
}
