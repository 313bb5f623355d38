package dao

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tablewise/restaurant-api/internal/db"
)

// newPostgres starts a throwaway Postgres container. It needs a Docker daemon
// and only runs when INTEGRATION is set.
func newPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() || os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run tests against Postgres")
	}

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)
	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=restaurant",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=restaurant",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("pool.Purge: %v", err)
		}
	})
	require.NoError(t, resource.Expire(300))

	url := fmt.Sprintf("postgres://restaurant:secret@%s/restaurant?sslmode=disable", resource.GetHostPort("5432/tcp"))

	var gdb *gorm.DB
	err = pool.Retry(func() error {
		var err error
		gdb, err = db.OpenPostgresWithURL(url)
		if err != nil {
			return err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	})
	require.NoError(t, err)
	require.NoError(t, InitTables(gdb))

	return gdb
}

func TestPostgres_PayOrder_Concurrent(t *testing.T) {
	paid, duplicates := payConcurrently(t, newPostgres(t), 16)

	assert.Equal(t, 1, paid)
	assert.Equal(t, 15, duplicates)
}
