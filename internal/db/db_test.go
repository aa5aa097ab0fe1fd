package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taicc-readiness/internal/config"
	"taicc-readiness/internal/model"
)

func TestInitDBDisabled(t *testing.T) {
	conn, err := InitDBFromConfig(config.Default())
	require.NoError(t, err)
	assert.Nil(t, conn)
}

func TestInitDBSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.DB.Initialize = true
	cfg.DB.Driver = "sqlite"
	cfg.DB.Names.TAICC = filepath.Join(t.TempDir(), "results.db")
	cfg.DB.Pool.MaxOpenConns = 2

	conn, err := InitDBFromConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.True(t, conn.Migrator().HasTable(&model.AssessmentResult{}))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestInitDBUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.DB.Initialize = true
	cfg.DB.Driver = "oracle"

	_, err := InitDBFromConfig(cfg)
	assert.ErrorContains(t, err, "unsupported database driver")
}
