package models

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/protakeoff/marketplace/internal/config"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql", DSN: "x"}, false)
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.Join(t.TempDir(), fmt.Sprintf("boot_%d.db", time.Now().UnixNano())))
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn, Pool: config.DatabasePoolConfig{MaxOpenConns: 1}}, false)
	require.NoError(t, err)
	require.NoError(t, MigrateOn(db))

	_, err = EnsureBootstrapAdmin(db, config.AdminBootstrap{Username: "root"}, false)
	require.ErrorIs(t, err, ErrBootstrapPasswordMissing)

	created, err := EnsureBootstrapAdmin(db, config.AdminBootstrap{Username: " root ", Password: "S3cure-pass"}, false)
	require.NoError(t, err)
	require.True(t, created)

	var admin Admin
	require.NoError(t, db.Where("username = ?", "root").Take(&admin).Error)
	require.True(t, admin.IsSuper)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("S3cure-pass")))

	// 已有员工时不再创建
	created, err = EnsureBootstrapAdmin(db, config.AdminBootstrap{Username: "other", Password: "x"}, true)
	require.NoError(t, err)
	require.False(t, created)
}
