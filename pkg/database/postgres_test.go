package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	ID   int64
	Name string
}

func TestInitDB_SQLiteWithMigration(t *testing.T) {
	db, err := InitDB(Options{Driver: DriverSQLite, DSN: ":memory:", MaxOpen: 1}, nil, &probe{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&probe{Name: "x"}).Error)

	var n int64
	db.Model(&probe{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestInitDB_InvalidOptions(t *testing.T) {
	_, err := InitDB(Options{Driver: DriverSQLite}, nil)
	assert.ErrorContains(t, err, "DATABASE_DSN")

	_, err = InitDB(Options{Driver: "mysql", DSN: "x"}, nil)
	assert.ErrorContains(t, err, "不支持的数据库驱动")
}
