package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// BeforeUpdate runs fn once, on the same transaction, right before the first
// UPDATE gorm issues against table. It stands in for a concurrent writer that
// commits between a read and the conditional write that follows it.
func BeforeUpdate(t *testing.T, db *gorm.DB, table string, fn func(tx *gorm.DB) error) {
	t.Helper()
	require.NoError(t, db.Callback().Update().Before("gorm:update").
		Register("testutil:before_update_"+table, interleaveOnce(table, fn)))
}

// BeforeDelete is BeforeUpdate for DELETE statements
func BeforeDelete(t *testing.T, db *gorm.DB, table string, fn func(tx *gorm.DB) error) {
	t.Helper()
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").
		Register("testutil:before_delete_"+table, interleaveOnce(table, fn)))
}

func interleaveOnce(table string, fn func(tx *gorm.DB) error) func(*gorm.DB) {
	var once sync.Once
	return func(d *gorm.DB) {
		if d.Statement.Table != table {
			return
		}
		once.Do(func() {
			if err := fn(d.Session(&gorm.Session{NewDB: true})); err != nil {
				d.AddError(err)
			}
		})
	}
}
