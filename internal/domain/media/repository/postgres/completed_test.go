package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

// openTestDB connects to PIBOT_TEST_DSN, skipping when it is not set
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("PIBOT_TEST_DSN")
	if dsn == "" {
		t.Skip("PIBOT_TEST_DSN not set, skipping PostgreSQL integration test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.CompletedDownload{}))

	t.Cleanup(func() {
		db.Where("message_id IN ?", []int{9001}).Delete(&entities.CompletedDownload{})
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestRecordCompletedAllowsDuplicates(t *testing.T) {
	db := openTestDB(t)
	repo := NewCompletedRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.RecordCompleted(ctx, 9001))
	require.NoError(t, repo.RecordCompleted(ctx, 9001))

	var records []entities.CompletedDownload
	require.NoError(t, db.Where("message_id = ?", 9001).Find(&records).Error)
	require.Len(t, records, 2)
	require.False(t, records[0].CompletedAt.IsZero())
}

func TestRecordCompletedDryRun(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost dbname=pibot"}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	var statement *gorm.Statement
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("capture", func(tx *gorm.DB) {
		statement = tx.Statement
	}))

	require.NoError(t, NewCompletedRepository(db).RecordCompleted(context.Background(), 42))
	require.NotNil(t, statement)
	require.Equal(t, "downloads", statement.Table)
	require.Contains(t, statement.SQL.String(), `INSERT INTO "downloads"`)
	require.Contains(t, statement.Vars, 42)
}
