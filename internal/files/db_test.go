package files

import (
	"fmt"
	"testing"
	"time"

	"github.com/docdrop/server/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a fresh in-memory database migrated with the app's models.
// The DSN is named after the test so parallel tests never share state.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.File{}))
	return db
}

// seedFile inserts a record directly, bypassing the ingestor.
func seedFile(t *testing.T, db *gorm.DB, owner uuid.UUID, name, ftype string, size int64) models.File {
	t.Helper()

	f := models.File{
		UserID: owner,
		Name:   name,
		Path:   fmt.Sprintf("files/%s/%s.%s", owner, uuid.New(), ftype),
		Type:   ftype,
		Size:   size,
	}
	require.NoError(t, db.Create(&f).Error)
	return f
}

// seedFileAt also pins created_at, for date bucket tests.
func seedFileAt(t *testing.T, db *gorm.DB, owner uuid.UUID, name, ftype string, size int64, created time.Time) models.File {
	t.Helper()

	f := seedFile(t, db, owner, name, ftype, size)
	require.NoError(t, db.Model(&f).UpdateColumn("created_at", created).Error)
	f.CreatedAt = created
	return f
}
