package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/avandorn1/LLM-food-logging/config"
	"github.com/avandorn1/LLM-food-logging/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the package-level handle at a fresh in-memory database.
func setupTestDB(t *testing.T) {
	t.Helper()
	config.Log = zap.NewNop().Sugar()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Goal{}, &models.FoodLog{}))
	config.DB = db
}

// fakeCompleter returns a canned reply (or error) and records what it saw.
type fakeCompleter struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastMsg    string
}

func (f *fakeCompleter) Complete(_ context.Context, system string, _ []ChatMessage, message string) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastMsg = message
	return f.reply, f.err
}

func countLogs(t *testing.T, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, config.DB.Model(&models.FoodLog{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func nowDay() time.Time { return time.Now() }

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(v string) *string   { return &v }
