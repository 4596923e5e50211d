package boot

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/lacegiovanni17/event-ticket-BE/src/allocator"
	"github.com/lacegiovanni17/event-ticket-BE/src/config"
	"github.com/lacegiovanni17/event-ticket-BE/src/lib"
	"github.com/lacegiovanni17/event-ticket-BE/src/models"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(gdb))
	return gdb
}

func TestInitBrokerWithoutBroker(t *testing.T) {
	t.Setenv("BROKER", "")
	p, closer, err := InitBroker(context.Background(), newTestDB(t))
	require.NoError(t, err)
	defer closer()

	fan, ok := p.(allocator.FanOut)
	require.True(t, ok)
	assert.Len(t, fan, 1)
	assert.NoError(t, p.Publish(context.Background(), types.Activity{Type: types.ACTIVITY_TICKETS_BOOKED}))
}

func TestInitBrokerUnknown(t *testing.T) {
	t.Setenv("BROKER", "carrier-pigeon")
	_, _, err := InitBroker(context.Background(), newTestDB(t))
	assert.Error(t, err)
}

func TestInitBrokerSNSRequiresTopic(t *testing.T) {
	t.Setenv("BROKER", config.BROKER_SNS)
	t.Setenv("SNS_TOPIC_ARN", "")
	_, _, err := InitBroker(context.Background(), newTestDB(t))
	assert.Error(t, err)
}

func TestInitSecretsFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET_ARN", "")
	t.Setenv("JWT_SECRET", "")
	config.SetJWTSecret(nil)
	assert.Error(t, InitSecrets(context.Background()))

	t.Setenv("JWT_SECRET", "local-secret")
	assert.NoError(t, InitSecrets(context.Background()))
}

func TestRunReconcileFixesStatus(t *testing.T) {
	gdb := newTestDB(t)
	event := &models.Event{Name: "Gala", TotalTickets: 2, AvailableTickets: 2, Status: types.EVENT_SOLD_OUT}
	require.NoError(t, gdb.Create(event).Error)

	runReconcile(allocator.New(gdb, nil, allocator.Options{}))

	var reloaded models.Event
	require.NoError(t, gdb.First(&reloaded, "id = ?", event.ID).Error)
	assert.Equal(t, types.EVENT_AVAILABLE_TICKET, reloaded.Status)
}

func TestInitSchedulerRegistersReconcile(t *testing.T) {
	s, err := gocron.NewScheduler()
	require.NoError(t, err)
	lib.NewScheduler(s)
	defer func() {
		s.Shutdown()
		lib.NewScheduler(nil)
	}()

	InitScheduler(allocator.New(newTestDB(t), nil, allocator.Options{}))

	require.Len(t, s.Jobs(), 1)
	assert.Equal(t, reconcileJobName, s.Jobs()[0].Name())
}
