package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
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
	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.Event{}, &models.Notification{}))
	return gdb
}

func seed(t *testing.T, gdb *gorm.DB) (*models.User, *models.Event) {
	user := &models.User{FirstName: "Ada", LastName: "L", Country: "UK", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, gdb.Create(user).Error)
	event := &models.Event{Name: "Concert", TotalTickets: 1, AvailableTickets: 0, Status: types.EVENT_SOLD_OUT}
	require.NoError(t, gdb.Create(event).Error)
	return user, event
}

func promoted(user *models.User, event *models.Event) types.Activity {
	return types.Activity{
		Type:       types.ACTIVITY_WAITLIST_PROMOTED,
		EventID:    event.ID,
		UserID:     user.ID,
		Count:      1,
		Status:     types.EVENT_SOLD_OUT,
		OccurredAt: time.Now(),
	}
}

func TestPromotionMailerSends(t *testing.T) {
	gdb := newTestDB(t)
	user, event := seed(t, gdb)

	var sent []*lib.SendMailInput
	m := NewPromotionMailer(gdb, func(input *lib.SendMailInput) error {
		sent = append(sent, input)
		return nil
	})
	require.NoError(t, m.Publish(context.Background(), promoted(user, event)))

	require.Len(t, sent, 1)
	assert.Equal(t, []string{"ada@example.com"}, sent[0].To)
	assert.Contains(t, sent[0].Body, "Concert")
	assert.True(t, sent[0].Html)

	var n models.Notification
	require.NoError(t, gdb.First(&n).Error)
	assert.Equal(t, models.NotificationSent, n.Status)
	assert.Equal(t, user.ID, n.UserID)
	assert.Equal(t, event.ID, n.ReferenceValue)
}

func TestPromotionMailerRecordsFailure(t *testing.T) {
	gdb := newTestDB(t)
	user, event := seed(t, gdb)

	m := NewPromotionMailer(gdb, func(*lib.SendMailInput) error { return errors.New("smtp down") })
	err := m.Publish(context.Background(), promoted(user, event))
	assert.EqualError(t, err, "smtp down")

	var n models.Notification
	require.NoError(t, gdb.First(&n).Error)
	assert.Equal(t, models.NotificationFailed, n.Status)
}

func TestPromotionMailerIgnoresOtherActivities(t *testing.T) {
	gdb := newTestDB(t)
	user, event := seed(t, gdb)

	calls := 0
	m := NewPromotionMailer(gdb, func(*lib.SendMailInput) error { calls++; return nil })
	activity := promoted(user, event)
	activity.Type = types.ACTIVITY_TICKETS_BOOKED
	require.NoError(t, m.Publish(context.Background(), activity))

	assert.Zero(t, calls)
	var count int64
	gdb.Model(&models.Notification{}).Count(&count)
	assert.Zero(t, count)
}

func TestPromotionMailerUnknownUser(t *testing.T) {
	gdb := newTestDB(t)
	_, event := seed(t, gdb)

	m := NewPromotionMailer(gdb, func(*lib.SendMailInput) error { return nil })
	err := m.Publish(context.Background(), promoted(&models.User{ID: uuid.NewString()}, event))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

type chanPublisher chan types.Activity

func (c chanPublisher) Publish(_ context.Context, a types.Activity) error {
	c <- a
	return nil
}

func TestDetached(t *testing.T) {
	ch := make(chanPublisher, 1)
	publish := Detached(ch)
	require.NoError(t, publish(context.Background(), types.Activity{Type: types.ACTIVITY_TICKETS_BOOKED}))
	select {
	case a := <-ch:
		assert.Equal(t, types.ACTIVITY_TICKETS_BOOKED, a.Type)
	case <-time.After(time.Second):
		t.Fatal("activity was not delivered")
	}
}
