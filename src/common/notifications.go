package common

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/lacegiovanni17/event-ticket-BE/src/config"
	"github.com/lacegiovanni17/event-ticket-BE/src/lib"
	"github.com/lacegiovanni17/event-ticket-BE/src/models"
	"github.com/lacegiovanni17/event-ticket-BE/src/models/scopes"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"gorm.io/gorm"
)

type MailSender func(input *lib.SendMailInput) error

// PromotionMailer tells a user by e-mail that a waiting-list entry of theirs
// became a ticket. Every attempt is recorded as a Notification row.
type PromotionMailer struct {
	db   *gorm.DB
	send MailSender
	from string
}

func NewPromotionMailer(db *gorm.DB, send MailSender) *PromotionMailer {
	if send == nil {
		send = lib.SendMail
	}
	return &PromotionMailer{
		db:   db,
		send: send,
		from: config.SMTPFrom(),
	}
}

func (m *PromotionMailer) Publish(ctx context.Context, activity types.Activity) error {
	if activity.Type != types.ACTIVITY_WAITLIST_PROMOTED {
		return nil
	}
	tx := m.db.WithContext(ctx)

	var user models.User
	if err := tx.Scopes(scopes.WithID(activity.UserID)).First(&user).Error; err != nil {
		log.Printf("[mailer] Could not load promoted user %s: %s\n", activity.UserID, err.Error())
		return err
	}
	var event models.Event
	if err := tx.Scopes(scopes.WithID(activity.EventID)).First(&event).Error; err != nil {
		log.Printf("[mailer] Could not load event %s: %s\n", activity.EventID, err.Error())
		return err
	}

	payload := activity.Payload()
	notification := models.Notification{
		UserID:          user.ID,
		ReferenceSource: "events",
		ReferenceType:   string(activity.Type),
		ReferenceValue:  event.ID,
		Title:           fmt.Sprintf("Your ticket for %s is confirmed", event.Name),
		ActionType:      "ticket",
		ActionData:      &payload,
		Type:            "email",
		Status:          models.NotificationPending,
	}
	if err := tx.Create(&notification).Error; err != nil {
		log.Printf("[mailer] Could not record notification: %s\n", err.Error())
		return err
	}

	input := &lib.SendMailInput{
		Subject:  notification.Title,
		From:     m.from,
		FromName: "noreply",
		To:       []string{user.Email},
		Body: fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>A seat opened up for <b>%s</b> and your place on the waiting list has been converted into a ticket.</p>
			<p>View your tickets <a href="%s/events/%s/tickets">here</a></p>
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
			user.FirstName,
			event.Name,
			os.Getenv("APP_HOST"),
			event.ID,
		),
		Html: true,
	}
	status := models.NotificationSent
	sendErr := m.send(input)
	if sendErr != nil {
		log.Printf("[mailer] Error sending message: %s\n", sendErr.Error())
		status = models.NotificationFailed
	}
	if err := tx.Model(&notification).Update("status", status).Error; err != nil {
		log.Printf("[mailer] Could not update notification %s: %s\n", notification.ID, err.Error())
		if sendErr == nil {
			return err
		}
	}
	if sendErr != nil {
		return sendErr
	}
	log.Printf("[mailer] Promotion e-mail sent to %s\n", user.Email)
	return nil
}

// Detached returns a publisher that hands activities to p in the background so
// slow delivery never holds up a request.
func Detached(p interface {
	Publish(context.Context, types.Activity) error
}) func(context.Context, types.Activity) error {
	return func(_ context.Context, activity types.Activity) error {
		go func() {
			if err := p.Publish(context.Background(), activity); err != nil {
				log.Printf("[notifications] %s for event %s not delivered: %s\n", activity.Type, activity.EventID, err.Error())
			}
		}()
		return nil
	}
}
