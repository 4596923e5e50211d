package boot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/lacegiovanni17/event-ticket-BE/src/allocator"
	"github.com/lacegiovanni17/event-ticket-BE/src/common"
	"github.com/lacegiovanni17/event-ticket-BE/src/config"
	"github.com/lacegiovanni17/event-ticket-BE/src/db"
	"github.com/lacegiovanni17/event-ticket-BE/src/lib"
	awslib "github.com/lacegiovanni17/event-ticket-BE/src/lib/aws"
	"github.com/lacegiovanni17/event-ticket-BE/src/models"
	"gorm.io/gorm"
)

const reconcileJobName = "reconcile-event-capacity"

func InitDb() *gorm.DB {
	db := db.GetDb()
	if err := Migrate(db); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.TicketOrder{},
		&models.WaitingListEntry{},
		&models.Notification{},
	)
}

// InitSecrets replaces JWT_SECRET with the value stored in Secrets Manager
// when JWT_SECRET_ARN is set.
func InitSecrets(ctx context.Context) error {
	arn := os.Getenv("JWT_SECRET_ARN")
	if arn == "" {
		if len(config.JWTSecret()) == 0 {
			return errors.New("JWT_SECRET is not set")
		}
		return nil
	}
	client, err := awslib.NewSecretsClient(ctx)
	if err != nil {
		return err
	}
	secret, err := awslib.GetSecret(ctx, client, arn, os.Getenv("JWT_SECRET_FIELD"))
	if err != nil {
		log.Printf("[secrets] Error retrieving JWT secret: %s\n", err.Error())
		return err
	}
	config.SetJWTSecret([]byte(secret))
	log.Println("[secrets] JWT secret loaded from Secrets Manager")
	return nil
}

// InitBroker builds the publisher the allocator reports activity to: the
// configured broker plus the promotion mailer. The returned func releases the
// broker connection.
func InitBroker(ctx context.Context, db *gorm.DB) (allocator.Publisher, func(), error) {
	mailer := allocator.PublisherFunc(common.Detached(common.NewPromotionMailer(db, nil)))
	closer := func() {}

	switch config.Broker() {
	case config.BROKER_KAFKA:
		topic := config.ActivityTopic()
		if _, err := lib.KafkaCreateTopics(ctx, topic); err != nil {
			log.Printf("[kafka] Could not create topic %s: %s\n", topic, err.Error())
		}
		kp, err := lib.NewKafkaPublisher("event-ticket-api", topic)
		if err != nil {
			return nil, closer, err
		}
		log.Printf("[broker] Publishing activity to kafka topic %s\n", topic)
		return allocator.FanOut{kp, mailer}, kp.Close, nil
	case config.BROKER_SNS:
		sp, err := awslib.NewSNSPublisher(ctx, os.Getenv("SNS_TOPIC_ARN"))
		if err != nil {
			return nil, closer, err
		}
		log.Printf("[broker] Publishing activity to SNS topic %s\n", sp.TopicArn)
		return allocator.FanOut{sp, mailer}, closer, nil
	case "":
		log.Println("[broker] No broker configured, activity is only mailed")
		return allocator.FanOut{mailer}, closer, nil
	default:
		return nil, closer, fmt.Errorf("unknown broker %q", config.Broker())
	}
}

func runReconcile(a *allocator.Allocator) {
	report, err := a.Reconcile(context.Background())
	if err != nil {
		log.Printf("[reconcile] Run failed: %s\n", err.Error())
		return
	}
	log.Printf("[reconcile] Checked %d events, fixed %d statuses, %d drifted\n", report.Checked, report.StatusFixed, len(report.Drifted))
}

func InitScheduler(a *allocator.Allocator) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if _, err := lib.CreateCronJob(reconcileJobName, config.ReconcileInterval(), runReconcile, a); err != nil {
		log.Printf("Error scheduling job: %s\n", err.Error())
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
	}
}
