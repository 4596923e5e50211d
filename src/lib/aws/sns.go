package aws

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
)

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher sends ticket activity to a single SNS topic.
type SNSPublisher struct {
	TopicArn string
	inner    SNSAPI
}

func NewSNSPublisher(ctx context.Context, topicArn string) (*SNSPublisher, error) {
	if topicArn == "" {
		return nil, errors.New("missing SNS topic ARN")
	}
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewSNSPublisherWithClient(sns.NewFromConfig(cfg), topicArn), nil
}

func NewSNSPublisherWithClient(client SNSAPI, topicArn string) *SNSPublisher {
	return &SNSPublisher{
		TopicArn: topicArn,
		inner:    client,
	}
}

func (p *SNSPublisher) Publish(ctx context.Context, activity types.Activity) error {
	body, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	output, err := p.inner.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.TopicArn),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(activity.Type)),
			},
			"event_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(activity.EventID),
			},
		},
	})
	if err != nil {
		log.Printf("[sns] Error publishing %s: %s\n", activity.Type, err.Error())
		return err
	}
	log.Printf("[sns] Published %s as %s\n", activity.Type, aws.ToString(output.MessageId))
	return nil
}
