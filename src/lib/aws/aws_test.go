package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

type fakeSecrets struct {
	value *string
	err   error
}

func (f *fakeSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.value}, nil
}

func TestSNSPublisherPublish(t *testing.T) {
	client := &fakeSNS{}
	p := NewSNSPublisherWithClient(client, "arn:aws:sns:us-east-1:000000000000:ticket-activity")

	err := p.Publish(context.Background(), types.Activity{
		Type:             types.ACTIVITY_TICKETS_CANCELLED,
		EventID:          "event-1",
		UserID:           "user-1",
		Count:            2,
		AvailableTickets: 2,
		Status:           types.EVENT_AVAILABLE_TICKET,
		OccurredAt:       time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:ticket-activity", aws.ToString(in.TopicArn))
	assert.Equal(t, "tickets.cancelled", aws.ToString(in.MessageAttributes["type"].StringValue))
	assert.Equal(t, "event-1", aws.ToString(in.MessageAttributes["event_id"].StringValue))
	assert.Equal(t, int64(2), gjson.Get(aws.ToString(in.Message), "count").Int())
	assert.Equal(t, "available ticket", gjson.Get(aws.ToString(in.Message), "status").String())
}

func TestSNSPublisherError(t *testing.T) {
	client := &fakeSNS{err: errors.New("throttled")}
	p := NewSNSPublisherWithClient(client, "arn")
	err := p.Publish(context.Background(), types.Activity{Type: types.ACTIVITY_TICKETS_BOOKED})
	assert.EqualError(t, err, "throttled")
}

func TestGetSecret(t *testing.T) {
	ctx := context.Background()

	v, err := GetSecret(ctx, &fakeSecrets{value: aws.String("plain-secret")}, "jwt", "")
	require.NoError(t, err)
	assert.Equal(t, "plain-secret", v)

	v, err = GetSecret(ctx, &fakeSecrets{value: aws.String(`{"jwt_secret":"from-json"}`)}, "jwt", "jwt_secret")
	require.NoError(t, err)
	assert.Equal(t, "from-json", v)

	_, err = GetSecret(ctx, &fakeSecrets{value: aws.String(`{"other":"x"}`)}, "jwt", "jwt_secret")
	assert.Error(t, err)

	_, err = GetSecret(ctx, &fakeSecrets{value: aws.String("not json")}, "jwt", "jwt_secret")
	assert.Error(t, err)

	_, err = GetSecret(ctx, &fakeSecrets{}, "jwt", "")
	assert.Error(t, err)

	_, err = GetSecret(ctx, &fakeSecrets{err: errors.New("denied")}, "jwt", "")
	assert.EqualError(t, err, "denied")
}
