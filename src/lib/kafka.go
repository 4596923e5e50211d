package lib

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
)

func GetKafkaProducerConfig(clientId string) kafka.ConfigMap {
	return kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         clientId,
		"acks":              "all",
	}
}

// KafkaPublisher writes activities to a topic keyed by event id, so all activity
// for one event lands on the same partition in commit order.
type KafkaPublisher struct {
	topic    string
	producer *kafka.Producer
}

func NewKafkaPublisher(clientId string, topic string) (*KafkaPublisher, error) {
	cfg := GetKafkaProducerConfig(clientId)
	p, err := kafka.NewProducer(&cfg)
	if err != nil {
		log.Printf("[kafka] Error on producer: %s\n", err.Error())
		return nil, err
	}
	return &KafkaPublisher{topic: topic, producer: p}, nil
}

func (k *KafkaPublisher) Publish(ctx context.Context, activity types.Activity) error {
	msg, err := ActivityMessage(k.topic, activity)
	if err != nil {
		return err
	}
	delivery := make(chan kafka.Event, 1)
	if err := k.producer.Produce(msg, delivery); err != nil {
		log.Printf("[kafka] Error producing %s: %s\n", activity.Type, err.Error())
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		m, ok := e.(*kafka.Message)
		if !ok {
			return errors.New("unexpected delivery report")
		}
		if m.TopicPartition.Error != nil {
			return m.TopicPartition.Error
		}
		return nil
	}
}

func (k *KafkaPublisher) Close() {
	k.producer.Flush(5000)
	k.producer.Close()
}

func ActivityMessage(topic string, activity types.Activity) (*kafka.Message, error) {
	value, err := json.Marshal(activity)
	if err != nil {
		return nil, err
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(activity.EventID),
		Value:          value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(activity.Type)},
		},
	}, nil
}

func KafkaCreateTopics(ctx context.Context, topics ...string) ([]kafka.TopicResult, error) {
	a, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
	})
	if err != nil {
		log.Printf("[kafka] Error on AdminClient: %s\n", err.Error())
		return nil, err
	}
	defer a.Close()
	topicsDef := []kafka.TopicSpecification{}
	for _, topic := range topics {
		topicsDef = append(topicsDef, kafka.TopicSpecification{
			Topic:             topic,
			NumPartitions:     10,
			ReplicationFactor: 1,
		})
	}
	result, err := a.CreateTopics(ctx, topicsDef)
	if err != nil {
		log.Printf("[kafka] Error creating topics: %s\n", err.Error())
		return nil, err
	}
	return result, nil
}
