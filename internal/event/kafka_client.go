package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaClient struct {
	writer *kafka.Writer
	reader *kafka.Reader
}

func NewKafkaClient(host string, port string, topic string, group string) (*KafkaClient, error) {
	address := fmt.Sprintf("%s:%s", host, port)

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(address),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{address},
		Topic:    topic,
		GroupID:  group,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &KafkaClient{
		writer: writer,
		reader: reader,
	}, nil
}

// WriteMessage publishes message as JSON. The event name travels as the record
// key; ReadMessage hands it back for routing.
func (c *KafkaClient) WriteMessage(ctx context.Context, event string, message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", event, err)
	}

	err = c.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("failed to write %s message: %w", event, err)
	}
	return nil
}

func (c *KafkaClient) ReadMessage(ctx context.Context) (string, string, error) {
	message, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return "", "", err
	}
	return string(message.Key), string(message.Value), nil
}

func (c *KafkaClient) Close() error {
	writerErr := c.writer.Close()
	readerErr := c.reader.Close()
	if writerErr != nil {
		return writerErr
	}
	return readerErr
}
