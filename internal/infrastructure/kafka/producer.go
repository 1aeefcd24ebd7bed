package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zakupka-tech/go-backend/internal/cfg"
	"github.com/zakupka-tech/go-backend/internal/usecase"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

// importReportEvent — событие о завершённом запуске импорта.
type importReportEvent struct {
	EventID        string                 `json:"event_id"`
	EventTimestamp int64                  `json:"event_timestamp"`
	RunID          string                 `json:"run_id"`
	StartedAt      time.Time              `json:"started_at"`
	FinishedAt     time.Time              `json:"finished_at"`
	Entities       map[string]batchCounts `json:"entities"`
	TableCounts    map[string]int64       `json:"table_counts"`
	ErrorCount     int                    `json:"error_count"`
	ErrorLogObject string                 `json:"error_log_object,omitempty"`
}

type batchCounts struct {
	Success int `json:"success"`
	Errors  int `json:"errors"`
}

type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) (*Producer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    10,
		BatchTimeout: 500 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warnf("Kafka producer error: %s", err.Error())
			}
		},
	}

	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// PublishImportReport публикует итоговый отчёт запуска импорта.
// Ключ сообщения — идентификатор запуска, чтобы повторные публикации
// одного запуска попадали в одну партицию.
func (p *Producer) PublishImportReport(ctx context.Context, report *usecase.ImportReport) error {
	event := importReportEvent{
		EventID:        uuid.NewString(),
		EventTimestamp: time.Now().UnixNano(),
		RunID:          report.RunID,
		StartedAt:      report.StartedAt,
		FinishedAt:     report.FinishedAt,
		Entities:       make(map[string]batchCounts, len(report.Entities)),
		TableCounts:    report.TableCounts,
		ErrorCount:     report.ErrorCount,
		ErrorLogObject: report.ErrorLogObject,
	}
	for entity, counts := range report.Entities {
		event.Entities[entity] = batchCounts{
			Success: counts.Success,
			Errors:  counts.Errors,
		}
	}

	value, err := json.Marshal(event)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(report.RunID),
		Value: value,
	})
}

func (p *Producer) EnsureTopic(timeout time.Duration) error {
	conn, err := kafka.Dial(p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(p.cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		err := conn.CreateTopics(kafka.TopicConfig{
			Topic:             p.cfg.Topic,
			NumPartitions:     p.cfg.Partitions,
			ReplicationFactor: p.cfg.ReplicationFactor,
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", p.cfg.Topic, err))
		}
		return nil
	case <-time.After(timeout):
		_ = conn.Close()
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("timeout: %v, topic: %s", timeout, p.cfg.Topic))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
