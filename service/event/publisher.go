/*
 * @module service/event/publisher
 * @description Kafka事件发布器，尽力而为地发布同步完成与实体审计事件；
 *              未配置broker时自动禁用，发布失败只记日志不影响主流程
 * @architecture 适配器模式 - 封装第三方Kafka客户端
 * @documentReference dev_docs/sync_design.md
 * @stateFlow 构造事件 -> 序列化 -> 发送 -> (失败记日志)
 * @rules 事件发布永不阻塞业务结果；写失败不重试
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs service/sync/sync_service.go
 */

package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// 事件类型
const (
	TypeSyncCompleted = "sync.completed"
	TypeSyncFailed    = "sync.failed"
	TypeEntityCreated = "entity.created"
	TypeEntityUpdated = "entity.updated"
	TypeEntityDeleted = "entity.deleted"
)

// Event 发布到Kafka的事件结构
type Event struct {
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Publisher Kafka事件发布器
type Publisher struct {
	writer *kafka.Writer
	topic  string
}

// NewPublisher 创建事件发布器，KAFKA_BROKERS 为空时返回禁用实例
func NewPublisher() *Publisher {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		slog.Info("未配置KAFKA_BROKERS，事件发布已禁用")
		return &Publisher{}
	}

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "qc-events"
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}

	slog.Info("Kafka事件发布器已启用", "brokers", brokers, "topic", topic)
	return &Publisher{writer: writer, topic: topic}
}

// Enabled 是否已启用
func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

// Publish 发布事件，失败只记日志
func (p *Publisher) Publish(ctx context.Context, eventType string, payload interface{}) {
	if p.writer == nil {
		return
	}

	evt := Event{
		Type:      eventType,
		Source:    "qc-service",
		Timestamp: time.Now(),
		Payload:   payload,
	}
	value, err := json.Marshal(evt)
	if err != nil {
		slog.Error("事件序列化失败", "type", eventType, "error", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eventType),
		Value: value,
	})
	if err != nil {
		slog.Error("事件发布失败", "type", eventType, "topic", p.topic, "error", err)
	}
}

// Close 关闭底层writer
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
