package events

import (
	"context"
	"encoding/json"
	"time"

	"allocate/internal/common"
	"allocate/internal/processmanager"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaSink 将模拟事件发布到 Kafka 主题。
// 事件发布失败不影响模拟本身，只记录日志
type KafkaSink struct {
	writer *kafka.Writer
	runID  string
	logger *zap.Logger
}

// eventPayload 发布到主题的消息体
type eventPayload struct {
	RunID string `json:"run_id"`
	processmanager.Event
}

// NewKafkaSink 创建 Kafka 事件发布器
func NewKafkaSink(config *common.EventsConfig, runID string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(config.Brokers...),
			Topic:                  config.Topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		runID:  runID,
		logger: common.ComponentLogger("events"),
	}
}

// OnEvent 以进程名称为键发布一条事件消息
func (s *KafkaSink) OnEvent(event processmanager.Event) {
	data, err := json.Marshal(eventPayload{RunID: s.runID, Event: event})
	if err != nil {
		s.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Process),
		Value: data,
	})
	if err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("process", event.Process),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}

// Close 关闭 Kafka 连接
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
