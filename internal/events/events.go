package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Topics published by the scheduler.
const (
	TopicExamProposed      = "exam.proposed"
	TopicExamApproved      = "exam.approved"
	TopicExamRejected      = "exam.rejected"
	TopicScheduleFinalized = "schedule.finalized"
)

const eventSource = "exam-scheduler"

// Envelope is the wire format shared by every topic. Payload holds the
// topic-specific body.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Source     string          `json:"source"`
	Version    string          `json:"version"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// ExamEvent is the payload for the exam lifecycle topics.
type ExamEvent struct {
	ExamID         uint      `json:"exam_id"`
	DisciplineID   uint      `json:"discipline_id"`
	DisciplineName string    `json:"discipline_name"`
	ExamDate       time.Time `json:"exam_date"`
	Status         string    `json:"status"`
	ActorID        string    `json:"actor_id"`
}

// ScheduleFinalizedEvent is the payload for schedule.finalized.
type ScheduleFinalizedEvent struct {
	PeriodID      uint   `json:"period_id"`
	ApprovedExams int    `json:"approved_exams"`
	FinalizedBy   string `json:"finalized_by"`
}

// EventPublisher emits domain events. Implementations must be safe for
// concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
	Close() error
}

// WatermillPublisher adapts any watermill publisher (kafka in production,
// gochannel in tests) to the EventPublisher interface, wrapping payloads in
// the shared envelope.
type WatermillPublisher struct {
	publisher message.Publisher
}

func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	envelope := Envelope{
		ID:         uuid.NewString(),
		Type:       topic,
		Source:     eventSource,
		Version:    "1",
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", topic)
	return p.publisher.Publish(topic, msg)
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}
