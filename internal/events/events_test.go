package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

func TestWatermillPublisher_EnvelopesPayload(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(context.Background(), TopicExamApproved)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	publisher := NewWatermillPublisher(pubSub)
	event := ExamEvent{
		ExamID:         7,
		DisciplineID:   3,
		DisciplineName: "Operating Systems",
		ExamDate:       time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		Status:         "APPROVED",
		ActorID:        "coordinator-1",
	}

	if err := publisher.Publish(context.Background(), TopicExamApproved, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()

		var envelope Envelope
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		if envelope.Type != TopicExamApproved {
			t.Errorf("envelope.Type = %q, want %q", envelope.Type, TopicExamApproved)
		}
		if envelope.Source != eventSource {
			t.Errorf("envelope.Source = %q, want %q", envelope.Source, eventSource)
		}
		if envelope.ID == "" {
			t.Error("envelope.ID is empty")
		}

		var got ExamEvent
		if err := json.Unmarshal(envelope.Payload, &got); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if got.ExamID != event.ExamID || got.Status != event.Status {
			t.Errorf("payload = %+v, want %+v", got, event)
		}
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
}

func TestNoopPublisher(t *testing.T) {
	var publisher NoopPublisher
	if err := publisher.Publish(context.Background(), TopicExamProposed, nil); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
