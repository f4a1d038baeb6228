package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"jobdoctor/src/contracts"
)

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("Channel closed before a message arrived")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for message")
	}
	return Message{}
}

func TestReportRoundTrip(t *testing.T) {
	var brk Broker = NewInMemoryBroker()
	defer brk.Close()

	ctx := context.Background()
	reports, err := brk.Subscribe(ctx, contracts.TopicReports, "jobdoctor-view")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	sent := contracts.JobReport{
		RunID:   "run-42",
		JobName: "app",
		JobPath: "/jobs/app",
		Problems: []contracts.ProblemRecord{
			{Tag: "BROKEN", Message: "builds/7 points to missing 2024-01-07_00-00-00"},
		},
	}
	data, err := json.Marshal(sent)
	if err != nil {
		t.Fatal(err)
	}
	if err := brk.Publish(ctx, contracts.TopicReports, sent.RunID, data); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	msg := receive(t, reports)
	if msg.Topic != contracts.TopicReports {
		t.Errorf("Expected topic %s, got %s", contracts.TopicReports, msg.Topic)
	}
	if msg.Key != "run-42" {
		t.Errorf("Expected key run-42, got %s", msg.Key)
	}

	var got contracts.JobReport
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("Received value is not a report: %v", err)
	}
	if got.JobPath != sent.JobPath || len(got.Problems) != 1 || got.Problems[0].Tag != "BROKEN" {
		t.Errorf("Expected %+v, got %+v", sent, got)
	}
}

func TestEveryGroupSeesEveryReport(t *testing.T) {
	brk := NewInMemoryBroker()
	defer brk.Close()

	ctx := context.Background()
	view, err := brk.Subscribe(ctx, contracts.TopicReports, "jobdoctor-view")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	persist, err := brk.Subscribe(ctx, contracts.TopicReports, "jobdoctor-persist")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	for _, job := range []string{"a", "b"} {
		if err := brk.Publish(ctx, contracts.TopicReports, "run-1", []byte(job)); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	for name, ch := range map[string]<-chan Message{"view": view, "persist": persist} {
		first, second := receive(t, ch), receive(t, ch)
		if string(first.Value) != "a" || string(second.Value) != "b" {
			t.Errorf("%s: expected a then b, got %q then %q", name, first.Value, second.Value)
		}
	}
}

func TestClosedBrokerRejectsUse(t *testing.T) {
	brk := NewInMemoryBroker()
	if err := brk.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	ctx := context.Background()
	if err := brk.Publish(ctx, contracts.TopicReports, "run-1", []byte("{}")); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed from Publish, got %v", err)
	}
	if _, err := brk.Subscribe(ctx, contracts.TopicReports, "g"); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed from Subscribe, got %v", err)
	}
	if err := brk.Close(); err != nil {
		t.Errorf("Expected a second Close to be a no-op, got %v", err)
	}
}

func TestRedpandaNeedsBrokers(t *testing.T) {
	if _, err := NewRedpandaBroker(nil); err == nil {
		t.Error("Expected an error without seed brokers")
	}
}
