package stt

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func drain(events <-chan Event) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestMockStreamScript(t *testing.T) {
	script := []ScriptedUtterance{
		{Partials: []string{"point"}, Final: "point one", Speaker: "Speaker 0", Confidence: 0.9},
		{Partials: nil, Final: "point two", Speaker: "Speaker 1", Confidence: 0.9},
	}
	provider := NewMockProvider(script, zap.NewNop())

	stream, err := provider.Start(context.Background(), StreamOptions{InterimResults: true, Diarize: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	frame := []byte{0, 0}
	for i := 0; i < 4; i++ {
		if err := stream.SendAudio(context.Background(), frame); err != nil {
			t.Fatalf("SendAudio: %v", err)
		}
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	events := drain(stream.Events())
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3: %+v", len(events), events)
	}
	if events[0].IsFinal || events[0].Text != "point" {
		t.Errorf("first event = %+v, want interim 'point'", events[0])
	}
	if !events[1].IsFinal || events[1].Text != "point one" || events[1].Speaker != "Speaker 0" {
		t.Errorf("second event = %+v, want final 'point one'", events[1])
	}
	if !events[2].IsFinal || events[2].Text != "point two" {
		t.Errorf("third event = %+v, want final 'point two'", events[2])
	}
}

func TestMockStreamNoInterims(t *testing.T) {
	script := []ScriptedUtterance{
		{Partials: []string{"a", "b"}, Final: "a b c", Confidence: 0.9},
	}
	provider := NewMockProvider(script, zap.NewNop())

	stream, err := provider.Start(context.Background(), StreamOptions{InterimResults: false})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := stream.SendAudio(context.Background(), []byte{1}); err != nil {
			t.Fatalf("SendAudio: %v", err)
		}
	}

	events := drain(stream.Events())
	if len(events) != 1 || !events[0].IsFinal {
		t.Fatalf("events = %+v, want single final", events)
	}
	if events[0].Speaker != "" {
		t.Errorf("speaker = %q, want empty without diarization", events[0].Speaker)
	}
}

func TestMockStreamClosed(t *testing.T) {
	provider := NewMockProvider(nil, zap.NewNop())
	stream, err := provider.Start(context.Background(), StreamOptions{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := stream.SendAudio(context.Background(), []byte{1}); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("SendAudio after close = %v, want ErrStreamClosed", err)
	}
	if _, ok := <-stream.Events(); ok {
		t.Fatal("events channel still open after close")
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("Err after clean close = %v, want nil", err)
	}
}

func TestMockStreamFail(t *testing.T) {
	provider := NewMockProvider(nil, zap.NewNop())
	stream, err := provider.Start(context.Background(), StreamOptions{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	boom := errors.New("upstream hangup")
	stream.(*mockStream).Fail(boom)

	if _, ok := <-stream.Events(); ok {
		t.Fatal("events channel still open after failure")
	}
	if err := stream.Err(); !errors.Is(err, boom) {
		t.Fatalf("Err = %v, want %v", err, boom)
	}
}
