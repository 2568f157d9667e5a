package notify_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-quest/internal/notify"
	"github.com/p-n-ai/pai-quest/internal/progression"
)

func TestFromEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     progression.Event
		wantKind  notify.Kind
		wantTitle string
		wantDesc  string
	}{
		{
			name:      "section",
			event:     progression.Event{Type: progression.SectionCompleted, XP: 25},
			wantKind:  notify.KindSectionCompleted,
			wantTitle: "Section Complete! 🎉",
			wantDesc:  "+25 XP earned",
		},
		{
			name:      "module",
			event:     progression.Event{Type: progression.ModuleCompleted, XP: 1200},
			wantKind:  notify.KindModuleCompleted,
			wantTitle: "Module Complete! 🏆",
			wantDesc:  "+1,200 XP earned. Achievement unlocked!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := notify.FromEvent(tt.event)
			if !ok {
				t.Fatal("FromEvent() ok = false")
			}
			if n.Kind != tt.wantKind || n.Title != tt.wantTitle || n.Description != tt.wantDesc {
				t.Errorf("FromEvent() = %+v", n)
			}
			if n.XP != tt.event.XP {
				t.Errorf("XP = %d, want %d", n.XP, tt.event.XP)
			}
		})
	}

	if _, ok := notify.FromEvent(progression.Event{}); ok {
		t.Error("FromEvent(zero) ok = true, want false")
	}
}

func TestQuizGate(t *testing.T) {
	n := notify.QuizGate()
	if n.Variant != notify.VariantDestructive {
		t.Errorf("Variant = %q, want destructive", n.Variant)
	}
	if n.Description != "Please submit the quiz before proceeding." {
		t.Errorf("Description = %q", n.Description)
	}
}

func TestHub_PublishToSession(t *testing.T) {
	hub := notify.NewHub()
	a, cancelA := hub.Subscribe("s1")
	defer cancelA()
	b, cancelB := hub.Subscribe("s2")
	defer cancelB()

	hub.Publish("s1", notify.QuizSubmitted())

	select {
	case n := <-a:
		if n.Kind != notify.KindQuizSubmitted {
			t.Errorf("Kind = %q, want quiz_submitted", n.Kind)
		}
	default:
		t.Fatal("subscriber of s1 received nothing")
	}

	select {
	case n := <-b:
		t.Errorf("subscriber of s2 received %+v", n)
	default:
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := notify.NewHub()
	_, cancel := hub.Subscribe("s1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for range 100 {
			hub.Publish("s1", notify.SectionCompleted(10))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

func TestHub_CancelAndClose(t *testing.T) {
	hub := notify.NewHub()
	ch, cancel := hub.Subscribe("s1")
	if hub.Subscribers("s1") != 1 {
		t.Fatalf("Subscribers() = %d, want 1", hub.Subscribers("s1"))
	}

	hub.Close("s1")
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Close")
	}
	cancel()
	cancel()

	if hub.Subscribers("s1") != 0 {
		t.Errorf("Subscribers() = %d, want 0", hub.Subscribers("s1"))
	}
}

func TestHub_Stream(t *testing.T) {
	hub := notify.NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		notes, cancel := hub.Subscribe("s1")
		defer cancel()
		if err := notify.Stream(r.Context(), w, r, notes, notify.StreamOptions{}); err != nil {
			t.Logf("Stream() error = %v", err)
		}
	}))
	defer srv.Close()

	ctx := t.Context()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers("s1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish("s1", notify.ModuleCompleted(100))

	var got notify.Notification
	if err := wsjson.Read(ctx, c, &got); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Kind != notify.KindModuleCompleted || got.XP != 100 {
		t.Errorf("received %+v", got)
	}

	hub.Close("s1")
	_, _, err = c.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusGoingAway {
		t.Errorf("close status = %v, want StatusGoingAway", websocket.CloseStatus(err))
	}
}

func TestStream_ClosedBeforeAccept(t *testing.T) {
	hub := notify.NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		notes, cancel := hub.Subscribe("gone")
		defer cancel()
		hub.Close("gone")
		if err := notify.Stream(r.Context(), w, r, notes, notify.StreamOptions{}); err != nil {
			t.Logf("Stream() error = %v", err)
		}
	}))
	defer srv.Close()

	ctx := t.Context()
	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.CloseNow()

	_, _, err = c.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusGoingAway {
		t.Errorf("close status = %v, want StatusGoingAway", websocket.CloseStatus(err))
	}
}
