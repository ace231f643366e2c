// Package notify is the user-facing toast surface the client-state stores
// report to. Notifications are fire-and-forget: nothing is returned and a
// notifier must never block or fail the caller.
package notify

import (
	"context"
	"sync"

	"github.com/goldstore/storefront/pkg/logger"
)

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Message is one notification as shown to the user.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"message"`
}

// Notifier receives user-facing notifications.
type Notifier interface {
	NotifySuccess(ctx context.Context, message string)
	NotifyError(ctx context.Context, message string)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) NotifySuccess(context.Context, string) {}
func (Nop) NotifyError(context.Context, string)   {}

// LogNotifier writes notifications to the structured logger.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) NotifySuccess(ctx context.Context, message string) {
	if n == nil || n.logg == nil {
		return
	}
	n.logg.Info(n.logg.WithField(ctx, "notification", string(LevelSuccess)), message)
}

func (n *LogNotifier) NotifyError(ctx context.Context, message string) {
	if n == nil || n.logg == nil {
		return
	}
	n.logg.Warn(n.logg.WithField(ctx, "notification", string(LevelError)), message)
}

// Fanout delivers every notification to each of its notifiers in order.
type Fanout []Notifier

func (f Fanout) NotifySuccess(ctx context.Context, message string) {
	for _, n := range f {
		if n != nil {
			n.NotifySuccess(ctx, message)
		}
	}
}

func (f Fanout) NotifyError(ctx context.Context, message string) {
	for _, n := range f {
		if n != nil {
			n.NotifyError(ctx, message)
		}
	}
}

// Recorder collects the notifications raised while serving one request so
// the response can carry them back to the client.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

type recorderKey struct{}

// WithRecorder attaches a fresh Recorder to ctx.
func WithRecorder(ctx context.Context) (context.Context, *Recorder) {
	rec := &Recorder{}
	return context.WithValue(ctx, recorderKey{}, rec), rec
}

// RecorderFrom returns the Recorder attached to ctx, if any.
func RecorderFrom(ctx context.Context) *Recorder {
	if ctx == nil {
		return nil
	}
	rec, _ := ctx.Value(recorderKey{}).(*Recorder)
	return rec
}

func (r *Recorder) add(level Level, text string) {
	r.mu.Lock()
	r.messages = append(r.messages, Message{Level: level, Text: text})
	r.mu.Unlock()
}

// Drain returns the collected notifications and resets the recorder.
func (r *Recorder) Drain() []Message {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	return out
}

// ContextNotifier appends notifications to the Recorder carried by ctx and
// drops them when there is none.
type ContextNotifier struct{}

func (ContextNotifier) NotifySuccess(ctx context.Context, message string) {
	if rec := RecorderFrom(ctx); rec != nil {
		rec.add(LevelSuccess, message)
	}
}

func (ContextNotifier) NotifyError(ctx context.Context, message string) {
	if rec := RecorderFrom(ctx); rec != nil {
		rec.add(LevelError, message)
	}
}
