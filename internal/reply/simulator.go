// Package reply produces the assistant side of a conversation: a canned answer
// appended to the room a fixed delay after each user message.
package reply

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/matheus3301/gemchat/internal/chatstore"
	"go.uber.org/zap"
)

// DefaultDelay is how long the assistant "types" before replying.
const DefaultDelay = 1500 * time.Millisecond

// Appender adds a message to a room's history.
type Appender interface {
	AppendMessage(roomID string, msg chatstore.Message) (chatstore.Message, error)
}

// Simulator schedules one assistant reply per user message. A reply fires
// whether or not anyone is still looking at the room; only Stop cancels it.
type Simulator struct {
	appender Appender
	logger   *zap.Logger
	delay    time.Duration
	pick     func() string

	mu      sync.Mutex
	timers  map[uint64]*time.Timer
	next    uint64
	stopped bool
	wg      sync.WaitGroup
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(s *Simulator) { s.delay = d }
}

// WithPicker overrides the random choice of canned reply.
func WithPicker(pick func() string) Option {
	return func(s *Simulator) { s.pick = pick }
}

// NewSimulator creates a simulator that appends replies through appender.
func NewSimulator(appender Appender, logger *zap.Logger, opts ...Option) *Simulator {
	s := &Simulator{
		appender: appender,
		logger:   logger,
		delay:    DefaultDelay,
		pick:     randomReply,
		timers:   make(map[uint64]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomReply() string {
	return cannedReplies[rand.IntN(len(cannedReplies))]
}

// Schedule arms a reply for roomID. It returns false once the simulator is stopped.
func (s *Simulator) Schedule(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}

	id := s.next
	s.next++
	s.wg.Add(1)
	s.timers[id] = time.AfterFunc(s.delay, func() {
		defer s.wg.Done()
		s.fire(id, roomID)
	})
	return true
}

// Pending returns the number of armed replies that have not fired yet.
func (s *Simulator) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending reply and waits for in-flight ones to finish.
func (s *Simulator) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, t := range s.timers {
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Simulator) fire(id uint64, roomID string) {
	s.mu.Lock()
	_, armed := s.timers[id]
	delete(s.timers, id)
	s.mu.Unlock()
	if !armed {
		return
	}

	msg, err := s.appender.AppendMessage(roomID, chatstore.Message{
		From: chatstore.SenderAssistant,
		Text: s.pick(),
	})
	switch {
	case errors.Is(err, chatstore.ErrRoomNotFound):
		s.logger.Info("room deleted before reply, dropping", zap.String("room_id", roomID))
	case err != nil:
		s.logger.Error("failed to append reply", zap.Error(err), zap.String("room_id", roomID))
	default:
		s.logger.Debug("reply appended", zap.String("room_id", roomID), zap.String("timestamp", msg.Timestamp))
	}
}
