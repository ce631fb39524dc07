// Package chatstore owns the chat rooms and their message histories. Every
// mutation is persisted synchronously to a key-value store before it becomes
// visible, and announced on the event bus once it has.
package chatstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/gemchat/internal/bus"
	"github.com/matheus3301/gemchat/internal/store"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Store is the single owner of rooms and histories. It is safe for
// concurrent use; mutations are serialized.
type Store struct {
	kv     store.Store
	bus    *bus.Bus
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	mu          sync.RWMutex
	initialized bool
	rooms       []ChatRoom
	messages    map[string][]Message
}

// Option configures a Store.
type Option func(*Store)

// WithBus publishes store events on b.
func WithBus(b *bus.Bus) Option {
	return func(s *Store) { s.bus = b }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the room id generator.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) { s.newID = next }
}

// New creates a Store backed by kv. Call Initialize before mutating it.
func New(kv store.Store, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    newRoomID,
		messages: make(map[string][]Message),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newRoomID returns a UUIDv7, which sorts by creation time.
func newRoomID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Initialize hydrates the store from kv. Absent or invalid rooms reseed both
// collections; absent or invalid histories alone reseed the histories.
// Histories without a room are dropped. When anything was seeded or dropped the
// result is persisted; a failure there is returned with the snapshot, which is
// still the live state.
func (s *Store) Initialize() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, roomsErr := s.loadRooms()
	messages, messagesErr := s.loadMessages()

	seeded := false
	switch {
	case roomsErr != nil || len(rooms) == 0:
		if roomsErr != nil {
			s.logReadError(roomsErr)
		}
		rooms, messages = seedRooms(), seedMessages()
		seeded = true
	case messagesErr != nil:
		s.logReadError(messagesErr)
		messages = seedMessages()
		seeded = true
	}

	pruned := pruneOrphans(rooms, messages)
	if pruned > 0 {
		s.logger.Warn("dropped histories without a room", zap.Int("count", pruned))
	}

	s.rooms, s.messages = rooms, messages
	s.initialized = true

	var err error
	if seeded || pruned > 0 {
		err = s.persist(rooms, messages)
	}

	s.logger.Info("chat store hydrated",
		zap.Int("rooms", len(rooms)),
		zap.Bool("seeded", seeded),
		zap.Int("pruned", pruned))
	s.publish(bus.KindStoreHydrated, Hydrated{Rooms: len(rooms), Seeded: seeded, Pruned: pruned})

	return s.snapshotLocked(), err
}

func (s *Store) loadRooms() ([]ChatRoom, error) {
	raw, err := s.kv.Get(KeyRooms)
	if err != nil {
		return nil, &StorageReadError{Key: KeyRooms, Err: err}
	}
	var rooms []ChatRoom
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, &StorageReadError{Key: KeyRooms, Err: err}
	}
	if err := validateRooms(rooms); err != nil {
		return nil, &StorageReadError{Key: KeyRooms, Err: err}
	}
	return rooms, nil
}

func (s *Store) loadMessages() (map[string][]Message, error) {
	raw, err := s.kv.Get(KeyMessages)
	if err != nil {
		return nil, &StorageReadError{Key: KeyMessages, Err: err}
	}
	var byRoom map[string][]Message
	if err := json.Unmarshal(raw, &byRoom); err != nil {
		return nil, &StorageReadError{Key: KeyMessages, Err: err}
	}
	if byRoom == nil {
		return nil, &StorageReadError{Key: KeyMessages, Err: errors.New("null history map")}
	}
	if err := validateHistories(byRoom); err != nil {
		return nil, &StorageReadError{Key: KeyMessages, Err: err}
	}
	for id, history := range byRoom {
		byRoom[id] = cloneHistory(history)
	}
	return byRoom, nil
}

func (s *Store) logReadError(err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Info("no persisted state, seeding", zap.Error(err))
		return
	}
	s.logger.Warn("persisted state unreadable, seeding", zap.Error(err))
}

func pruneOrphans(rooms []ChatRoom, byRoom map[string][]Message) int {
	known := lo.SliceToMap(rooms, func(r ChatRoom) (string, struct{}) { return r.ID, struct{}{} })
	pruned := 0
	for id := range byRoom {
		if _, ok := known[id]; !ok {
			delete(byRoom, id)
			pruned++
		}
	}
	return pruned
}

// CreateRoom appends a room with a fresh id and the current time.
func (s *Store) CreateRoom(title string) (ChatRoom, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return ChatRoom{}, ErrInvalidTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ChatRoom{}, ErrNotInitialized
	}

	room := ChatRoom{
		ID:        s.newID(),
		Title:     title,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if s.indexOf(room.ID) >= 0 {
		return ChatRoom{}, fmt.Errorf("generated duplicate room id %q", room.ID)
	}

	rooms := append(slices.Clone(s.rooms), room)
	if err := s.persist(rooms, nil); err != nil {
		return ChatRoom{}, err
	}
	s.rooms = rooms

	s.logger.Info("room created", zap.String("room_id", room.ID))
	s.publish(bus.KindRoomCreated, RoomChanged{Room: room})
	return room, nil
}

// DeleteRoom removes the room and its whole history in one write.
func (s *Store) DeleteRoom(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return roomNotFound(id)
	}

	rooms := slices.Delete(slices.Clone(s.rooms), idx, idx+1)
	messages := make(map[string][]Message, len(s.messages))
	for roomID, history := range s.messages {
		if roomID != id {
			messages[roomID] = history
		}
	}
	if err := s.persist(rooms, messages); err != nil {
		return err
	}
	s.rooms, s.messages = rooms, messages

	s.logger.Info("room deleted", zap.String("room_id", id))
	s.publish(bus.KindRoomDeleted, RoomDeleted{RoomID: id})
	return nil
}

// EditRoomTitle replaces the title of a room. Titles need not be unique.
func (s *Store) EditRoomTitle(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return roomNotFound(id)
	}

	rooms := slices.Clone(s.rooms)
	rooms[idx].Title = title
	if err := s.persist(rooms, nil); err != nil {
		return err
	}
	s.rooms = rooms

	s.publish(bus.KindRoomRenamed, RoomChanged{Room: rooms[idx]})
	return nil
}

// AppendMessage adds msg to the end of the room's history. An empty timestamp
// is stamped with the store clock. The stored message is returned.
func (s *Store) AppendMessage(roomID string, msg Message) (Message, error) {
	if err := validateMessage(msg); err != nil {
		return Message{}, err
	}
	msg = msg.clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return Message{}, ErrNotInitialized
	}
	if s.indexOf(roomID) < 0 {
		return Message{}, roomNotFound(roomID)
	}

	if msg.Timestamp == "" {
		msg.Timestamp = s.now().Format(TimestampLayout)
	}

	history := append(slices.Clone(s.messages[roomID]), msg)
	messages := withHistory(s.messages, roomID, history)
	if err := s.persist(nil, messages); err != nil {
		return Message{}, err
	}
	s.messages = messages

	s.publish(bus.KindMessageAppended, MessageAppended{RoomID: roomID, Message: msg.clone()})
	return msg.clone(), nil
}

// Snapshot returns a deep copy of both collections.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Rooms:          slices.Clone(s.rooms),
		MessagesByRoom: cloneMessages(s.messages),
	}
}

// Rooms returns the rooms in display order.
func (s *Store) Rooms() []ChatRoom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ChatRoom{}, s.rooms...)
}

// Room looks up a room by id.
func (s *Store) Room(id string) (ChatRoom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.rooms, func(r ChatRoom) bool { return r.ID == id })
}

// Messages returns the room's history. Unknown rooms yield an empty slice.
func (s *Store) Messages(roomID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneHistory(s.messages[roomID])
}

// SearchRooms returns rooms whose title contains query, ignoring case, in
// display order. A blank query matches every room.
func (s *Store) SearchRooms(query string) []ChatRoom {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.rooms, func(r ChatRoom, _ int) bool {
		return strings.Contains(strings.ToLower(r.Title), q)
	})
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.rooms, func(r ChatRoom) bool { return r.ID == id })
}

// persist writes whichever collections are non-nil in one batch.
func (s *Store) persist(rooms []ChatRoom, messages map[string][]Message) error {
	entries := make(map[string][]byte, 2)
	if rooms != nil {
		raw, err := json.Marshal(rooms)
		if err != nil {
			return s.writeFailed([]string{KeyRooms}, err)
		}
		entries[KeyRooms] = raw
	}
	if messages != nil {
		raw, err := json.Marshal(messages)
		if err != nil {
			return s.writeFailed([]string{KeyMessages}, err)
		}
		entries[KeyMessages] = raw
	}
	if err := s.kv.PutBatch(entries); err != nil {
		keys := lo.Keys(entries)
		slices.Sort(keys)
		return s.writeFailed(keys, err)
	}
	return nil
}

func (s *Store) writeFailed(keys []string, err error) error {
	werr := &StorageWriteError{Keys: keys, Err: err}
	s.logger.Error("persist failed", zap.Strings("keys", keys), zap.Error(err))
	s.publish(bus.KindStoreWriteFailed, WriteFailed{Keys: keys, Error: err.Error()})
	return werr
}

func (s *Store) publish(kind string, payload any) {
	s.bus.Publish(bus.Event{Kind: kind, Payload: payload})
}
