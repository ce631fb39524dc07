package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/matheus3301/gemchat/internal/bus"
	"github.com/matheus3301/gemchat/internal/chatstore"
	"github.com/matheus3301/gemchat/internal/reply"
	"github.com/matheus3301/gemchat/internal/status"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	grpcstatus "google.golang.org/grpc/status"
)

// ChatService implements ChatServer over the chat store.
type ChatService struct {
	profile   string
	startedAt time.Time
	store     *chatstore.Store
	replies   *reply.Simulator
	machine   *status.Machine
	bus       *bus.Bus
	logger    *zap.Logger
}

// NewChatService creates a new chat service.
func NewChatService(profile string, cs *chatstore.Store, replies *reply.Simulator, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *ChatService {
	return &ChatService{
		profile:   profile,
		startedAt: time.Now(),
		store:     cs,
		replies:   replies,
		machine:   machine,
		bus:       b,
		logger:    logger,
	}
}

func (s *ChatService) GetStatus(_ context.Context, _ *GetStatusRequest) (*GetStatusResponse, error) {
	snap := s.store.Snapshot()
	count := 0
	for _, history := range snap.MessagesByRoom {
		count += len(history)
	}
	return &GetStatusResponse{
		Profile:      s.profile,
		Status:       string(s.machine.Current()),
		UptimeMs:     time.Since(s.startedAt).Milliseconds(),
		RoomCount:    len(snap.Rooms),
		MessageCount: count,
	}, nil
}

func (s *ChatService) ListRooms(_ context.Context, _ *ListRoomsRequest) (*ListRoomsResponse, error) {
	return &ListRoomsResponse{Rooms: s.store.Rooms()}, nil
}

func (s *ChatService) SearchRooms(_ context.Context, req *SearchRoomsRequest) (*ListRoomsResponse, error) {
	return &ListRoomsResponse{Rooms: s.store.SearchRooms(req.Query)}, nil
}

func (s *ChatService) CreateRoom(_ context.Context, req *CreateRoomRequest) (*CreateRoomResponse, error) {
	room, err := s.store.CreateRoom(req.Title)
	if err != nil {
		return nil, toStatus("create room", err)
	}
	return &CreateRoomResponse{Room: room}, nil
}

func (s *ChatService) DeleteRoom(_ context.Context, req *DeleteRoomRequest) (*DeleteRoomResponse, error) {
	if err := s.store.DeleteRoom(req.RoomID); err != nil {
		return nil, toStatus("delete room", err)
	}
	return &DeleteRoomResponse{}, nil
}

func (s *ChatService) RenameRoom(_ context.Context, req *RenameRoomRequest) (*RenameRoomResponse, error) {
	if err := s.store.EditRoomTitle(req.RoomID, req.Title); err != nil {
		return nil, toStatus("rename room", err)
	}
	room, ok := s.store.Room(req.RoomID)
	if !ok {
		// Deleted between the rename and the read.
		return nil, grpcstatus.Errorf(codes.NotFound, "room %q not found", req.RoomID)
	}
	return &RenameRoomResponse{Room: room}, nil
}

func (s *ChatService) ListMessages(_ context.Context, req *ListMessagesRequest) (*ListMessagesResponse, error) {
	if _, ok := s.store.Room(req.RoomID); !ok {
		return nil, grpcstatus.Errorf(codes.NotFound, "room %q not found", req.RoomID)
	}
	return &ListMessagesResponse{Messages: s.store.Messages(req.RoomID)}, nil
}

func (s *ChatService) SendMessage(_ context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
	msg, err := s.store.AppendMessage(req.RoomID, chatstore.Message{
		From:  chatstore.SenderUser,
		Text:  req.Text,
		Image: req.Images,
	})
	if err != nil {
		return nil, toStatus("send message", err)
	}
	scheduled := s.replies.Schedule(req.RoomID)
	return &SendMessageResponse{Message: msg, ReplyScheduled: scheduled}, nil
}

func (s *ChatService) AppendMessage(_ context.Context, req *AppendMessageRequest) (*AppendMessageResponse, error) {
	msg, err := s.store.AppendMessage(req.RoomID, req.Message)
	if err != nil {
		return nil, toStatus("append message", err)
	}
	return &AppendMessageResponse{Message: msg}, nil
}

func (s *ChatService) WatchEvents(req *WatchEventsRequest, stream EventStream) error {
	ch, unsub := s.bus.Subscribe(req.Namespace, 256)
	defer unsub()

	// Headers tell the client the subscription is live.
	if err := stream.SendHeader(metadata.MD{}); err != nil {
		return err
	}

	for {
		select {
		case evt := <-ch:
			env, err := s.envelope(evt)
			if err != nil {
				s.logger.Warn("skipping unencodable event", zap.String("kind", evt.Kind), zap.Error(err))
				continue
			}
			if err := stream.Send(env); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}

func (s *ChatService) envelope(evt bus.Event) (*EventEnvelope, error) {
	env := &EventEnvelope{
		EventID:          evt.ID,
		Profile:          s.profile,
		Kind:             evt.Kind,
		OccurredAtUnixMs: evt.Timestamp.UnixMilli(),
	}
	if evt.Payload != nil {
		raw, err := json.Marshal(evt.Payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return env, nil
}

// toStatus maps chat store errors onto gRPC codes.
func toStatus(op string, err error) error {
	var writeErr *chatstore.StorageWriteError
	code := codes.Internal
	switch {
	case errors.Is(err, chatstore.ErrRoomNotFound):
		code = codes.NotFound
	case errors.Is(err, chatstore.ErrInvalidTitle), errors.Is(err, chatstore.ErrInvalidMessage):
		code = codes.InvalidArgument
	case errors.As(err, &writeErr):
		code = codes.Unavailable
	}
	return grpcstatus.Errorf(code, "%s: %v", op, err)
}
