package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/matheus3301/gemchat/internal/bus"
	"github.com/matheus3301/gemchat/internal/chatstore"
	"github.com/matheus3301/gemchat/internal/mocks"
	"github.com/matheus3301/gemchat/internal/reply"
	"github.com/matheus3301/gemchat/internal/status"
	"github.com/matheus3301/gemchat/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type harness struct {
	client  *Client
	store   *chatstore.Store
	replies *reply.Simulator
	machine *status.Machine
	bus     *bus.Bus
}

func newHarness(t *testing.T, kv store.Store) *harness {
	t.Helper()
	req := require.New(t)

	b := bus.New()
	cs := chatstore.New(kv, chatstore.WithBus(b))
	_, err := cs.Initialize()
	req.NoError(err)

	machine := status.NewMachine(b)
	req.NoError(machine.Transition(status.Hydrating))
	req.NoError(machine.Transition(status.Ready))

	sim := reply.NewSimulator(cs, zap.NewNop(),
		reply.WithDelay(10*time.Millisecond),
		reply.WithPicker(func() string { return "canned" }))
	t.Cleanup(sim.Stop)

	svc := NewChatService("test", cs, sim, machine, b, zap.NewNop())

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterChatServer(srv, svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	req.NoError(err)
	t.Cleanup(func() { _ = conn.Close() })

	return &harness{client: NewClient(conn), store: cs, replies: sim, machine: machine, bus: b}
}

func requireCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, grpcstatus.Code(err), "error: %v", err)
}

func TestGetStatus(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, store.NewMemory())

	resp, err := h.client.GetStatus(context.Background())
	req.NoError(err)
	req.Equal("test", resp.Profile)
	req.Equal("READY", resp.Status)
	req.Equal(4, resp.RoomCount)
	req.Equal(8, resp.MessageCount)
}

func TestRoomLifecycle(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	h := newHarness(t, store.NewMemory())

	created, err := h.client.CreateRoom(ctx, "  Trip plans ")
	req.NoError(err)
	req.Equal("Trip plans", created.Room.Title)
	req.NotEmpty(created.Room.ID)

	list, err := h.client.ListRooms(ctx)
	req.NoError(err)
	req.Len(list.Rooms, 5)
	req.Equal(created.Room.ID, list.Rooms[4].ID)

	renamed, err := h.client.RenameRoom(ctx, created.Room.ID, "Holiday")
	req.NoError(err)
	req.Equal("Holiday", renamed.Room.Title)
	req.True(created.Room.CreatedAt.Equal(renamed.Room.CreatedAt))

	found, err := h.client.SearchRooms(ctx, "holi")
	req.NoError(err)
	req.Len(found.Rooms, 1)
	req.Equal(created.Room.ID, found.Rooms[0].ID)

	req.NoError(h.client.DeleteRoom(ctx, created.Room.ID))
	list, err = h.client.ListRooms(ctx)
	req.NoError(err)
	req.Len(list.Rooms, 4)
}

func TestErrorMapping(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewMemory())

	_, err := h.client.CreateRoom(ctx, "   ")
	requireCode(t, err, codes.InvalidArgument)

	err = h.client.DeleteRoom(ctx, "missing")
	requireCode(t, err, codes.NotFound)

	_, err = h.client.RenameRoom(ctx, "missing", "x")
	requireCode(t, err, codes.NotFound)

	_, err = h.client.ListMessages(ctx, "missing")
	requireCode(t, err, codes.NotFound)

	_, err = h.client.SendMessage(ctx, &SendMessageRequest{RoomID: "1752930361512"})
	requireCode(t, err, codes.InvalidArgument)

	_, err = h.client.AppendMessage(ctx, &AppendMessageRequest{
		RoomID:  "1752930361512",
		Message: chatstore.Message{From: "robot", Text: "hi"},
	})
	requireCode(t, err, codes.InvalidArgument)
}

func TestStorageFailureIsUnavailable(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	kv := mocks.NewMockStore(ctrl)
	kv.EXPECT().Get(gomock.Any()).Return(nil, store.ErrNotFound).AnyTimes()
	kv.EXPECT().PutBatch(gomock.Any()).Return(nil).Times(1)
	h := newHarness(t, kv)

	kv.EXPECT().PutBatch(gomock.Any()).Return(errors.New("disk full")).Times(1)
	_, err := h.client.CreateRoom(context.Background(), "New")
	requireCode(t, err, codes.Unavailable)

	list, err := h.client.ListRooms(context.Background())
	req.NoError(err)
	req.Len(list.Rooms, 4)
}

func TestSendMessageSchedulesReply(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	h := newHarness(t, store.NewMemory())

	sent, err := h.client.SendMessage(ctx, &SendMessageRequest{RoomID: "1752930361513", Text: "hello"})
	req.NoError(err)
	req.True(sent.ReplyScheduled)
	req.Equal(chatstore.SenderUser, sent.Message.From)
	req.NotEmpty(sent.Message.Timestamp)

	req.Eventually(func() bool {
		return len(h.store.Messages("1752930361513")) == 4
	}, time.Second, 5*time.Millisecond)

	msgs, err := h.client.ListMessages(ctx, "1752930361513")
	req.NoError(err)
	last := msgs.Messages[len(msgs.Messages)-1]
	req.Equal(chatstore.SenderAssistant, last.From)
	req.Equal("canned", last.Text)
}

func TestAppendMessageDoesNotReply(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, store.NewMemory())

	resp, err := h.client.AppendMessage(context.Background(), &AppendMessageRequest{
		RoomID:  "1752930361514",
		Message: chatstore.Message{From: chatstore.SenderAssistant, Text: "note", Timestamp: "1:00:00 PM"},
	})
	req.NoError(err)
	req.Equal("1:00:00 PM", resp.Message.Timestamp)
	req.Zero(h.replies.Pending())
}

func TestWatchEvents(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := newHarness(t, store.NewMemory())

	recv, err := h.client.WatchEvents(ctx, "room.")
	req.NoError(err)

	created, err := h.client.CreateRoom(ctx, "Watched")
	req.NoError(err)

	env, err := recv.Recv()
	req.NoError(err)
	req.Equal(bus.KindRoomCreated, env.Kind)
	req.Equal("test", env.Profile)
	req.NotEmpty(env.EventID)

	var payload chatstore.RoomChanged
	req.NoError(json.Unmarshal(env.Payload, &payload))
	req.Equal(created.Room.ID, payload.Room.ID)

	cancel()
	_, err = recv.Recv()
	req.Error(err)
}
