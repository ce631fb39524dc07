package api

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client is a thin typed wrapper over a connection to the chat service.
type Client struct {
	cc   grpc.ClientConnInterface
	conn *grpc.ClientConn
}

// Dial connects to a daemon listening on the given Unix socket. The
// connection is established lazily on the first call.
func Dial(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return &Client{cc: conn, conn: conn}, nil
}

// NewClient wraps an existing connection. Close does not close cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close closes a connection opened by Dial.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func invoke[Req, Resp any](ctx context.Context, c *Client, method string, req *Req) (*Resp, error) {
	out := new(Resp)
	if err := c.cc.Invoke(ctx, fullMethod(method), req, out, grpc.CallContentSubtype(CodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetStatus(ctx context.Context) (*GetStatusResponse, error) {
	return invoke[GetStatusRequest, GetStatusResponse](ctx, c, "GetStatus", &GetStatusRequest{})
}

func (c *Client) ListRooms(ctx context.Context) (*ListRoomsResponse, error) {
	return invoke[ListRoomsRequest, ListRoomsResponse](ctx, c, "ListRooms", &ListRoomsRequest{})
}

func (c *Client) SearchRooms(ctx context.Context, query string) (*ListRoomsResponse, error) {
	return invoke[SearchRoomsRequest, ListRoomsResponse](ctx, c, "SearchRooms", &SearchRoomsRequest{Query: query})
}

func (c *Client) CreateRoom(ctx context.Context, title string) (*CreateRoomResponse, error) {
	return invoke[CreateRoomRequest, CreateRoomResponse](ctx, c, "CreateRoom", &CreateRoomRequest{Title: title})
}

func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	_, err := invoke[DeleteRoomRequest, DeleteRoomResponse](ctx, c, "DeleteRoom", &DeleteRoomRequest{RoomID: roomID})
	return err
}

func (c *Client) RenameRoom(ctx context.Context, roomID, title string) (*RenameRoomResponse, error) {
	return invoke[RenameRoomRequest, RenameRoomResponse](ctx, c, "RenameRoom", &RenameRoomRequest{RoomID: roomID, Title: title})
}

func (c *Client) ListMessages(ctx context.Context, roomID string) (*ListMessagesResponse, error) {
	return invoke[ListMessagesRequest, ListMessagesResponse](ctx, c, "ListMessages", &ListMessagesRequest{RoomID: roomID})
}

func (c *Client) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
	return invoke[SendMessageRequest, SendMessageResponse](ctx, c, "SendMessage", req)
}

func (c *Client) AppendMessage(ctx context.Context, req *AppendMessageRequest) (*AppendMessageResponse, error) {
	return invoke[AppendMessageRequest, AppendMessageResponse](ctx, c, "AppendMessage", req)
}

// EventReceiver reads envelopes from a WatchEvents stream.
type EventReceiver struct {
	stream grpc.ClientStream
}

// Recv blocks for the next event. It returns io.EOF when the server ends the
// stream and a Canceled status when ctx is done.
func (r *EventReceiver) Recv() (*EventEnvelope, error) {
	env := new(EventEnvelope)
	if err := r.stream.RecvMsg(env); err != nil {
		return nil, err
	}
	return env, nil
}

// WatchEvents streams bus events whose kind starts with namespace. Events
// published after it returns are guaranteed to be delivered.
func (c *Client) WatchEvents(ctx context.Context, namespace string) (*EventReceiver, error) {
	stream, err := c.cc.NewStream(ctx, &chatServiceDesc.Streams[0], fullMethod("WatchEvents"), grpc.CallContentSubtype(CodecName))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&WatchEventsRequest{Namespace: namespace}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	// Wait until the server has subscribed.
	if _, err := stream.Header(); err != nil {
		return nil, err
	}
	return &EventReceiver{stream: stream}, nil
}
