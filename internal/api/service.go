package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gemchat.v1.ChatService"

// ChatServer is the server side of the chat service.
type ChatServer interface {
	GetStatus(context.Context, *GetStatusRequest) (*GetStatusResponse, error)
	ListRooms(context.Context, *ListRoomsRequest) (*ListRoomsResponse, error)
	SearchRooms(context.Context, *SearchRoomsRequest) (*ListRoomsResponse, error)
	CreateRoom(context.Context, *CreateRoomRequest) (*CreateRoomResponse, error)
	DeleteRoom(context.Context, *DeleteRoomRequest) (*DeleteRoomResponse, error)
	RenameRoom(context.Context, *RenameRoomRequest) (*RenameRoomResponse, error)
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	AppendMessage(context.Context, *AppendMessageRequest) (*AppendMessageResponse, error)
	WatchEvents(*WatchEventsRequest, EventStream) error
}

// EventStream is the server end of WatchEvents.
type EventStream interface {
	Send(*EventEnvelope) error
	grpc.ServerStream
}

// RegisterChatServer registers srv on s.
func RegisterChatServer(s grpc.ServiceRegistrar, srv ChatServer) {
	s.RegisterService(&chatServiceDesc, srv)
}

var chatServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetStatus", ChatServer.GetStatus),
		unary("ListRooms", ChatServer.ListRooms),
		unary("SearchRooms", ChatServer.SearchRooms),
		unary("CreateRoom", ChatServer.CreateRoom),
		unary("DeleteRoom", ChatServer.DeleteRoom),
		unary("RenameRoom", ChatServer.RenameRoom),
		unary("ListMessages", ChatServer.ListMessages),
		unary("SendMessage", ChatServer.SendMessage),
		unary("AppendMessage", ChatServer.AppendMessage),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchEvents",
			Handler:       watchEventsHandler,
			ServerStreams: true,
		},
	},
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary adapts a ChatServer method to a grpc.MethodDesc, decoding the request
// and running any interceptor the same way generated code does.
func unary[Req, Resp any](name string, call func(ChatServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ChatServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ChatServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchEventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchEventsRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ChatServer).WatchEvents(in, &eventStream{stream})
}

type eventStream struct {
	grpc.ServerStream
}

func (s *eventStream) Send(e *EventEnvelope) error {
	return s.ServerStream.SendMsg(e)
}
