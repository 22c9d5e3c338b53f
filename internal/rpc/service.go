package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "mealtrack.v1.MealTrackService"

// Full method names, as seen by interceptors.
const (
	MethodRegister        = "/" + ServiceName + "/Register"
	MethodLogin           = "/" + ServiceName + "/Login"
	MethodRefreshToken    = "/" + ServiceName + "/RefreshToken"
	MethodLogout          = "/" + ServiceName + "/Logout"
	MethodPing            = "/" + ServiceName + "/Ping"
	MethodGetDailyLog     = "/" + ServiceName + "/GetDailyLog"
	MethodAppendEntry     = "/" + ServiceName + "/AppendEntry"
	MethodDeleteEntry     = "/" + ServiceName + "/DeleteEntry"
	MethodGetTotals       = "/" + ServiceName + "/GetTotals"
	MethodSearchFoods     = "/" + ServiceName + "/SearchFoods"
	MethodLookupNutrients = "/" + ServiceName + "/LookupNutrients"
	MethodExportDailyLog  = "/" + ServiceName + "/ExportDailyLog"
	MethodWatchDailyLog   = "/" + ServiceName + "/WatchDailyLog"
)

// PublicMethods can be called without an access token.
var PublicMethods = map[string]bool{
	MethodRegister:     true,
	MethodLogin:        true,
	MethodRefreshToken: true,
	MethodLogout:       true,
	MethodPing:         true,
}

// WatchDailyLogServer is the server side of the WatchDailyLog stream.
type WatchDailyLogServer = grpc.ServerStreamingServer[Summary]

// WatchDailyLogClient is the client side of the WatchDailyLog stream.
type WatchDailyLogClient = grpc.ServerStreamingClient[Summary]

// MealTrackServer is implemented by the gRPC transport.
type MealTrackServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*Empty, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetDailyLog(context.Context, *DateRequest) (*DailyLogResponse, error)
	AppendEntry(context.Context, *AppendEntryRequest) (*AppendEntryResponse, error)
	DeleteEntry(context.Context, *DeleteEntryRequest) (*DailyLogResponse, error)
	GetTotals(context.Context, *DateRequest) (*Summary, error)
	SearchFoods(context.Context, *SearchFoodsRequest) (*SearchResult, error)
	LookupNutrients(context.Context, *LookupNutrientsRequest) (*NutrientDetail, error)
	ExportDailyLog(context.Context, *DateRequest) (*ExportResponse, error)
	WatchDailyLog(*DateRequest, WatchDailyLogServer) error
}

// RegisterMealTrackServer attaches srv to s.
func RegisterMealTrackServer(s grpc.ServiceRegistrar, srv MealTrackServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds a grpc.MethodHandler for a method taking *Req.
func unary[Req any](fullMethod string, call func(MealTrackServer, context.Context, *Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MealTrackServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MealTrackServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchDailyLogHandler(srv any, stream grpc.ServerStream) error {
	in := new(DateRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(MealTrackServer).WatchDailyLog(in, &grpc.GenericServerStream[DateRequest, Summary]{ServerStream: stream})
}

// ServiceDesc is the grpc.ServiceDesc of mealtrack.v1.MealTrackService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MealTrackServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(MethodRegister, func(s MealTrackServer, ctx context.Context, in *RegisterRequest) (any, error) {
			return s.Register(ctx, in)
		})},
		{MethodName: "Login", Handler: unary(MethodLogin, func(s MealTrackServer, ctx context.Context, in *LoginRequest) (any, error) {
			return s.Login(ctx, in)
		})},
		{MethodName: "RefreshToken", Handler: unary(MethodRefreshToken, func(s MealTrackServer, ctx context.Context, in *RefreshTokenRequest) (any, error) {
			return s.RefreshToken(ctx, in)
		})},
		{MethodName: "Logout", Handler: unary(MethodLogout, func(s MealTrackServer, ctx context.Context, in *LogoutRequest) (any, error) {
			return s.Logout(ctx, in)
		})},
		{MethodName: "Ping", Handler: unary(MethodPing, func(s MealTrackServer, ctx context.Context, in *PingRequest) (any, error) {
			return s.Ping(ctx, in)
		})},
		{MethodName: "GetDailyLog", Handler: unary(MethodGetDailyLog, func(s MealTrackServer, ctx context.Context, in *DateRequest) (any, error) {
			return s.GetDailyLog(ctx, in)
		})},
		{MethodName: "AppendEntry", Handler: unary(MethodAppendEntry, func(s MealTrackServer, ctx context.Context, in *AppendEntryRequest) (any, error) {
			return s.AppendEntry(ctx, in)
		})},
		{MethodName: "DeleteEntry", Handler: unary(MethodDeleteEntry, func(s MealTrackServer, ctx context.Context, in *DeleteEntryRequest) (any, error) {
			return s.DeleteEntry(ctx, in)
		})},
		{MethodName: "GetTotals", Handler: unary(MethodGetTotals, func(s MealTrackServer, ctx context.Context, in *DateRequest) (any, error) {
			return s.GetTotals(ctx, in)
		})},
		{MethodName: "SearchFoods", Handler: unary(MethodSearchFoods, func(s MealTrackServer, ctx context.Context, in *SearchFoodsRequest) (any, error) {
			return s.SearchFoods(ctx, in)
		})},
		{MethodName: "LookupNutrients", Handler: unary(MethodLookupNutrients, func(s MealTrackServer, ctx context.Context, in *LookupNutrientsRequest) (any, error) {
			return s.LookupNutrients(ctx, in)
		})},
		{MethodName: "ExportDailyLog", Handler: unary(MethodExportDailyLog, func(s MealTrackServer, ctx context.Context, in *DateRequest) (any, error) {
			return s.ExportDailyLog(ctx, in)
		})},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchDailyLog",
			Handler:       watchDailyLogHandler,
			ServerStreams: true,
		},
	},
	Metadata: "mealtrack/v1/mealtrack.json",
}
