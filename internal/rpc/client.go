package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// MealTrackClient is the client stub of mealtrack.v1.MealTrackService.
type MealTrackClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	GetDailyLog(ctx context.Context, in *DateRequest, opts ...grpc.CallOption) (*DailyLogResponse, error)
	AppendEntry(ctx context.Context, in *AppendEntryRequest, opts ...grpc.CallOption) (*AppendEntryResponse, error)
	DeleteEntry(ctx context.Context, in *DeleteEntryRequest, opts ...grpc.CallOption) (*DailyLogResponse, error)
	GetTotals(ctx context.Context, in *DateRequest, opts ...grpc.CallOption) (*Summary, error)
	SearchFoods(ctx context.Context, in *SearchFoodsRequest, opts ...grpc.CallOption) (*SearchResult, error)
	LookupNutrients(ctx context.Context, in *LookupNutrientsRequest, opts ...grpc.CallOption) (*NutrientDetail, error)
	ExportDailyLog(ctx context.Context, in *DateRequest, opts ...grpc.CallOption) (*ExportResponse, error)
	WatchDailyLog(ctx context.Context, in *DateRequest, opts ...grpc.CallOption) (WatchDailyLogClient, error)
}

type mealTrackClient struct {
	cc grpc.ClientConnInterface
}

// NewMealTrackClient returns a stub that always uses the JSON codec.
func NewMealTrackClient(cc grpc.ClientConnInterface) MealTrackClient {
	return &mealTrackClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mealTrackClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *mealTrackClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *mealTrackClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *mealTrackClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodLogout, in, opts)
}

func (c *mealTrackClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *mealTrackClient) GetDailyLog(ctx context.Context, in *DateRequest, opts ...grpc.CallOption) (*DailyLogResponse, error) {
	return invoke[DailyLogResponse](ctx, c.cc, MethodGetDailyLog, in, opts)
}

func (c *mealTrackClient) AppendEntry(ctx context.Context, in *AppendEntryRequest, opts ...grpc.CallOption) (*AppendEntryResponse, error) {
	return invoke[AppendEntryResponse](ctx, c.cc, MethodAppendEntry, in, opts)
}

func (c *mealTrackClient) DeleteEntry(ctx context.Context, in *DeleteEntryRequest, opts ...grpc.CallOption) (*DailyLogResponse, error) {
	return invoke[DailyLogResponse](ctx, c.cc, MethodDeleteEntry, in, opts)
}

func (c *mealTrackClient) GetTotals(ctx context.Context, in *DateRequest, opts ...grpc.CallOption) (*Summary, error) {
	return invoke[Summary](ctx, c.cc, MethodGetTotals, in, opts)
}

func (c *mealTrackClient) SearchFoods(ctx context.Context, in *SearchFoodsRequest, opts ...grpc.CallOption) (*SearchResult, error) {
	return invoke[SearchResult](ctx, c.cc, MethodSearchFoods, in, opts)
}

func (c *mealTrackClient) LookupNutrients(ctx context.Context, in *LookupNutrientsRequest, opts ...grpc.CallOption) (*NutrientDetail, error) {
	return invoke[NutrientDetail](ctx, c.cc, MethodLookupNutrients, in, opts)
}

func (c *mealTrackClient) ExportDailyLog(ctx context.Context, in *DateRequest, opts ...grpc.CallOption) (*ExportResponse, error) {
	return invoke[ExportResponse](ctx, c.cc, MethodExportDailyLog, in, opts)
}

func (c *mealTrackClient) WatchDailyLog(ctx context.Context, in *DateRequest, opts ...grpc.CallOption) (WatchDailyLogClient, error) {
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], MethodWatchDailyLog, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[DateRequest, Summary]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
