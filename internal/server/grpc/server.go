// Package grpc exposes the MealTrack services over gRPC with the JSON codec
// from internal/rpc.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
	"github.com/dmitrijs2005/mealtrack/internal/rpc"
	"github.com/dmitrijs2005/mealtrack/internal/server/models"
	"github.com/dmitrijs2005/mealtrack/internal/server/notify"
	"github.com/dmitrijs2005/mealtrack/internal/server/services"
	"google.golang.org/grpc"
)

type userSvc interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	UserIDFromAccessToken(token string) (string, error)
}

type logSvc interface {
	Fetch(ctx context.Context, userID, date string) (meallog.DailyLog, error)
	Summary(ctx context.Context, userID, date string) (meallog.Summary, error)
	AppendEntry(ctx context.Context, userID, date string, c meallog.Category, name string, calories int) (meallog.MealEntry, meallog.DailyLog, error)
	DeleteEntry(ctx context.Context, userID, date string, c meallog.Category, id int64, expectedVersion int64) (meallog.DailyLog, error)
	Subscribe(ctx context.Context, userID, date string) (*notify.Subscription, error)
}

type foodSvc interface {
	Search(ctx context.Context, query string) nutritionix.SearchResult
	LookupNutrients(ctx context.Context, description string) (nutritionix.NutrientDetail, error)
}

type exportSvc interface {
	Export(ctx context.Context, userID, date string) (string, string, error)
}

// GRPCServer implements rpc.MealTrackServer on top of the services.
type GRPCServer struct {
	address string
	users   userSvc
	logs    logSvc
	foods   foodSvc
	exports exportSvc
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us userSvc, ls logSvc, fs foodSvc, es exportSvc) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		logs:    ls,
		foods:   fs,
		exports: es,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ForceServerCodec(rpc.Codec{}),
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	rpc.RegisterMealTrackServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
// GracefulStop waits for open WatchDailyLog streams; they end once the
// hub is closed.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
