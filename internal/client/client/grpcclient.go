package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/mealtrack/internal/common"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
	"github.com/dmitrijs2005/mealtrack/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      rpc.MealTrackClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	s.accessToken, s.refreshToken = access, refresh
	s.mu.Unlock()
}

// RefreshToken returns the refresh token of the current session, if any.
func (s *GRPCClient) RefreshToken() string {
	_, r := s.tokens()
	return r
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// refresh swaps the token pair once. It reports false when there is nothing
// to refresh with or the server refused.
func (s *GRPCClient) refresh(ctx context.Context) bool {
	_, refreshToken := s.tokens()
	if refreshToken == "" {
		return false
	}
	resp, err := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return false
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return true
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	accessToken, _ := s.tokens()
	err := invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)

	if err == nil || !isTokenExpired(err) || method == rpc.MethodRefreshToken {
		return err
	}
	if !s.refresh(ctx) {
		return err
	}

	accessToken, _ = s.tokens()
	return invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	accessToken, _ := s.tokens()
	return streamer(withAccessToken(ctx, accessToken), desc, cc, method, opts...)
}

func NewMealTrackClientService(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(extra ...grpc.DialOption) error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.streamAccessTokenInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewMealTrackClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Register(ctx context.Context, userName, password string) error {
	_, err := s.client.Register(ctx, &rpc.RegisterRequest{Username: userName, Password: password})
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Login(ctx context.Context, userName, password string) error {
	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Username: userName, Password: password})
	if err != nil {
		return s.mapError(err)
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Resume restores a session from a saved refresh token. The token is
// rotated, so callers must persist RefreshToken() afterwards.
func (s *GRPCClient) Resume(ctx context.Context, refreshToken string) error {
	resp, err := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return s.mapError(err)
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Logout revokes the refresh token and forgets both tokens. The local tokens
// are dropped even when the server cannot be reached.
func (s *GRPCClient) Logout(ctx context.Context) error {
	_, refreshToken := s.tokens()
	s.setTokens("", "")
	if refreshToken == "" {
		return nil
	}
	if _, err := s.client.Logout(ctx, &rpc.LogoutRequest{RefreshToken: refreshToken}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) GetDailyLog(ctx context.Context, date string) (meallog.DailyLog, error) {
	resp, err := s.client.GetDailyLog(ctx, &rpc.DateRequest{Date: date})
	if err != nil {
		return meallog.DailyLog{}, s.mapError(err)
	}
	return resp.Log, nil
}

func (s *GRPCClient) AppendEntry(ctx context.Context, date string, c meallog.Category, name string, calories int) (meallog.MealEntry, meallog.DailyLog, error) {
	req := &rpc.AppendEntryRequest{Date: date, Category: string(c), Name: name, Calories: calories}
	resp, err := s.client.AppendEntry(ctx, req)
	if err != nil {
		return meallog.MealEntry{}, meallog.DailyLog{}, s.mapError(err)
	}
	return resp.Entry, resp.Log, nil
}

func (s *GRPCClient) DeleteEntry(ctx context.Context, date string, c meallog.Category, id int64, expectedVersion int64) (meallog.DailyLog, error) {
	req := &rpc.DeleteEntryRequest{Date: date, Category: string(c), ID: id, ExpectedVersion: expectedVersion}
	resp, err := s.client.DeleteEntry(ctx, req)
	if err != nil {
		return meallog.DailyLog{}, s.mapError(err)
	}
	return resp.Log, nil
}

func (s *GRPCClient) GetTotals(ctx context.Context, date string) (meallog.Summary, error) {
	resp, err := s.client.GetTotals(ctx, &rpc.DateRequest{Date: date})
	if err != nil {
		return meallog.Summary{}, s.mapError(err)
	}
	return *resp, nil
}

func (s *GRPCClient) SearchFoods(ctx context.Context, query string) (nutritionix.SearchResult, error) {
	resp, err := s.client.SearchFoods(ctx, &rpc.SearchFoodsRequest{Query: query})
	if err != nil {
		return nutritionix.SearchResult{}, s.mapError(err)
	}
	return *resp, nil
}

func (s *GRPCClient) LookupNutrients(ctx context.Context, query string) (nutritionix.NutrientDetail, error) {
	resp, err := s.client.LookupNutrients(ctx, &rpc.LookupNutrientsRequest{Query: query})
	if err != nil {
		return nutritionix.NutrientDetail{}, s.mapError(err)
	}
	return *resp, nil
}

func (s *GRPCClient) ExportDailyLog(ctx context.Context, date string) (string, string, error) {
	resp, err := s.client.ExportDailyLog(ctx, &rpc.DateRequest{Date: date})
	if err != nil {
		return "", "", s.mapError(err)
	}
	return resp.Key, resp.URL, nil
}

// WatchDailyLog opens the stream and waits for the initial snapshot, so an
// expired access token can be refreshed before the stream is handed out.
// The stream ends when ctx is cancelled.
func (s *GRPCClient) WatchDailyLog(ctx context.Context, date string) (SummaryStream, error) {
	stream, first, err := s.openWatch(ctx, date)
	if err != nil && isTokenExpired(err) && s.refresh(ctx) {
		stream, first, err = s.openWatch(ctx, date)
	}
	if err != nil {
		return nil, s.mapError(err)
	}
	return &summaryStream{stream: stream, first: first, mapError: s.mapError}, nil
}

func (s *GRPCClient) openWatch(ctx context.Context, date string) (rpc.WatchDailyLogClient, *meallog.Summary, error) {
	stream, err := s.client.WatchDailyLog(ctx, &rpc.DateRequest{Date: date})
	if err != nil {
		return nil, nil, err
	}
	first, err := stream.Recv()
	if err != nil {
		return nil, nil, err
	}
	return stream, first, nil
}

type summaryStream struct {
	stream   rpc.WatchDailyLogClient
	first    *meallog.Summary
	mapError func(error) error
}

// Recv returns io.EOF when the server closed the stream cleanly.
func (w *summaryStream) Recv() (meallog.Summary, error) {
	if w.first != nil {
		s := *w.first
		w.first = nil
		return s, nil
	}
	s, err := w.stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return meallog.Summary{}, io.EOF
		}
		return meallog.Summary{}, w.mapError(err)
	}
	return *s, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.Aborted:
		return ErrConflict
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrUserExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.Canceled:
		return context.Canceled
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
