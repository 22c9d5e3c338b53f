package grpc

import (
	"context"

	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/rpc"
)

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	s.logger.Info(ctx, "Registration request")

	u, err := s.users.Register(ctx, req.Username, req.Password)
	if err != nil {
		s.logger.Warn(ctx, "registration failed", "error", err)
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "username", u.UserName)
	return &rpc.RegisterResponse{UserID: u.ID, Username: u.UserName}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.TokenResponse, error) {
	tokens, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.TokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *rpc.LogoutRequest) (*rpc.Empty, error) {
	if err := s.users.Logout(ctx, req.RefreshToken); err != nil {
		s.logger.Error(ctx, "logout failed", "error", err)
		return nil, toStatus(err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) GetDailyLog(ctx context.Context, req *rpc.DateRequest) (*rpc.DailyLogResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.logs.Fetch(ctx, userID, req.Date)
	if err != nil {
		return nil, s.fail(ctx, "GetDailyLog", err)
	}
	return &rpc.DailyLogResponse{Log: l}, nil
}

func (s *GRPCServer) AppendEntry(ctx context.Context, req *rpc.AppendEntryRequest) (*rpc.AppendEntryResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	c, err := meallog.ParseCategory(req.Category)
	if err != nil {
		return nil, toStatus(err)
	}
	e, l, err := s.logs.AppendEntry(ctx, userID, req.Date, c, req.Name, req.Calories)
	if err != nil {
		return nil, s.fail(ctx, "AppendEntry", err)
	}
	return &rpc.AppendEntryResponse{Entry: e, Log: l}, nil
}

func (s *GRPCServer) DeleteEntry(ctx context.Context, req *rpc.DeleteEntryRequest) (*rpc.DailyLogResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	c, err := meallog.ParseCategory(req.Category)
	if err != nil {
		return nil, toStatus(err)
	}
	l, err := s.logs.DeleteEntry(ctx, userID, req.Date, c, req.ID, req.ExpectedVersion)
	if err != nil {
		return nil, s.fail(ctx, "DeleteEntry", err)
	}
	return &rpc.DailyLogResponse{Log: l}, nil
}

func (s *GRPCServer) GetTotals(ctx context.Context, req *rpc.DateRequest) (*rpc.Summary, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	sum, err := s.logs.Summary(ctx, userID, req.Date)
	if err != nil {
		return nil, s.fail(ctx, "GetTotals", err)
	}
	return &sum, nil
}

func (s *GRPCServer) SearchFoods(ctx context.Context, req *rpc.SearchFoodsRequest) (*rpc.SearchResult, error) {
	res := s.foods.Search(ctx, req.Query)
	return &res, nil
}

func (s *GRPCServer) LookupNutrients(ctx context.Context, req *rpc.LookupNutrientsRequest) (*rpc.NutrientDetail, error) {
	d, err := s.foods.LookupNutrients(ctx, req.Query)
	if err != nil {
		return nil, toStatus(err)
	}
	return &d, nil
}

func (s *GRPCServer) ExportDailyLog(ctx context.Context, req *rpc.DateRequest) (*rpc.ExportResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	key, url, err := s.exports.Export(ctx, userID, req.Date)
	if err != nil {
		return nil, s.fail(ctx, "ExportDailyLog", err)
	}
	return &rpc.ExportResponse{Key: key, URL: url}, nil
}

// fail logs unexpected errors and converts err to a status.
func (s *GRPCServer) fail(ctx context.Context, method string, err error) error {
	st := toStatus(err)
	s.logger.Debug(ctx, "request failed", "method", method, "error", err)
	return st
}
