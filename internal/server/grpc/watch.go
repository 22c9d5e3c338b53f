package grpc

import (
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// WatchDailyLog streams a Summary for the current log and then one per
// change until the client goes away or the server shuts down.
func (s *GRPCServer) WatchDailyLog(req *rpc.DateRequest, stream rpc.WatchDailyLogServer) error {
	ctx := stream.Context()
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return err
	}

	sub, err := s.logs.Subscribe(ctx, userID, req.Date)
	if err != nil {
		return toStatus(err)
	}
	defer sub.Close()

	s.logger.Debug(ctx, "watch started", "user_id", userID, "date", req.Date)

	for {
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-sub.C():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return status.Error(codes.Unavailable, "watch closed")
			}
			sum := meallog.Summarize(l)
			if err := stream.Send(&sum); err != nil {
				return err
			}
		}
	}
}
