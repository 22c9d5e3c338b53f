package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/rpc"
	"google.golang.org/grpc/codes"
)

func TestWatchDailyLog_SnapshotsThenCancel(t *testing.T) {
	env := startServer(t)
	ctx, cancel := context.WithCancel(withToken(t, "u1", time.Hour))
	defer cancel()

	stream, err := env.client.WatchDailyLog(ctx, &rpc.DateRequest{Date: "2024-03-01"})
	if err != nil {
		t.Fatalf("WatchDailyLog: %v", err)
	}

	first, err := stream.Recv()
	if err != nil {
		t.Fatalf("initial Recv: %v", err)
	}
	if first.Log.Version != 0 || first.Totals.Total != 0 {
		t.Fatalf("unexpected initial snapshot: %+v", first)
	}

	if _, _, err := env.logs.AppendEntry(context.Background(), "u1", "2024-03-01", meallog.Dinner, "Soup", 150); err != nil {
		t.Fatalf("AppendEntry: %v", err)
	}

	next, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv after write: %v", err)
	}
	if next.Log.Version != 1 || next.Totals.Dinner != 150 {
		t.Fatalf("unexpected snapshot: %+v", next)
	}

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for env.hub.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription still registered after client cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWatchDailyLog_EndsWhenHubCloses(t *testing.T) {
	env := startServer(t)

	stream, err := env.client.WatchDailyLog(withToken(t, "u1", time.Hour), &rpc.DateRequest{Date: "2024-03-01"})
	if err != nil {
		t.Fatalf("WatchDailyLog: %v", err)
	}
	if _, err := stream.Recv(); err != nil {
		t.Fatalf("initial Recv: %v", err)
	}

	env.hub.Close()

	_, err = stream.Recv()
	assertCode(t, err, codes.Unavailable, "watch closed")
}

func TestWatchDailyLog_BadDate(t *testing.T) {
	env := startServer(t)

	env.logs.err = errValidation("bad date")
	stream, err := env.client.WatchDailyLog(withToken(t, "u1", time.Hour), &rpc.DateRequest{Date: "x"})
	if err == nil {
		_, err = stream.Recv()
	}
	assertCode(t, err, codes.InvalidArgument, "")
}
