package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zappabad/solotrader/internal/config"
	"github.com/zappabad/solotrader/internal/mockserver"
	"github.com/zappabad/solotrader/internal/session"
)

func testConfig(t *testing.T, transport string) *config.Config {
	t.Helper()
	srv := httptest.NewServer(mockserver.New(mockserver.DefaultConfig(), nil).Handler())
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Server.Transport = transport
	cfg.Server.URL = srv.URL
	if transport == "ws" {
		cfg.Server.URL = "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	}
	cfg.Storage.Path = filepath.Join(t.TempDir(), "solo.db")
	cfg.NewGame.TicksPerDay = 3
	cfg.NewGame.TradingDays = 2
	cfg.NewGame.TickPeriod = 20 * time.Millisecond
	return cfg
}

func TestResolveRemembersGame(t *testing.T) {
	cfg := testConfig(t, "http")
	ctx := context.Background()

	a, err := New(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	first, err := a.Resolve(ctx, false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	a.Close()

	b, err := New(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()

	again, err := b.Resolve(ctx, false)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if again != first {
		t.Errorf("resolved %q, want remembered %q", again, first)
	}

	fresh, err := b.Resolve(ctx, true)
	if err != nil {
		t.Fatalf("resolve fresh: %v", err)
	}
	if fresh == first {
		t.Error("fresh resolve returned the remembered game")
	}
	saved, ok, err := b.Store.CurrentGame()
	if err != nil || !ok || saved.ID != fresh {
		t.Errorf("saved = %+v ok=%v err=%v, want %q", saved, ok, err, fresh)
	}
}

func TestStartLoadsGame(t *testing.T) {
	for _, transport := range []string{"http", "ws"} {
		t.Run(transport, func(t *testing.T) {
			cfg := testConfig(t, transport)
			ctx := context.Background()

			a, err := New(ctx, cfg, nil)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			defer a.Close()

			id, err := a.Resolve(ctx, false)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if err := a.Start(ctx, id); err != nil {
				t.Fatalf("start: %v", err)
			}

			snap := waitFor(t, a.Session, func(s session.Snapshot) bool { return s.Loaded })
			if snap.GameID != id || snap.Day != 1 || snap.Invalid != nil {
				t.Fatalf("snapshot = game %q day %d invalid %v", snap.GameID, snap.Day, snap.Invalid)
			}

			if err := a.Session.Key(session.KeyToggle); err != nil {
				t.Fatalf("toggle: %v", err)
			}
			waitFor(t, a.Session, func(s session.Snapshot) bool { return s.Tick >= 1 })
		})
	}
}

func waitFor(t *testing.T, s *session.Session, ok func(session.Snapshot) bool) session.Snapshot {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case snap, open := <-s.Snapshots():
			if !open {
				t.Fatal("snapshot channel closed")
			}
			if ok(snap) {
				return snap
			}
		case <-timeout:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}
