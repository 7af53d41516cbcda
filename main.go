package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"innerlevel/internal/card"
	"innerlevel/internal/config"
	"innerlevel/internal/forge"
	"innerlevel/internal/game"
	"innerlevel/internal/httpmw"
	"innerlevel/internal/persist"
	"innerlevel/internal/player"
	"innerlevel/internal/server"
	"innerlevel/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	env, err := config.ServerFromEnv()
	if err != nil {
		return err
	}
	balance, err := config.Load(env.ConfigPath)
	if err != nil {
		return err
	}
	if env.ForgeURL != "" {
		balance.Forge.URL = env.ForgeURL
	}

	store, err := openStore(env)
	if err != nil {
		return err
	}
	defer store.Close()

	evaluator, err := card.NewEvaluator(balance.RecoveryCapPerExecution)
	if err != nil {
		return err
	}

	events := telemetry.NewMemoryRepository()
	engine := game.Engine{
		Evaluator: evaluator,
		Clock:     game.RealClock{},
		Telemetry: events,
	}

	state, err := loadOrSeed(ctx, store, env.UserID, balance, engine.Clock.Now())
	if err != nil {
		return err
	}

	saver := persist.NewSaver(store, time.Duration(balance.SaveDebounceSeconds)*time.Second)
	saver.OnError = func(userID string, err error) {
		log.Printf("snapshot save failed for %s: %v", userID, err)
	}
	defer saver.Close()

	app := &server.App{
		Session:   server.NewSession(state, engine, saver),
		Balance:   balance,
		Telemetry: events,
	}
	if balance.Forge.URL != "" {
		app.Forge = forge.New(balance.Forge.URL, time.Duration(balance.Forge.TimeoutSeconds)*time.Second)
	}

	mux := http.NewServeMux()
	rr := &server.RouteRegistry{}
	server.RegisterAPIRoutes(mux, rr, app)

	handler := httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(log.Default()),
		httpmw.WithAccessLog(log.Default()),
	)

	fmt.Printf("innerlevel listening on %s\n", env.Addr)
	return http.ListenAndServe(env.Addr, handler)
}

func openStore(env config.Server) (persist.Store, error) {
	switch env.Storage {
	case "file":
		return persist.NewFileStore(env.DataDir)
	default:
		if err := os.MkdirAll(env.DataDir, 0o755); err != nil {
			return nil, err
		}
		return persist.OpenSQLite(filepath.Join(env.DataDir, "snapshots.db"))
	}
}

// loadOrSeed restores the user's snapshot, or starts a fresh player with
// the starter deck. A snapshot that fails to decode is replaced by the
// default rather than aborting startup.
func loadOrSeed(ctx context.Context, store persist.Store, userID string, balance config.Balance, now time.Time) (player.State, error) {
	state, ok, err := store.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, persist.ErrInvalidSnapshot) {
			return player.State{}, err
		}
		log.Printf("stored snapshot for %s is invalid, starting fresh: %v", userID, err)
		ok = false
	}
	if ok {
		return state, nil
	}

	state = player.New(userID, "", balance.MaxEnergy, balance.RegenPerHour, now)
	state.Inventory = append(state.Inventory, card.StarterSet()...)
	if err := store.Save(ctx, userID, state); err != nil {
		return player.State{}, err
	}
	return state, nil
}
