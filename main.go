package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"gridhunt_client/logic"
	"gridhunt_client/network"
	"gridhunt_client/storage"
)

// idleInput is the headless stand-in for the external input layer.
type idleInput struct{}

func (idleInput) Intent() logic.Vector2 { return logic.Vector2{} }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// 1. Load Config
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using process environment")
	}
	serverURL := envOr("GRIDHUNT_SERVER_URL", "ws://localhost:8080/ws")
	dbPath := envOr("GRIDHUNT_DB_PATH", "gridhunt.db")

	// 2. Open local persistence
	store, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer store.Close()

	name := envOr("GRIDHUNT_NAME", store.DisplayName())
	if name == "" {
		name = "player"
	}
	store.SaveDisplayName(name)

	// 3. Wire the engine
	clientID := uuid.NewString()
	ctrl := network.NewController(serverURL, clientID, store)

	var lastLogged uint64
	onFrame := func(f logic.Frame) {
		for _, cue := range f.Cues {
			log.Printf("cue: %s %s", cue.Kind, cue.Text)
		}
		if f.Tick-lastLogged >= 150 {
			lastLogged = f.Tick
			log.Printf("frame %d: phase=%s pos=(%.0f,%.0f) remotes=%d items=%d traps=%d",
				f.Tick, f.Phase, f.Local.Pos.X, f.Local.Pos.Y,
				len(f.Remotes), len(f.Collectibles), f.TrapCount)
		}
	}

	sess := logic.NewSession(clientID, name, ctrl, store, idleInput{}, onFrame)
	if room := os.Getenv("GRIDHUNT_ROOM"); room != "" {
		sess.SetAutoJoin(room)
	}

	// 4. Run until interrupted
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go ctrl.Run(ctx)
	log.Printf("gridhunt client %s connecting to %s", clientID, serverURL)
	sess.Run(ctx, ctrl.Events, ctrl.Status)
}
