package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/WanessaDiniztech/Haxball/internal/api"
	"github.com/WanessaDiniztech/Haxball/internal/config"
	"github.com/WanessaDiniztech/Haxball/internal/game"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("⚽ ================================")
	log.Println("⚽  HAXBALL - GO SERVER")
	log.Println("⚽ ================================")

	appConfig := config.Load()
	fieldCfg := appConfig.Field
	limits := appConfig.Limits

	log.Printf("🎮 Config: %d TPS, %dx%d field, goal %dx%d",
		fieldCfg.TickRate, fieldCfg.Width, fieldCfg.Height, fieldCfg.GoalWidth, fieldCfg.GoalHeight)
	log.Printf("🛡️ Resource limits: %d players, %d sockets (%d per IP)",
		limits.MaxPlayers, limits.MaxWSConnections, limits.MaxWSConnectionsPerIP)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := game.NewEngine(game.EngineConfig{
		Field:  fieldCfg,
		Limits: limits,
	})

	// The server installs its snapshot callback, so it must exist before Run
	server := api.NewServer(engine, appConfig)

	go engine.Run(ctx)
	log.Println("✅ Game Engine started")

	debugServer := api.StartDebugServer(appConfig.Observability)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	if err := server.Start(ctx, appConfig.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("🛑 Shutting down...")
	if debugServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		debugServer.Shutdown(shutdownCtx)
		cancel()
	}
	log.Println("👋 Goodbye!")
}
