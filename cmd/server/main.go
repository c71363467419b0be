package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kiliankoe/impostor/internal/api"
	"github.com/kiliankoe/impostor/internal/config"
	"github.com/kiliankoe/impostor/internal/game"
	"github.com/kiliankoe/impostor/internal/ws"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"
)

var version = "dev" // Set at build time via -ldflags

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
		envFile     = flag.String("env", ".env", "dotenv file to read before the environment")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Impostor - real-time social deduction party game server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 3001 or PORT env var)
  --env FILE      dotenv file to load (default: .env)

Environment Variables:
  PORT             Port to listen on (default: 3001)
  CLIENT_URL       Origin allowed by CORS (default: http://localhost:3000)
  PUBLIC_URL       Base URL encoded in join QR codes (default: CLIENT_URL)
  ROUND_SECONDS    Discussion countdown in seconds (default: 180)
  MIN_PLAYERS      Players needed to start (default: 3)
  MAX_PLAYERS      Room capacity (default: 6)
  CHAT_RATE        Chat messages per second per player (default: 2)
  CHAT_BURST       Chat burst allowance (default: 5)
  EXPORT_ENABLED   Append finished rounds to a file (default: false)
  EXPORT_FILE      Path of the results file (default: ./impostor-results.txt)
  LOG_LEVEL        debug, info, warn or error (default: info)
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Impostor %s\n", version)
		return
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	cfg, err := config.Load(*envFile)
	if err != nil {
		zerologlog.Fatal().Err(err).Msg("config")
	}
	if *portFlag != "" {
		cfg.Port = *portFlag
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		zerologlog.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
	}

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Game controller + socket server
	var exporter *game.Exporter
	if cfg.ExportEnabled {
		exporter = game.NewExporter(cfg.ExportFile)
	}
	gameLog := zerologlog.Logger.With().Str("component", "game").Logger()
	hub := ws.NewHub()
	ctl := game.NewController(game.NewRoomManager(), game.NewDirectory(), hub, game.Options{
		RoundSeconds: cfg.RoundSeconds,
		MinPlayers:   cfg.MinPlayers,
		MaxPlayers:   cfg.MaxPlayers,
		Pool:         game.DefaultPool,
		Logger:       &gameLog,
		Exporter:     exporter,
	})
	sock := ws.New(ctl, hub, cfg)
	io := sock.Mount(r)
	defer io.Close()

	api.Register(r, ctl, game.DefaultPool, cfg.PublicURL)

	zerologlog.Info().Str("port", cfg.Port).Str("client", cfg.ClientURL).Msg("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		zerologlog.Fatal().Err(err).Msg("server stopped")
	}
}
