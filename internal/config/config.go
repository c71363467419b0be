package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	ClientURL     string
	PublicURL     string
	RoundSeconds  int
	MinPlayers    int
	MaxPlayers    int
	ChatRate      float64 // messages per second
	ChatBurst     int
	ExportEnabled bool
	ExportFile    string
	LogLevel      string
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() Config {
	return fromLookup(os.Getenv)
}

// Load reads the given dotenv files (".env" when none are given) and
// layers the process environment on top. Missing files are skipped.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	fileEnv := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range m {
			if _, ok := fileEnv[k]; !ok {
				fileEnv[k] = v
			}
		}
	}
	return fromLookup(func(k string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return fileEnv[k]
	}), nil
}

func fromLookup(get func(string) string) Config {
	getenv := func(k, def string) string {
		if v := get(k); v != "" {
			return v
		}
		return def
	}
	c := Config{}
	c.Port = getenv("PORT", "3001")
	c.ClientURL = getenv("CLIENT_URL", "http://localhost:3000")
	c.PublicURL = getenv("PUBLIC_URL", c.ClientURL)
	c.RoundSeconds = atoi(get("ROUND_SECONDS"), 180)
	c.MaxPlayers = clamp(atoi(get("MAX_PLAYERS"), maxPlayers), minPlayers, maxPlayers)
	c.MinPlayers = clamp(atoi(get("MIN_PLAYERS"), minPlayers), minPlayers, c.MaxPlayers)
	c.ChatRate = atof(get("CHAT_RATE"), 2)
	c.ChatBurst = atoi(get("CHAT_BURST"), 5)
	c.ExportEnabled = getenv("EXPORT_ENABLED", "false") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./impostor-results.txt")
	c.LogLevel = getenv("LOG_LEVEL", "info")
	return c
}

// Room size is bounded by the game itself: a round needs at least three
// players and a room never holds more than six.
const (
	minPlayers = 3
	maxPlayers = 6
)

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func atof(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}
