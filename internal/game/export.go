package game

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// RoundRecord is a finished round as written to the results file.
type RoundRecord struct {
	Code      string
	GameID    string
	Round     int
	StartedAt time.Time
	EndedAt   time.Time
	Players   []RecordedPlayer
	Outcome   Outcome
}

type RecordedPlayer struct {
	ID       string
	Nickname string
	Role     Role
	Identity string
}

func newRoundRecord(r *Room, out Outcome, now time.Time) RoundRecord {
	rec := RoundRecord{
		Code:      r.Code,
		GameID:    r.gameID,
		Round:     r.rounds,
		StartedAt: r.startedAt,
		EndedAt:   now,
		Outcome:   out,
	}
	for _, id := range r.members {
		p := r.players[id]
		rp := RecordedPlayer{ID: id, Nickname: p.Nickname, Role: p.Role}
		if p.Identity != nil {
			rp.Identity = p.Identity.Name
		}
		rec.Players = append(rec.Players, rp)
	}
	return rec
}

// Exporter appends finished rounds to a plain text file.
type Exporter struct {
	mu   sync.Mutex
	path string
}

func NewExporter(path string) *Exporter {
	return &Exporter{path: path}
}

func (e *Exporter) Path() string { return e.path }

// Write appends rec to the results file, creating it and its directory if
// needed.
func (e *Exporter) Write(rec RoundRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(formatRound(rec)); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}

func formatRound(rec RoundRecord) string {
	names := make(map[string]string, len(rec.Players))
	for _, p := range rec.Players {
		names[p.ID] = p.Nickname
	}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return "Unknown"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Room %s - %s round (%s)\n", rec.Code, humanize.Ordinal(rec.Round), rec.GameID))
	sb.WriteString(fmt.Sprintf("Started: %s, lasted %s\n",
		rec.StartedAt.Format("2006-01-02 15:04:05"),
		strings.TrimSpace(humanize.RelTime(rec.StartedAt, rec.EndedAt, "", ""))))
	sb.WriteString(strings.Repeat("-", 40) + "\n")

	for _, p := range rec.Players {
		sb.WriteString(fmt.Sprintf("- %s: %s as %s\n", p.Nickname, p.Role, p.Identity))
	}

	if len(rec.Outcome.Votes) > 0 {
		type count struct {
			Name  string
			Votes int
		}
		counts := make([]count, 0, len(rec.Outcome.Votes))
		for id, n := range rec.Outcome.Votes {
			counts = append(counts, count{Name: name(id), Votes: n})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].Votes != counts[j].Votes {
				return counts[i].Votes > counts[j].Votes
			}
			return counts[i].Name < counts[j].Name
		})
		sb.WriteString("\nVotes:\n")
		for _, c := range counts {
			sb.WriteString(fmt.Sprintf("- %s: %d vote(s)\n", c.Name, c.Votes))
		}
	}

	sb.WriteString("\n")
	switch {
	case rec.Outcome.ImpostorCaught:
		sb.WriteString(fmt.Sprintf("Impostor %s was caught.\n", name(rec.Outcome.ImpostorID)))
	case rec.Outcome.AccusedID != "":
		sb.WriteString(fmt.Sprintf("%s was wrongly accused, impostor %s wins.\n", name(rec.Outcome.AccusedID), name(rec.Outcome.ImpostorID)))
	default:
		sb.WriteString(fmt.Sprintf("No majority, impostor %s wins.\n", name(rec.Outcome.ImpostorID)))
	}
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")
	return sb.String()
}

func (c *Controller) exportRound(rec RoundRecord) {
	if err := c.exporter.Write(rec); err != nil {
		c.log.Error().Err(err).Str("code", rec.Code).Msg("failed to export round")
		return
	}
	c.log.Info().Str("code", rec.Code).Str("file", c.exporter.Path()).Msg("exported round")
}
