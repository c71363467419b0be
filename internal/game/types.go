package game

import (
	"sync"
	"time"
)

type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhasePlaying Phase = "playing"
	PhaseVoting  Phase = "voting"
	PhaseResults Phase = "results"
)

type Role string

const (
	RoleUnassigned Role = "unassigned"
	RoleRegular    Role = "regular"
	RoleImpostor   Role = "impostor"
)

// Identity is a persona handed out for one round. Entries are shared
// read-only between rooms.
type Identity struct {
	Name     string `json:"name"`
	Portrait string `json:"portrait,omitempty"`
}

type Player struct {
	ID       string
	Nickname string
	Role     Role
	Identity *Identity
	VoteFor  string
	RoomCode string
	JoinedAt time.Time
}

func (p *Player) reset() {
	p.Role = RoleUnassigned
	p.Identity = nil
	p.VoteFor = ""
}

// PublicPlayer is what every member of a room may see about another member.
type PublicPlayer struct {
	ID       string    `json:"id"`
	Nickname string    `json:"nickname"`
	IsHost   bool      `json:"isHost"`
	Identity *Identity `json:"identity,omitempty"`
}

type snapshotEntry struct {
	Nickname string
	Role     Role
	Identity *Identity
}

type Room struct {
	Code      string
	CreatedAt time.Time

	members  []string // join order
	players  map[string]*Player
	host     string
	phase    Phase
	timer    int
	snapshot map[string]snapshotEntry

	gameID    string
	rounds    int
	startedAt time.Time
	stopTimer func()
	closed    bool

	mu sync.Mutex
}

func newRoom(code string, now time.Time) *Room {
	return &Room{
		Code:      code,
		CreatedAt: now,
		players:   make(map[string]*Player),
		phase:     PhaseLobby,
	}
}

func (r *Room) isMember(id string) bool {
	_, ok := r.players[id]
	return ok
}

func (r *Room) add(p *Player) {
	if r.isMember(p.ID) {
		return
	}
	r.members = append(r.members, p.ID)
	r.players[p.ID] = p
	if r.host == "" {
		r.host = p.ID
	}
}

// remove drops id from the member list and hands the host role to the first
// remaining member if needed. It reports whether the host changed.
func (r *Room) remove(id string) (hostChanged bool) {
	if !r.isMember(id) {
		return false
	}
	delete(r.players, id)
	for i, m := range r.members {
		if m == id {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	if r.host == id {
		r.host = ""
		if len(r.members) > 0 {
			r.host = r.members[0]
		}
		return true
	}
	return false
}

func (r *Room) publicPlayers() []PublicPlayer {
	reveal := r.phase == PhaseVoting || r.phase == PhaseResults
	out := make([]PublicPlayer, 0, len(r.members))
	for _, id := range r.members {
		p := r.players[id]
		pp := PublicPlayer{ID: p.ID, Nickname: p.Nickname, IsHost: id == r.host}
		if reveal {
			pp.Identity = p.Identity
		}
		out = append(out, pp)
	}
	return out
}

func (r *Room) impostorID() string {
	for _, id := range r.members {
		if r.players[id].Role == RoleImpostor {
			return id
		}
	}
	return ""
}

func (r *Room) cancelTimer() {
	if r.stopTimer != nil {
		r.stopTimer()
		r.stopTimer = nil
	}
}

// resetRound returns the room to the lobby, keeping its members.
func (r *Room) resetRound() {
	r.cancelTimer()
	r.phase = PhaseLobby
	r.timer = 0
	r.snapshot = nil
	r.gameID = ""
	for _, p := range r.players {
		p.reset()
	}
}

// RoomSummary is the public view served over HTTP.
type RoomSummary struct {
	Code        string `json:"roomCode"`
	Phase       Phase  `json:"phase"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	Joinable    bool   `json:"joinable"`
}
