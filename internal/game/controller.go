package game

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultRoundSeconds = 180
	DefaultMinPlayers   = 3
	DefaultMaxPlayers   = 6

	maxNicknameLen = 20
	maxMessageLen  = 500
)

type Options struct {
	RoundSeconds int
	MinPlayers   int
	MaxPlayers   int
	Pool         Pool
	Scheduler    Scheduler
	Rand         *rand.Rand
	Logger       *zerolog.Logger
	Exporter     *Exporter
	Now          func() time.Time
}

// Controller applies player commands to rooms and publishes the resulting
// events. It is safe for concurrent use; each room is guarded by its own
// mutex.
type Controller struct {
	rooms *RoomManager
	conns *Directory
	pub   Publisher

	pool     Pool
	sched    Scheduler
	log      zerolog.Logger
	exporter *Exporter
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	roundSeconds int
	minPlayers   int
	maxPlayers   int
}

func NewController(rooms *RoomManager, conns *Directory, pub Publisher, opts Options) *Controller {
	c := &Controller{
		rooms:        rooms,
		conns:        conns,
		pub:          pub,
		pool:         opts.Pool,
		sched:        opts.Scheduler,
		log:          zerolog.Nop(),
		exporter:     opts.Exporter,
		now:          opts.Now,
		rng:          opts.Rand,
		roundSeconds: opts.RoundSeconds,
		minPlayers:   opts.MinPlayers,
		maxPlayers:   opts.MaxPlayers,
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	if c.pool == nil {
		c.pool = DefaultPool
	}
	if c.sched == nil {
		c.sched = TickerScheduler{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.roundSeconds <= 0 {
		c.roundSeconds = DefaultRoundSeconds
	}
	if c.maxPlayers < DefaultMinPlayers || c.maxPlayers > DefaultMaxPlayers {
		c.maxPlayers = DefaultMaxPlayers
	}
	if c.minPlayers < DefaultMinPlayers || c.minPlayers > c.maxPlayers {
		c.minPlayers = DefaultMinPlayers
	}
	return c
}

func (c *Controller) MaxPlayers() int { return c.maxPlayers }

// lockRoom looks up code and returns the room with its mutex held.
func (c *Controller) lockRoom(code string) (*Room, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	r, err := c.rooms.Get(code)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	return r, nil
}

func cleanNickname(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if n := utf8.RuneCountInString(nickname); n == 0 || n > maxNicknameLen {
		return "", ErrInvalidNickname
	}
	return nickname, nil
}

// CreateRoom opens a new room with connID as its only member and host.
func (c *Controller) CreateRoom(connID, nickname string) (string, error) {
	nickname, err := cleanNickname(nickname)
	if err != nil {
		return "", err
	}
	c.leaveCurrent(connID, "")

	now := c.now()
	r := c.rooms.create(now)
	defer r.mu.Unlock()

	p := &Player{ID: connID, Nickname: nickname, Role: RoleUnassigned, RoomCode: r.Code, JoinedAt: now}
	r.add(p)
	c.conns.set(p)

	c.log.Info().Str("code", r.Code).Str("conn", connID).Str("nickname", nickname).Msg("room created")
	c.pub.Publish(connID, EventRoomCreated, r.Code)
	c.emitMembers(r)
	return r.Code, nil
}

// JoinRoom adds connID to the room. Joining a room the connection already
// belongs to is a no-op that keeps the original nickname and, mid-game,
// replays the frozen role. The current room is only left once the target
// room has accepted the player.
func (c *Controller) JoinRoom(connID, code, nickname string) ([]PublicPlayer, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	nickname, err = cleanNickname(nickname)
	if err != nil {
		return nil, err
	}

	r, err := c.lockRoom(code)
	if err != nil {
		return nil, err
	}
	err = c.admit(r, connID, nickname)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	c.leaveCurrent(connID, code)

	// The room may have changed while unlocked.
	r, err = c.lockRoom(code)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()
	if err := c.admit(r, connID, nickname); err != nil {
		return nil, err
	}

	p := r.players[connID]
	if p == nil {
		p = &Player{ID: connID, Nickname: nickname, Role: RoleUnassigned, RoomCode: r.Code, JoinedAt: c.now()}
		r.add(p)
		c.conns.set(p)
		c.log.Info().Str("code", r.Code).Str("conn", connID).Str("nickname", nickname).Msg("player joined")
	}

	if r.phase != PhaseLobby {
		if s, ok := r.snapshot[connID]; ok {
			p.Role = s.Role
			p.Identity = s.Identity
			c.pub.Publish(connID, EventRoleAssigned, roleAssigned(s.Role, s.Identity))
		}
		c.pub.Publish(connID, EventGameState, GameStatePayload{Phase: r.phase, Players: r.publicPlayers(), Timer: r.timer})
	}
	c.emitMembers(r)
	return r.publicPlayers(), nil
}

// admit checks whether connID may join r. Callers hold r.mu.
func (c *Controller) admit(r *Room, connID, nickname string) error {
	if r.isMember(connID) {
		return nil
	}
	if len(r.members) >= c.maxPlayers {
		return ErrRoomFull
	}
	if r.phase != PhaseLobby {
		return ErrGameInProgress
	}
	for _, id := range r.members {
		if strings.EqualFold(r.players[id].Nickname, nickname) {
			return ErrDuplicateNickname
		}
	}
	return nil
}

// StartGame hands out roles and starts the countdown.
func (c *Controller) StartGame(connID, code string) error {
	r, err := c.lockRoom(code)
	if err != nil {
		return err
	}
	defer r.mu.Unlock()

	if r.host != connID {
		return ErrNotAuthorized
	}
	if r.phase != PhaseLobby {
		return ErrGameInProgress
	}
	if len(r.members) < c.minPlayers {
		return ErrNotEnoughPlayers
	}

	players := make([]*Player, 0, len(r.members))
	for _, id := range r.members {
		players = append(players, r.players[id])
	}
	c.rngMu.Lock()
	_, err = AssignRoles(players, c.pool, c.rng)
	c.rngMu.Unlock()
	if err != nil {
		return fmt.Errorf("assign roles: %w", err)
	}

	r.phase = PhasePlaying
	r.timer = c.roundSeconds
	r.gameID = uuid.NewString()
	r.rounds++
	r.startedAt = c.now()
	r.snapshot = make(map[string]snapshotEntry, len(players))
	for _, p := range players {
		r.snapshot[p.ID] = snapshotEntry{Nickname: p.Nickname, Role: p.Role, Identity: p.Identity}
		c.pub.Publish(p.ID, EventRoleAssigned, roleAssigned(p.Role, p.Identity))
	}
	c.emitState(r)
	c.startCountdown(r)

	c.log.Info().Str("code", r.Code).Str("game", r.gameID).Int("players", len(players)).Msg("game started")
	return nil
}

// SendMessage relays chat while the discussion clock is running.
func (c *Controller) SendMessage(connID, code, text string) error {
	r, err := c.lockRoom(code)
	if err != nil {
		return err
	}
	defer r.mu.Unlock()

	p := r.players[connID]
	if p == nil {
		return ErrNotMember
	}
	if r.phase != PhasePlaying || r.timer <= 0 {
		return ErrInvalidPhase
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		text = string([]rune(text)[:maxMessageLen])
	}
	c.broadcast(r, EventNewMessage, ChatPayload{
		PlayerID: p.ID,
		Nickname: p.Nickname,
		Message:  text,
		SentAt:   c.now().UTC(),
	})
	return nil
}

// PlayAgain returns the room to the lobby. Host only.
func (c *Controller) PlayAgain(connID, code string) error {
	r, err := c.lockRoom(code)
	if err != nil {
		return err
	}
	defer r.mu.Unlock()

	if r.host != connID {
		return ErrNotAuthorized
	}
	r.resetRound()
	c.emitState(r)
	c.log.Info().Str("code", r.Code).Msg("back to lobby")
	return nil
}

// Summary describes a room for the HTTP API.
func (c *Controller) Summary(code string) (RoomSummary, error) {
	r, err := c.lockRoom(code)
	if err != nil {
		return RoomSummary{}, err
	}
	defer r.mu.Unlock()
	return RoomSummary{
		Code:        r.Code,
		Phase:       r.phase,
		PlayerCount: len(r.members),
		MaxPlayers:  c.maxPlayers,
		Joinable:    r.phase == PhaseLobby && len(r.members) < c.maxPlayers,
	}, nil
}
