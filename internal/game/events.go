package game

import "time"

// Event names as seen by the client.
const (
	EventRoomCreated  = "roomCreated" // bare room code
	EventPlayerJoined = "playerJoined"
	EventHostStatus   = "hostStatus" // bare bool
	EventRoleAssigned = "roleAssigned"
	EventTimerUpdate  = "timerUpdate" // bare seconds left
	EventGameState    = "gameState"
	EventNewMessage   = "newMessage"
	EventGameOver     = "gameOver"
	EventRoundAborted = "roundAborted"
	EventKicked       = "kicked"
	EventError        = "error"
)

// Publisher delivers an event to a single connection. Implementations must
// not block; the controller calls Publish while holding a room lock.
type Publisher interface {
	Publish(connID string, event string, payload any)
}

type MembersPayload struct {
	Players []PublicPlayer `json:"players"`
}

// RoleAssignedPayload is unicast to each player. AssignedPlayer is the name
// of the identity the player has to describe.
type RoleAssignedPayload struct {
	Role           Role   `json:"role"`
	AssignedPlayer string `json:"assignedPlayer"`
	Portrait       string `json:"portrait,omitempty"`
}

func roleAssigned(role Role, id *Identity) RoleAssignedPayload {
	p := RoleAssignedPayload{Role: role}
	if id != nil {
		p.AssignedPlayer = id.Name
		p.Portrait = id.Portrait
	}
	return p
}

type GameStatePayload struct {
	Phase   Phase          `json:"phase"`
	Players []PublicPlayer `json:"players"`
	Timer   int            `json:"timer"`
}

type ChatPayload struct {
	PlayerID string    `json:"playerId"`
	Nickname string    `json:"nickname"`
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sentAt"`
}

// Outcome is broadcast once a vote resolves.
type Outcome struct {
	ImpostorCaught bool           `json:"impostorCaught"`
	ImpostorID     string         `json:"impostorId"`
	AccusedID      string         `json:"accusedId,omitempty"`
	Votes          map[string]int `json:"votes"`
}

type RoundAbortedPayload struct {
	Reason string `json:"reason"`
}

type KickedPayload struct {
	RoomCode string `json:"roomCode"`
}

// broadcast sends the same payload to every member of r. Callers hold r.mu.
func (c *Controller) broadcast(r *Room, event string, payload any) {
	for _, id := range r.members {
		c.pub.Publish(id, event, payload)
	}
}

func (c *Controller) emitMembers(r *Room) {
	c.broadcast(r, EventPlayerJoined, MembersPayload{Players: r.publicPlayers()})
	for _, id := range r.members {
		c.pub.Publish(id, EventHostStatus, id == r.host)
	}
}

func (c *Controller) emitState(r *Room) {
	c.broadcast(r, EventGameState, GameStatePayload{
		Phase:   r.phase,
		Players: r.publicPlayers(),
		Timer:   r.timer,
	})
}
