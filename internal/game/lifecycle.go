package game

import (
	"github.com/dustin/go-humanize"
)

// Disconnect forgets connID and removes it from its room.
func (c *Controller) Disconnect(connID string) {
	_, code, ok := c.conns.Lookup(connID)
	if !ok {
		return
	}
	c.leave(connID, code, "disconnected")
}

// Kick removes targetID from the room on behalf of the host.
func (c *Controller) Kick(connID, code, targetID string) error {
	r, err := c.lockRoom(code)
	if err != nil {
		return err
	}
	defer r.mu.Unlock()

	if r.host != connID {
		return ErrNotAuthorized
	}
	if targetID == connID || !r.isMember(targetID) {
		return ErrInvalidTarget
	}
	c.pub.Publish(targetID, EventKicked, KickedPayload{RoomCode: r.Code})
	c.log.Info().Str("code", r.Code).Str("target", targetID).Msg("player kicked")
	c.removeLocked(r, targetID, "kicked")
	return nil
}

// leaveCurrent takes connID out of whatever room it is in, unless that room
// is keep.
func (c *Controller) leaveCurrent(connID, keep string) {
	_, code, ok := c.conns.Lookup(connID)
	if !ok || code == keep {
		return
	}
	c.leave(connID, code, "left")
}

func (c *Controller) leave(connID, code, reason string) {
	r, err := c.lockRoom(code)
	if err != nil {
		c.conns.remove(connID)
		return
	}
	defer r.mu.Unlock()
	c.removeLocked(r, connID, reason)
}

// removeLocked drops id from r and repairs the room: destroy when empty,
// host succession, and aborting or re-scoring a running round. Callers hold
// r.mu.
func (c *Controller) removeLocked(r *Room, id, reason string) {
	p := r.players[id]
	if p == nil {
		c.conns.remove(id)
		return
	}
	wasImpostor := p.Role == RoleImpostor
	inRound := r.phase == PhasePlaying || r.phase == PhaseVoting

	hostChanged := r.remove(id)
	c.conns.remove(id)
	c.log.Info().Str("code", r.Code).Str("conn", id).Str("reason", reason).Msg("player left")

	if len(r.members) == 0 {
		r.cancelTimer()
		c.rooms.destroy(r)
		c.log.Info().Str("code", r.Code).Str("opened", humanize.Time(r.CreatedAt)).Int("rounds", r.rounds).Msg("room destroyed")
		return
	}
	if hostChanged {
		c.log.Info().Str("code", r.Code).Str("host", r.host).Msg("host migrated")
	}

	if inRound {
		switch {
		case wasImpostor:
			c.abortRound(r, "impostor left")
		case len(r.members) < c.minPlayers:
			c.abortRound(r, "not enough players")
		default:
			for _, m := range r.members {
				if q := r.players[m]; q.VoteFor == id {
					q.VoteFor = ""
				}
			}
		}
	}

	c.emitMembers(r)
	c.evaluateVotes(r)
}

func (c *Controller) abortRound(r *Room, reason string) {
	c.log.Info().Str("code", r.Code).Str("game", r.gameID).Str("reason", reason).Msg("round aborted")
	r.resetRound()
	c.broadcast(r, EventRoundAborted, RoundAbortedPayload{Reason: reason})
	c.emitState(r)
}
