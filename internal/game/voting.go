package game

// Tally counts the votes received by each target.
func Tally(votes map[string]string) map[string]int {
	out := make(map[string]int, len(votes))
	for _, target := range votes {
		out[target]++
	}
	return out
}

// Majority is the number of votes a target needs among n members.
func Majority(n int) int {
	return n/2 + 1
}

// resolveVotes decides whether the round is over. votes maps voter to
// target and is expected to hold members only. done is true once a target
// has a strict majority (accused is set) or every member has voted (accused
// may be empty).
func resolveVotes(members []string, votes map[string]string) (accused string, tally map[string]int, done bool) {
	tally = Tally(votes)
	need := Majority(len(members))
	for _, id := range members {
		if tally[id] >= need {
			return id, tally, true
		}
	}
	return "", tally, len(members) > 0 && len(votes) >= len(members)
}

// CastVote records voterID's choice, replacing any earlier one, and resolves
// the round when the tally allows it.
func (c *Controller) CastVote(voterID, code, targetID string) error {
	r, err := c.lockRoom(code)
	if err != nil {
		return err
	}
	defer r.mu.Unlock()

	if !(r.phase == PhasePlaying && r.timer > 0) && r.phase != PhaseVoting {
		return ErrInvalidPhase
	}
	voter := r.players[voterID]
	if voter == nil {
		return ErrNotMember
	}
	if !r.isMember(targetID) {
		return ErrInvalidTarget
	}
	voter.VoteFor = targetID
	c.log.Debug().Str("code", r.Code).Str("voter", voterID).Str("target", targetID).Msg("vote")
	c.evaluateVotes(r)
	return nil
}

// evaluateVotes resolves the round if the current votes settle it. Callers
// hold r.mu.
func (c *Controller) evaluateVotes(r *Room) {
	if r.phase != PhasePlaying && r.phase != PhaseVoting {
		return
	}
	votes := make(map[string]string, len(r.members))
	for _, id := range r.members {
		if v := r.players[id].VoteFor; v != "" {
			votes[id] = v
		}
	}
	accused, tally, done := resolveVotes(r.members, votes)
	if !done {
		return
	}
	c.resolve(r, accused, tally)
}

func (c *Controller) resolve(r *Room, accused string, tally map[string]int) {
	if r.phase == PhasePlaying {
		r.cancelTimer()
		r.phase = PhaseVoting
		c.emitState(r)
	}
	r.phase = PhaseResults

	impostor := r.impostorID()
	out := Outcome{
		ImpostorID: impostor,
		AccusedID:  accused,
		Votes:      tally,
	}
	if accused != "" {
		out.ImpostorCaught = r.players[accused].Role == RoleImpostor
	}
	c.broadcast(r, EventGameOver, out)
	c.log.Info().
		Str("code", r.Code).
		Str("game", r.gameID).
		Bool("caught", out.ImpostorCaught).
		Str("accused", accused).
		Msg("round resolved")

	if c.exporter != nil {
		rec := newRoundRecord(r, out, c.now())
		go c.exportRound(rec)
	}
	r.resetRound()
}
