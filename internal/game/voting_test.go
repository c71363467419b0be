package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMajority(t *testing.T) {
	assert.Equal(t, 2, Majority(3))
	assert.Equal(t, 3, Majority(4))
	assert.Equal(t, 3, Majority(5))
	assert.Equal(t, 4, Majority(6))
}

func TestResolveVotes(t *testing.T) {
	members := []string{"a", "b", "c", "d"}
	tests := []struct {
		name        string
		votes       map[string]string
		wantDone    bool
		wantAccused string
	}{
		{name: "no votes", votes: map[string]string{}},
		{name: "below majority", votes: map[string]string{"a": "b", "c": "b"}},
		{name: "majority before everyone voted", votes: map[string]string{"a": "b", "c": "b", "d": "b"}, wantDone: true, wantAccused: "b"},
		{name: "all voted split", votes: map[string]string{"a": "b", "c": "b", "b": "c", "d": "a"}, wantDone: true},
		{name: "all voted two-two", votes: map[string]string{"a": "b", "b": "a", "c": "a", "d": "b"}, wantDone: true},
		{name: "all voted with majority", votes: map[string]string{"a": "d", "b": "d", "c": "d", "d": "a"}, wantDone: true, wantAccused: "d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accused, tally, done := resolveVotes(members, tt.votes)
			assert.Equal(t, tt.wantDone, done)
			assert.Equal(t, tt.wantAccused, accused)
			total := 0
			for _, n := range tally {
				total += n
			}
			assert.Equal(t, len(tt.votes), total)
		})
	}
}

func TestScenarioMajorityCatchesImpostor(t *testing.T) {
	c, rec, sched := newTestController(t)
	c.rooms.newCode = func() string { return "AB12CD" }

	code, err := c.CreateRoom("host", "Host")
	require.NoError(t, err)
	require.Equal(t, "AB12CD", code)
	_, err = c.JoinRoom("p2", code, "Bea")
	require.NoError(t, err)
	_, err = c.JoinRoom("p3", code, "Cem")
	require.NoError(t, err)

	require.NoError(t, c.StartGame("host", code))
	r, _ := c.rooms.Get(code)
	impostor := r.impostorID()
	require.NotEmpty(t, impostor)

	impostors := 0
	for _, id := range r.members {
		roles := rec.to(id, EventRoleAssigned)
		require.Len(t, roles, 1)
		if roles[0].(RoleAssignedPayload).Role == RoleImpostor {
			impostors++
		}
	}
	assert.Equal(t, 1, impostors)

	sched.fire(t, testRoundSeconds)
	assert.Equal(t, PhaseVoting, r.phase)

	voters := othersThan(r, impostor)
	require.NoError(t, c.CastVote(voters[0], code, impostor))
	assert.Empty(t, rec.named(EventGameOver))
	require.NoError(t, c.CastVote(voters[1], code, impostor))

	overs := rec.named(EventGameOver)
	require.Len(t, overs, 3, "one outcome per member")
	out := overs[0].payload.(Outcome)
	assert.True(t, out.ImpostorCaught)
	assert.Equal(t, impostor, out.ImpostorID)
	assert.Equal(t, impostor, out.AccusedID)
	assert.Equal(t, map[string]int{impostor: 2}, out.Votes)

	assert.Equal(t, PhaseLobby, r.phase, "room is replayable right away")
	for _, p := range r.players {
		assert.Equal(t, RoleUnassigned, p.Role)
		assert.Nil(t, p.Identity)
		assert.Empty(t, p.VoteFor)
	}

	// the third vote arrives after resolution and is ignored
	err = c.CastVote(impostor, code, voters[0])
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.Len(t, rec.named(EventGameOver), 3)
}

func TestScenarioSplitVoteImpostorWins(t *testing.T) {
	c, rec, sched := newTestController(t)
	code, r := startedRoom(t, c, "p2", "p3", "p4")
	sched.fire(t, testRoundSeconds)
	require.Equal(t, PhaseVoting, r.phase)

	impostor := r.impostorID()
	m := r.members
	// 2/1/1: m[1] gets two votes, m[2] and m[0] one each
	require.NoError(t, c.CastVote(m[0], code, m[1]))
	require.NoError(t, c.CastVote(m[2], code, m[1]))
	require.NoError(t, c.CastVote(m[1], code, m[2]))
	assert.Empty(t, rec.named(EventGameOver))
	require.NoError(t, c.CastVote(m[3], code, m[0]))

	overs := rec.named(EventGameOver)
	require.Len(t, overs, 4)
	out := overs[0].payload.(Outcome)
	assert.False(t, out.ImpostorCaught)
	assert.Empty(t, out.AccusedID)
	assert.Equal(t, impostor, out.ImpostorID)
	assert.Equal(t, 2, out.Votes[m[1]])
	assert.Equal(t, PhaseLobby, r.phase)
}

func TestWrongAccusationImpostorWins(t *testing.T) {
	c, rec, sched := newTestController(t)
	code, r := startedRoom(t, c, "p2", "p3")
	sched.fire(t, testRoundSeconds)

	impostor := r.impostorID()
	innocent := othersThan(r, impostor)
	require.NoError(t, c.CastVote(impostor, code, innocent[0]))
	require.NoError(t, c.CastVote(innocent[1], code, innocent[0]))

	out := rec.named(EventGameOver)[0].payload.(Outcome)
	assert.False(t, out.ImpostorCaught)
	assert.Equal(t, innocent[0], out.AccusedID)
}

func TestVoteOverwritesPreviousChoice(t *testing.T) {
	c, _, sched := newTestController(t)
	code, r := startedRoom(t, c, "p2", "p3", "p4")
	sched.fire(t, testRoundSeconds)

	require.NoError(t, c.CastVote("host", code, "p2"))
	require.NoError(t, c.CastVote("host", code, "p3"))
	assert.Equal(t, "p3", r.players["host"].VoteFor)

	votes := map[string]string{}
	for _, id := range r.members {
		if v := r.players[id].VoteFor; v != "" {
			votes[id] = v
		}
	}
	assert.Equal(t, map[string]int{"p3": 1}, Tally(votes))
}

func TestEarlyVoteDuringDiscussion(t *testing.T) {
	c, rec, sched := newTestController(t)
	code, r := startedRoom(t, c, "p2", "p3")
	s := sched.last()

	impostor := r.impostorID()
	voters := othersThan(r, impostor)
	require.NoError(t, c.CastVote(voters[0], code, impostor))
	require.NoError(t, c.CastVote(voters[1], code, impostor))

	assert.False(t, sched.active(s), "countdown stopped on resolution")
	states := rec.to("host", EventGameState)
	require.GreaterOrEqual(t, len(states), 2)
	assert.Equal(t, PhaseVoting, states[len(states)-1].(GameStatePayload).Phase, "voting is announced before the outcome")
	assert.Len(t, rec.named(EventGameOver), 3)
	assert.Equal(t, PhaseLobby, r.phase)
}

func TestVotesIgnoredOutsideRound(t *testing.T) {
	c, _, _ := newTestController(t)
	code, r := setupRoom(t, c, "p2", "p3")

	err := c.CastVote("p2", code, "p3")
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.True(t, IsSilent(err))
	assert.Empty(t, r.players["p2"].VoteFor)
}

func TestVoteRejectsStrangers(t *testing.T) {
	c, _, _ := newTestController(t)
	code, _ := startedRoom(t, c, "p2", "p3")

	assert.ErrorIs(t, c.CastVote("nobody", code, "p2"), ErrNotMember)
	assert.ErrorIs(t, c.CastVote("p2", code, "nobody"), ErrInvalidTarget)
}
