package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisconnectMigratesHost(t *testing.T) {
	c, rec, _ := newTestController(t)
	code, r := setupRoom(t, c, "p2", "p3")
	rec.reset()

	c.Disconnect("host")

	assert.Equal(t, []string{"p2", "p3"}, r.members)
	assert.Equal(t, "p2", r.host)
	_, _, ok := c.conns.Lookup("host")
	assert.False(t, ok)

	joined := rec.to("p3", EventPlayerJoined)
	require.Len(t, joined, 1)
	players := joined[0].(MembersPayload).Players
	assert.Equal(t, []PublicPlayer{{ID: "p2", Nickname: "nick-p2", IsHost: true}, {ID: "p3", Nickname: "nick-p3"}}, players)
	assert.Equal(t, []any{true}, rec.to("p2", EventHostStatus))
	assert.Empty(t, rec.to("host", EventPlayerJoined), "the departed connection gets nothing")

	// the new host can now run the room
	_, err := c.JoinRoom("p4", code, "Dee")
	require.NoError(t, err)
	assert.NoError(t, c.StartGame("p2", code))
}

func TestDisconnectLastMemberDestroysRoom(t *testing.T) {
	c, _, _ := newTestController(t)
	code, r := setupRoom(t, c, "p2")

	c.Disconnect("p2")
	c.Disconnect("host")

	_, err := c.rooms.Get(code)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.True(t, r.closed)
	assert.Equal(t, 0, c.conns.Len())

	_, err = c.JoinRoom("p9", code, "Late")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestDisconnectUnknownConnection(t *testing.T) {
	c, rec, _ := newTestController(t)
	c.Disconnect("ghost")
	assert.Empty(t, rec.events)
}

func TestKick(t *testing.T) {
	c, rec, _ := newTestController(t)
	code, r := setupRoom(t, c, "p2", "p3")
	rec.reset()

	assert.ErrorIs(t, c.Kick("p2", code, "p3"), ErrNotAuthorized)
	assert.ErrorIs(t, c.Kick("host", code, "host"), ErrInvalidTarget)
	assert.ErrorIs(t, c.Kick("host", code, "ghost"), ErrInvalidTarget)
	assert.Len(t, r.members, 3)

	require.NoError(t, c.Kick("host", code, "p3"))
	assert.Equal(t, []string{"host", "p2"}, r.members)
	assert.Equal(t, []any{KickedPayload{RoomCode: code}}, rec.to("p3", EventKicked))
	_, _, ok := c.conns.Lookup("p3")
	assert.False(t, ok)

	joined := rec.to("p2", EventPlayerJoined)
	require.Len(t, joined, 1)
	assert.Len(t, joined[0].(MembersPayload).Players, 2)

	// a kicked connection can come back while the room is in the lobby
	_, err := c.JoinRoom("p3", code, "nick-p3")
	assert.NoError(t, err)
}

func TestImpostorLeavingAbortsRound(t *testing.T) {
	c, rec, sched := newTestController(t)
	_, r := startedRoom(t, c, "p2", "p3", "p4")
	s := sched.last()
	impostor := r.impostorID()
	survivor := othersThan(r, impostor)[0]
	rec.reset()

	c.Disconnect(impostor)

	assert.Equal(t, PhaseLobby, r.phase)
	assert.False(t, sched.active(s))
	assert.Equal(t, []any{RoundAbortedPayload{Reason: "impostor left"}}, rec.to(survivor, EventRoundAborted))
	assert.Empty(t, rec.named(EventGameOver))
	for _, p := range r.players {
		assert.Equal(t, RoleUnassigned, p.Role)
	}
}

func TestTooFewPlayersAbortsRound(t *testing.T) {
	c, rec, _ := newTestController(t)
	_, r := startedRoom(t, c, "p2", "p3")
	leaver := othersThan(r, r.impostorID())[0]
	rec.reset()

	c.Disconnect(leaver)

	assert.Equal(t, PhaseLobby, r.phase)
	assert.Len(t, r.members, 2)
	assert.Len(t, rec.named(EventRoundAborted), 2)
}

func TestDepartureReevaluatesVotes(t *testing.T) {
	c, rec, sched := newTestController(t)
	code, r := startedRoom(t, c, "p2", "p3", "p4")
	sched.fire(t, testRoundSeconds)

	impostor := r.impostorID()
	others := othersThan(r, impostor)
	require.NoError(t, c.CastVote(others[0], code, impostor))
	require.NoError(t, c.CastVote(others[1], code, impostor))
	require.NoError(t, c.CastVote(impostor, code, others[2]))
	assert.Empty(t, rec.named(EventGameOver), "2 of 4 is not a majority")

	c.Disconnect(others[2])

	overs := rec.named(EventGameOver)
	require.Len(t, overs, 3)
	out := overs[0].payload.(Outcome)
	assert.True(t, out.ImpostorCaught)
	assert.Equal(t, map[string]int{impostor: 2}, out.Votes, "votes for the departed player are dropped")
}

func TestHostInvariantUnderChurn(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for round := 0; round < 50; round++ {
		c, _, _ := newTestController(t)
		_, r := setupRoom(t, c, "p2", "p3", "p4", "p5", "p6")

		for len(r.members) > 0 {
			victim := r.members[rng.Intn(len(r.members))]
			if rng.Intn(2) == 0 && victim != r.host {
				require.NoError(t, c.Kick(r.host, r.Code, victim))
			} else {
				c.Disconnect(victim)
			}

			if len(r.members) == 0 {
				break
			}
			require.LessOrEqual(t, len(r.members), DefaultMaxPlayers)
			require.True(t, r.isMember(r.host), "host must be a current member")
			hosts := 0
			for _, pp := range r.publicPlayers() {
				if pp.IsHost {
					hosts++
				}
			}
			require.Equal(t, 1, hosts)
		}
		assert.Equal(t, 0, c.rooms.Len())
		assert.Equal(t, 0, c.conns.Len())
	}
}
