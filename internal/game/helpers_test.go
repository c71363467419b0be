package game

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type event struct {
	conn    string
	name    string
	payload any
}

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) Publish(conn, name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{conn: conn, name: name, payload: payload})
}

// to returns the payloads of every name event sent to conn.
func (r *recorder) to(conn, name string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, e := range r.events {
		if e.conn == conn && e.name == name {
			out = append(out, e.payload)
		}
	}
	return out
}

func (r *recorder) named(name string) []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event
	for _, e := range r.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type schedule struct {
	fn      func() bool
	stopped bool
}

// manualScheduler lets tests fire countdown ticks by hand.
type manualScheduler struct {
	mu        sync.Mutex
	schedules []*schedule
}

func (m *manualScheduler) Every(_ time.Duration, fn func() bool) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &schedule{fn: fn}
	m.schedules = append(m.schedules, s)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		s.stopped = true
	}
}

func (m *manualScheduler) last() *schedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.schedules) == 0 {
		return nil
	}
	return m.schedules[len(m.schedules)-1]
}

func (m *manualScheduler) active(s *schedule) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !s.stopped
}

// fire runs the latest schedule up to n times, stopping early like a real
// ticker would.
func (m *manualScheduler) fire(t *testing.T, n int) {
	t.Helper()
	s := m.last()
	require.NotNil(t, s, "no countdown scheduled")
	for i := 0; i < n; i++ {
		if !m.active(s) {
			return
		}
		if !s.fn() {
			m.mu.Lock()
			s.stopped = true
			m.mu.Unlock()
			return
		}
	}
}

const testRoundSeconds = 3

func newTestController(t *testing.T) (*Controller, *recorder, *manualScheduler) {
	t.Helper()
	rec := &recorder{}
	sched := &manualScheduler{}
	c := NewController(NewRoomManager(), NewDirectory(), rec, Options{
		RoundSeconds: testRoundSeconds,
		Scheduler:    sched,
		Rand:         rand.New(rand.NewSource(1)),
	})
	return c, rec, sched
}

// setupRoom creates a room hosted by "host" and joins the other ids.
func setupRoom(t *testing.T, c *Controller, others ...string) (string, *Room) {
	t.Helper()
	code, err := c.CreateRoom("host", "Host")
	require.NoError(t, err)
	for _, id := range others {
		_, err := c.JoinRoom(id, code, "nick-"+id)
		require.NoError(t, err)
	}
	r, err := c.rooms.Get(code)
	require.NoError(t, err)
	return code, r
}

// startedRoom returns a room that is in the playing phase.
func startedRoom(t *testing.T, c *Controller, others ...string) (string, *Room) {
	t.Helper()
	code, r := setupRoom(t, c, others...)
	require.NoError(t, c.StartGame("host", code))
	return code, r
}

func othersThan(r *Room, id string) []string {
	var out []string
	for _, m := range r.members {
		if m != id {
			out = append(out, m)
		}
	}
	return out
}
