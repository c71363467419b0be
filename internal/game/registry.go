package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	CodeLength = 6

	// codeLetters leaves out characters that are easy to confuse when read
	// aloud. Any uppercase letter or digit is still accepted on join.
	codeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// RoomManager owns every live room, keyed by code.
type RoomManager struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	newCode func() string
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms:   make(map[string]*Room),
		newCode: func() string { return randomCode(CodeLength) },
	}
}

// create registers a fresh room under an unused code and returns it locked.
func (rm *RoomManager) create(now time.Time) *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	code := rm.newCode()
	for rm.rooms[code] != nil {
		code = rm.newCode()
	}
	r := newRoom(code, now)
	r.mu.Lock()
	rm.rooms[code] = r
	return r
}

func (rm *RoomManager) Get(code string) (*Room, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	r := rm.rooms[code]
	if r == nil {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// destroy unregisters r. Callers hold r.mu.
func (rm *RoomManager) destroy(r *Room) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.rooms[r.Code] == r {
		delete(rm.rooms, r.Code)
	}
	r.closed = true
}

func (rm *RoomManager) Len() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// NormalizeCode trims and upper-cases a user supplied code and checks its
// format.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != CodeLength {
		return "", ErrInvalidCodeFormat
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", ErrInvalidCodeFormat
		}
	}
	return code, nil
}

func randomCode(n int) string {
	letters := []rune(codeLetters)
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
