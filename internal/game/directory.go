package game

import "sync"

// Directory maps a live connection to the player it speaks for.
type Directory struct {
	mu    sync.RWMutex
	conns map[string]*Player
}

func NewDirectory() *Directory {
	return &Directory{conns: make(map[string]*Player)}
}

func (d *Directory) set(p *Player) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns[p.ID] = p
}

// Lookup returns the player bound to connID and its room code.
func (d *Directory) Lookup(connID string) (*Player, string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p := d.conns[connID]
	if p == nil {
		return nil, "", false
	}
	return p, p.RoomCode, true
}

func (d *Directory) remove(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.conns, connID)
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conns)
}
