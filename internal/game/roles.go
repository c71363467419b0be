package game

import "math/rand"

// Assignment is the result of handing out roles for one round.
type Assignment struct {
	Majority   *Identity
	Impostor   *Identity
	ImpostorID string
}

// AssignRoles picks one impostor among players and gives everyone else the
// shared majority identity. Players are written in place.
func AssignRoles(players []*Player, pool Pool, rng *rand.Rand) (Assignment, error) {
	if len(players) == 0 {
		return Assignment{}, ErrNotEnoughPlayers
	}
	majority, impostor, err := pool.pickPair(rng)
	if err != nil {
		return Assignment{}, err
	}
	ix := rng.Intn(len(players))
	for i, p := range players {
		if i == ix {
			p.Role = RoleImpostor
			p.Identity = impostor
			continue
		}
		p.Role = RoleRegular
		p.Identity = majority
	}
	return Assignment{Majority: majority, Impostor: impostor, ImpostorID: players[ix].ID}, nil
}
