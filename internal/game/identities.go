package game

import (
	"math/rand"
	"strings"
)

// Pool is the catalog identities are drawn from.
type Pool []Identity

// DefaultPool holds the footballers players impersonate.
var DefaultPool = Pool{
	{Name: "Messi", Portrait: "portraits/messi.png"},
	{Name: "Ronaldo", Portrait: "portraits/ronaldo.png"},
	{Name: "Neymar", Portrait: "portraits/neymar.png"},
	{Name: "Mbappé", Portrait: "portraits/mbappe.png"},
	{Name: "Salah", Portrait: "portraits/salah.png"},
	{Name: "Benzema", Portrait: "portraits/benzema.png"},
	{Name: "Haaland", Portrait: "portraits/haaland.png"},
	{Name: "De Bruyne", Portrait: "portraits/de-bruyne.png"},
	{Name: "Modric", Portrait: "portraits/modric.png"},
	{Name: "Kroos", Portrait: "portraits/kroos.png"},
	{Name: "Iniesta", Portrait: "portraits/iniesta.png"},
	{Name: "Xavi", Portrait: "portraits/xavi.png"},
	{Name: "Pirlo", Portrait: "portraits/pirlo.png"},
	{Name: "Zidane", Portrait: "portraits/zidane.png"},
	{Name: "Maradona", Portrait: "portraits/maradona.png"},
}

func (p Pool) distinct() int {
	seen := make(map[string]struct{}, len(p))
	for _, id := range p {
		seen[strings.ToLower(id.Name)] = struct{}{}
	}
	return len(seen)
}

// pickPair draws the majority identity and a different impostor identity.
func (p Pool) pickPair(rng *rand.Rand) (majority, impostor *Identity, err error) {
	if p.distinct() < 2 {
		return nil, nil, ErrPoolTooSmall
	}
	majority = &p[rng.Intn(len(p))]
	for {
		impostor = &p[rng.Intn(len(p))]
		if !strings.EqualFold(impostor.Name, majority.Name) {
			return majority, impostor, nil
		}
	}
}
