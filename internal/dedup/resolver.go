// Package dedup resolves username collisions across sources.
package dedup

import (
	"github.com/samber/lo"

	"github.com/spec-kit/user-migration/internal/domain"
)

// Decision records how one multi-member username group was resolved.
type Decision struct {
	Username          string   `json:"username"`
	ChosenSource      string   `json:"chosen_source"`
	SuppressedSources []string `json:"suppressed_sources"`
}

// Result partitions the input into one winner per username and the rest.
type Result struct {
	Winners    []domain.KeycloakUser
	Suppressed []domain.KeycloakUser
	Decisions  []Decision
}

type group struct {
	username string
	members  []domain.KeycloakUser
}

// Resolve groups users by username, keeping first-seen order for groups and
// members. A group member from the primary source wins; otherwise the first
// member does. Usernames are compared as given.
func Resolve(users []domain.KeycloakUser) Result {
	groups := groupByUsername(users)

	result := Result{
		Winners:    make([]domain.KeycloakUser, 0, len(groups)),
		Suppressed: []domain.KeycloakUser{},
		Decisions:  []Decision{},
	}

	for _, g := range groups {
		if len(g.members) == 1 {
			result.Winners = append(result.Winners, g.members[0])
			continue
		}

		winnerIdx := pickWinner(g.members)
		losers := make([]domain.KeycloakUser, 0, len(g.members)-1)
		for i, member := range g.members {
			if i != winnerIdx {
				losers = append(losers, member)
			}
		}
		winner := g.members[winnerIdx]

		result.Winners = append(result.Winners, winner)
		result.Suppressed = append(result.Suppressed, losers...)
		result.Decisions = append(result.Decisions, Decision{
			Username:     g.username,
			ChosenSource: string(winner.Source()),
			SuppressedSources: lo.Map(losers, func(u domain.KeycloakUser, _ int) string {
				return string(u.Source())
			}),
		})
	}

	return result
}

func groupByUsername(users []domain.KeycloakUser) []*group {
	index := make(map[string]*group, len(users))
	ordered := make([]*group, 0, len(users))
	for _, u := range users {
		g, ok := index[u.Username]
		if !ok {
			g = &group{username: u.Username}
			index[u.Username] = g
			ordered = append(ordered, g)
		}
		g.members = append(g.members, u)
	}
	return ordered
}

func pickWinner(members []domain.KeycloakUser) int {
	_, idx, found := lo.FindIndexOf(members, func(u domain.KeycloakUser) bool {
		return u.Source() == domain.PrimarySource
	})
	if !found {
		return 0
	}
	return idx
}
