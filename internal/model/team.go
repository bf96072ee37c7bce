package model

import "fmt"

// Team is one of the fixed business functions that own headcount and spend.
// Keep these values stable; they are used as JSON/YAML map keys and CSV columns.
type Team string

const (
	TeamRD        Team = "R&D"
	TeamSales     Team = "Sales"
	TeamMarketing Team = "Marketing"
	TeamCS        Team = "CS"
	TeamOps       Team = "Ops"
)

// AllTeams is the canonical iteration order. Sums over teams always walk this
// slice so float results do not depend on map ordering.
var AllTeams = []Team{TeamRD, TeamSales, TeamMarketing, TeamCS, TeamOps}

func ParseTeam(s string) (Team, error) {
	for _, t := range AllTeams {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown team %q", s)
}

func (t Team) Valid() bool {
	_, err := ParseTeam(string(t))
	return err == nil
}
