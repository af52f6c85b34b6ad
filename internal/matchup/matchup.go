// Package matchup builds the pool of games a schedule must place: an
// intra-division round robin (optionally doubled and crossed between
// divisions), trimmed or extended until every team holds exactly the
// configured number of games.
package matchup

import (
	"math/rand"
	"sort"

	"github.com/leaguesched/rbrl2/internal/schederr"
)

// Matchup is an unplaced home/away pairing awaiting a slot.
type Matchup struct {
	Division   string
	Home       string
	Away       string
	RoundIndex int // 1-based round-robin round; strict fill and the pool match on it
}

// bye is the round-robin padding sentinel for an odd team count.
const bye = "\x00BYE"

// RoundRobin returns the rounds of a circle-method round robin over teams,
// in playing order. Teams are duplicated across legs by the caller if a
// double round robin is wanted. An odd team count is padded with a bye
// entry; in each round the team drawn against it sits out and no pair is
// produced for it.
func RoundRobin(teams []string) [][][2]string {
	t := make([]string, len(teams))
	copy(t, teams)
	if len(t)%2 == 1 {
		t = append(t, bye)
	}
	n := len(t)
	half := n / 2

	rounds := make([][][2]string, 0, n-1)
	arr := make([]string, n)
	copy(arr, t)
	for r := 0; r < n-1; r++ {
		var pairs [][2]string
		for i := 0; i < half; i++ {
			a, b := arr[i], arr[n-1-i]
			if r%2 == 1 {
				a, b = b, a
			}
			if a != bye && b != bye {
				pairs = append(pairs, [2]string{a, b})
			}
		}
		rounds = append(rounds, pairs)
		// circle method: fix arr[0], rotate the rest
		next := make([]string, n)
		next[0] = arr[0]
		next[1] = arr[n-1]
		copy(next[2:], arr[1:n-1])
		arr = next
	}
	return rounds
}

// GenerateOptions configures pool generation.
type GenerateOptions struct {
	// DivisionTeams maps division name to its team names.
	DivisionTeams map[string][]string
	// DivisionOrder fixes iteration order over DivisionTeams so output is
	// deterministic regardless of map ordering.
	DivisionOrder []string
	// CrossDivision generates one single-leg pairing between every pair
	// of divisions, alternating home/away by index parity.
	CrossDivision bool
	// GamesPerTeam is the target game count every team must end up with.
	GamesPerTeam int
	// Seed drives the deterministic prune-and-sample step.
	Seed int64
}

// Generate builds the full matchup pool: a single intra-division round
// robin per division, an optional cross-division round, then quota-fit to
// GamesPerTeam via AppendReverseLegs followed by PruneToQuota.
func Generate(opts GenerateOptions) ([]Matchup, error) {
	var pool []Matchup
	roundIdx := 1

	for _, div := range opts.DivisionOrder {
		names := make([]string, len(opts.DivisionTeams[div]))
		copy(names, opts.DivisionTeams[div])
		sort.Strings(names)

		rounds := RoundRobin(names)
		for ri, pairs := range rounds {
			for _, p := range pairs {
				pool = append(pool, Matchup{Division: div, Home: p[0], Away: p[1], RoundIndex: ri + 1})
			}
		}
		if len(rounds) > roundIdx {
			roundIdx = len(rounds)
		}
	}

	if opts.CrossDivision && len(opts.DivisionOrder) > 1 {
		for i := 0; i < len(opts.DivisionOrder); i++ {
			for j := i + 1; j < len(opts.DivisionOrder); j++ {
				divA, divB := opts.DivisionOrder[i], opts.DivisionOrder[j]
				label := divA + "x" + divB
				teamsA := opts.DivisionTeams[divA]
				teamsB := opts.DivisionTeams[divB]
				n := 0
				for _, a := range teamsA {
					for _, b := range teamsB {
						if n%2 == 0 {
							pool = append(pool, Matchup{Division: label, Home: a, Away: b, RoundIndex: roundIdx + 1})
						} else {
							pool = append(pool, Matchup{Division: label, Home: b, Away: a, RoundIndex: roundIdx + 1})
						}
						n++
					}
				}
			}
		}
	}

	pool = AppendReverseLegs(pool, opts.GamesPerTeam)
	pool, err := PruneToQuota(pool, opts.GamesPerTeam, opts.Seed)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// AppendReverseLegs cycles through the pool appending home/away-reversed
// duplicates of existing matchups until every team that appears reaches at
// least the target game count. It never invents a pairing that wasn't
// already in the pool.
func AppendReverseLegs(pool []Matchup, gamesPerTeam int) []Matchup {
	if len(pool) == 0 {
		return pool
	}
	count := make(map[string]int)
	for _, m := range pool {
		count[m.Home]++
		count[m.Away]++
	}

	underQuota := func() bool {
		for _, c := range count {
			if c < gamesPerTeam {
				return true
			}
		}
		return false
	}

	i := 0
	basePoolLen := len(pool)
	for underQuota() {
		m := pool[i%basePoolLen]
		rev := Matchup{Division: m.Division, Home: m.Away, Away: m.Home, RoundIndex: m.RoundIndex}
		pool = append(pool, rev)
		count[rev.Home]++
		count[rev.Away]++
		i++
		if i > basePoolLen*1000 {
			// Pathological input (e.g. a team absent from the pool
			// entirely); bail rather than loop forever.
			break
		}
	}
	return pool
}

// PruneToQuota randomly samples the pool with a seeded generator and keeps
// matchups greedily while both endpoints remain under the per-team game
// cap, so every team ends at exactly gamesPerTeam games (or as close as the
// pool allows). Returns an InfeasibleQuota error if n*gamesPerTeam is odd,
// since no pairing of games can make every team's count come out even
// against an odd total.
func PruneToQuota(pool []Matchup, gamesPerTeam int, seed int64) ([]Matchup, error) {
	teams := make(map[string]bool)
	for _, m := range pool {
		teams[m.Home] = true
		teams[m.Away] = true
	}
	if len(teams)*gamesPerTeam%2 != 0 {
		return nil, schederr.NewFeasibilityError(schederr.InfeasibleQuota,
			"%d teams x %d games is odd; no pairing can satisfy every team's quota exactly", len(teams), gamesPerTeam)
	}

	rng := rand.New(rand.NewSource(seed))
	shuffled := make([]Matchup, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	per := make(map[string]int)
	keep := make([]Matchup, 0, len(pool))
	for _, m := range shuffled {
		if per[m.Home] < gamesPerTeam && per[m.Away] < gamesPerTeam {
			keep = append(keep, m)
			per[m.Home]++
			per[m.Away]++
		}
	}
	return keep, nil
}
