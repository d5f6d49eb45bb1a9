package summary

import (
	"sort"
	"time"

	"github.com/quadline/backend/internal/elo"
	"github.com/quadline/backend/internal/models"
)

// Knobs are the rating parameters. The k factor starts at Ceiling and
// decays as the pair's combined game count grows, never dropping below
// Floor. New players move fast, veterans move slow.
type Knobs struct {
	StartingElo int
	KCeiling    int
	KFloor      int
	KDecay      int
}

// PlayerRank is one row of the leaderboard.
type PlayerRank struct {
	Name string  `json:"name"`
	Elo  float64 `json:"elo"`
	Win  int     `json:"win"`
	Loss int     `json:"loss"`
}

// MatchRecord is one row of the match history.
type MatchRecord struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
	Date   string `json:"date"`
}

// Summary is the full leaderboard document served to clients.
type Summary struct {
	LastHydrated   string        `json:"last_hydrated"`
	OrderedPlayers []PlayerRank  `json:"ordered_players"`
	MatchHistory   []MatchRecord `json:"match_history"`
}

// Tabulate replays the full match history in chronological order and
// produces the leaderboard. Ratings are recomputed from scratch each time;
// an incremental variant is possible but the history is small enough that
// a full replay stays cheap.
func (k Knobs) Tabulate(players []models.Player, matches []models.MatchWithNames) Summary {
	ratings := make(map[string]float64, len(players))
	for _, p := range players {
		ratings[p.Name] = float64(k.StartingElo)
	}
	wins := make(map[string]int)
	losses := make(map[string]int)

	ordered := append([]models.MatchWithNames(nil), matches...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	for _, m := range ordered {
		if _, ok := ratings[m.WinnerName]; !ok {
			ratings[m.WinnerName] = float64(k.StartingElo)
		}
		if _, ok := ratings[m.LoserName]; !ok {
			ratings[m.LoserName] = float64(k.StartingElo)
		}
		wins[m.WinnerName]++
		losses[m.LoserName]++

		// no farming noobs
		decayFactor := (wins[m.WinnerName] + wins[m.LoserName] + losses[m.WinnerName] + losses[m.LoserName]) / k.KDecay
		if decayFactor < 1 {
			decayFactor = 1
		}
		kElo := k.KCeiling / decayFactor
		if kElo < k.KFloor {
			kElo = k.KFloor
		}

		newWinnerElo, newLoserElo := elo.Calculate(ratings[m.WinnerName], ratings[m.LoserName], kElo)
		ratings[m.WinnerName] = float64(newWinnerElo)
		ratings[m.LoserName] = float64(newLoserElo)
	}

	orderedPlayers := make([]PlayerRank, 0, len(ratings))
	for name, score := range ratings {
		orderedPlayers = append(orderedPlayers, PlayerRank{
			Name: name,
			Elo:  score,
			Win:  wins[name],
			Loss: losses[name],
		})
	}
	sort.SliceStable(orderedPlayers, func(i, j int) bool {
		if orderedPlayers[i].Elo != orderedPlayers[j].Elo {
			return orderedPlayers[i].Elo > orderedPlayers[j].Elo
		}
		return orderedPlayers[i].Name < orderedPlayers[j].Name
	})

	history := make([]MatchRecord, 0, len(ordered))
	for _, m := range ordered {
		history = append(history, MatchRecord{
			Winner: m.WinnerName,
			Loser:  m.LoserName,
			Date:   m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date > history[j].Date
	})

	return Summary{
		LastHydrated:   time.Now().UTC().Format(time.RFC3339),
		OrderedPlayers: orderedPlayers,
		MatchHistory:   history,
	}
}
