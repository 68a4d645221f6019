package game

import "sort"

// LeaderboardEntry represents an identity in the leaderboard
type LeaderboardEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Goals int    `json:"goals"`
	Kicks int    `json:"kicks"`
	IsBot bool   `json:"isBot"`
	Rank  int    `json:"rank"`
}

// Leaderboard ranks the identities of a snapshot by goals, then kicks,
// then name. n <= 0 returns everyone.
func Leaderboard(snap *Snapshot, n int) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(snap.Stats))
	for id, s := range snap.Stats {
		entries = append(entries, LeaderboardEntry{
			ID:    id,
			Name:  snap.Names[id],
			Goals: s.Goals,
			Kicks: s.Kicks,
			IsBot: id == BotID,
		})
	}

	// STABLE SORT by goals, kicks (descending), then by name for consistency
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Goals != entries[j].Goals {
			return entries[i].Goals > entries[j].Goals
		}
		if entries[i].Kicks != entries[j].Kicks {
			return entries[i].Kicks > entries[j].Kicks
		}
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ID < entries[j].ID
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
