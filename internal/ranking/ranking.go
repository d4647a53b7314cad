// Package ranking derives leaderboard rankings from the score ledger. Nothing
// here is cached: every call recomputes from the current rows, with standard
// competition ranking (ties share a rank, the next distinct score skips the
// tie size) computed by the database's RANK() window function.
package ranking

import (
	"sort"
	"time"

	"github.com/znyiri100/snake-rivals-arena/internal/groups"
	"gorm.io/gorm"
)

type RankedScore struct {
	ID        uint              `json:"id"`
	Username  string            `json:"username"`
	UserID    *uint             `json:"-"`
	Score     int               `json:"score"`
	GameMode  string            `json:"game_mode"`
	Rank      int               `json:"rank"`
	Timestamp time.Time         `json:"timestamp"`
	Groups    []groups.GroupRef `json:"groups" gorm:"-"`
}

type UserModeRank struct {
	Username    string            `json:"username"`
	UserID      *uint             `json:"-"`
	GameMode    string            `json:"game_mode"`
	BestScore   int               `json:"best_score"`
	GamesPlayed int               `json:"games_played"`
	Rank        int               `json:"rank"`
	Groups      []groups.GroupRef `json:"groups" gorm:"-"`
}

type OverallRanking struct {
	Username        string            `json:"username"`
	ModesPlayed     int               `json:"modes_played"`
	TotalBestScores int               `json:"total_best_scores"`
	AvgRank         float64           `json:"avg_rank"`
	OverallRank     int               `json:"overall_rank"`
	ModeRanks       map[string]int    `json:"mode_ranks"`
	Groups          []groups.GroupRef `json:"groups"`
}

const (
	SortByRank      = "rank"
	SortByTimestamp = "timestamp"
)

// AllScores ranks every ledger row by score descending. Ranks are computed
// within each game mode, which collapses to a single global ranking when a
// mode filter narrows the rows to one mode.
func AllScores(db *gorm.DB, gameMode string, scope groups.Scope, username string, sortBy string) ([]RankedScore, error) {
	scoped, empty, err := scopedUsernames(db, scope)
	if err != nil {
		return nil, err
	}
	if empty {
		return []RankedScore{}, nil
	}

	query := `
		SELECT id, username, user_id, score, game_mode, created_at AS timestamp,
		       RANK() OVER (PARTITION BY game_mode ORDER BY score DESC) AS rank
		FROM score_entries`

	where, args := buildFilters(gameMode, scoped, username)
	query += where

	if sortBy == SortByTimestamp {
		query += " ORDER BY created_at DESC, id DESC"
	} else {
		query += " ORDER BY game_mode ASC, rank ASC, id ASC"
	}

	var rows []RankedScore

	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []RankedScore{}
	}

	attribution, err := attributionFor(db, rankedScoreOwners(rows))
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].Groups = attribution.For(rows[i].UserID, rows[i].Username)
	}

	return rows, nil
}

// BestPerUser reduces the ledger to each user's best score and attempt count
// per game mode, then ranks the reduced rows per mode.
func BestPerUser(db *gorm.DB, gameMode string, scope groups.Scope) ([]UserModeRank, error) {
	scoped, empty, err := scopedUsernames(db, scope)
	if err != nil {
		return nil, err
	}
	if empty {
		return []UserModeRank{}, nil
	}

	query := `
		WITH best AS (
			SELECT username, game_mode,
			       MAX(score) AS best_score,
			       COUNT(*) AS games_played,
			       MAX(user_id) AS user_id
			FROM score_entries`

	where, args := buildFilters(gameMode, scoped, "")
	query += where

	query += `
			GROUP BY username, game_mode
		)
		SELECT username, user_id, game_mode, best_score, games_played,
		       RANK() OVER (PARTITION BY game_mode ORDER BY best_score DESC) AS rank
		FROM best
		ORDER BY game_mode ASC, rank ASC, username ASC`

	var rows []UserModeRank

	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []UserModeRank{}
	}

	attribution, err := attributionFor(db, userModeRankOwners(rows))
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].Groups = attribution.For(rows[i].UserID, rows[i].Username)
	}

	return rows, nil
}

// TopNPerMode keeps the rows ranked n or better in every mode. The cutoff is
// rank-based, so a tie at the boundary is kept whole even when that yields
// more than n rows.
func TopNPerMode(db *gorm.DB, n int, scope groups.Scope) (map[string][]UserModeRank, error) {
	rows, err := BestPerUser(db, "", scope)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]UserModeRank)

	for _, row := range rows {
		if row.Rank > n {
			continue
		}
		result[row.GameMode] = append(result[row.GameMode], row)
	}

	return result, nil
}

// Overall averages each user's per-mode best ranks across the modes they
// actually played and orders users by that average. Unlike the per-mode ranks
// it is built from, the final overall rank is strictly positional (1, 2, 3,
// no tie sharing).
func Overall(db *gorm.DB, scope groups.Scope) ([]OverallRanking, error) {
	rows, err := BestPerUser(db, "", scope)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*OverallRanking)

	for _, row := range rows {
		entry, ok := byUser[row.Username]
		if !ok {
			entry = &OverallRanking{
				Username:  row.Username,
				ModeRanks: make(map[string]int),
				Groups:    row.Groups,
			}
			byUser[row.Username] = entry
		}

		entry.ModesPlayed++
		entry.TotalBestScores += row.BestScore
		entry.ModeRanks[row.GameMode] = row.Rank
	}

	result := make([]OverallRanking, 0, len(byUser))

	for _, entry := range byUser {
		var sum int
		for _, rank := range entry.ModeRanks {
			sum += rank
		}
		entry.AvgRank = float64(sum) / float64(entry.ModesPlayed)
		result = append(result, *entry)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].AvgRank != result[j].AvgRank {
			return result[i].AvgRank < result[j].AvgRank
		}
		return result[i].Username < result[j].Username
	})

	for i := range result {
		result[i].OverallRank = i + 1
	}

	return result, nil
}

// scopedUsernames resolves the scope to a username filter. empty means the
// scoped group has no members and the caller should return no rows at all.
func scopedUsernames(db *gorm.DB, scope groups.Scope) ([]string, bool, error) {
	usernames, err := groups.UsernamesInScope(db, scope)
	if err != nil {
		return nil, false, err
	}
	if !scope.All && len(usernames) == 0 {
		return nil, true, nil
	}
	return usernames, false, nil
}

func buildFilters(gameMode string, scoped []string, username string) (string, []interface{}) {
	where := " WHERE 1=1"
	var args []interface{}

	if gameMode != "" {
		where += " AND game_mode = ?"
		args = append(args, gameMode)
	}

	if scoped != nil {
		where += " AND username IN ?"
		args = append(args, scoped)
	}

	if username != "" {
		where += " AND username = ?"
		args = append(args, username)
	}

	return where, args
}

type rowOwners struct {
	userIDs   []uint
	usernames []string
}

func rankedScoreOwners(rows []RankedScore) rowOwners {
	var owners rowOwners
	for _, row := range rows {
		owners.add(row.UserID, row.Username)
	}
	return owners
}

func userModeRankOwners(rows []UserModeRank) rowOwners {
	var owners rowOwners
	for _, row := range rows {
		owners.add(row.UserID, row.Username)
	}
	return owners
}

func (o *rowOwners) add(userID *uint, username string) {
	if userID != nil {
		o.userIDs = append(o.userIDs, *userID)
	}
	o.usernames = append(o.usernames, username)
}

func attributionFor(db *gorm.DB, owners rowOwners) (groups.Attribution, error) {
	return groups.LookupGroups(db, owners.userIDs, owners.usernames)
}
