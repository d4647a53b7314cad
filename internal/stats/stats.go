// Package stats produces the aggregate views behind the leaderboard dashboard:
// summary counters, score distribution histograms and day-bucketed activity
// series. Every function degrades to empty output on no data instead of
// erroring, and honors the same group scope as the ranking queries.
package stats

import (
	"fmt"
	"strconv"
	"time"

	"github.com/znyiri100/snake-rivals-arena/internal/groups"
	"github.com/znyiri100/snake-rivals-arena/internal/models"
	"github.com/znyiri100/snake-rivals-arena/internal/types"
	"gorm.io/gorm"
)

const (
	DefaultTrendDays = 30
	DefaultTopUsers  = 10
	bucketCount      = 10
)

type Summary struct {
	TotalGames   int64  `json:"total_games"`
	TotalPlayers int64  `json:"total_players"`
	RecentGames  int64  `json:"recent_games"`
	PopularMode  string `json:"popular_mode"`
}

type Bucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type DayCount struct {
	Date  string `json:"date"`
	Games int    `json:"games"`
}

type DayModeCount struct {
	Date  string         `json:"date"`
	Games int            `json:"games"`
	Modes map[string]int `json:"modes"`
}

type DayUserCount struct {
	Date   string         `json:"date"`
	Counts map[string]int `json:"counts"`
}

type UserActivity struct {
	Users []string       `json:"users"`
	Trend []DayUserCount `json:"trend"`
}

// GetSummary reports total score count, distinct player count, entries in the
// last 24 hours and the most played game mode within the scope.
func GetSummary(db *gorm.DB, scope groups.Scope) (Summary, error) {
	summary := Summary{PopularMode: "None"}

	scoped, empty, err := scopedUsernames(db, scope)
	if err != nil {
		return summary, err
	}
	if empty {
		return summary, nil
	}

	newQuery := func() *gorm.DB {
		query := db.Model(&models.ScoreEntry{})
		if scoped != nil {
			query = query.Where("username IN ?", scoped)
		}
		return query
	}

	if err := newQuery().Count(&summary.TotalGames).Error; err != nil {
		return summary, err
	}

	if err := newQuery().Distinct("username").Count(&summary.TotalPlayers).Error; err != nil {
		return summary, err
	}

	since := time.Now().Add(-24 * time.Hour)

	if err := newQuery().Where("created_at >= ?", since).Count(&summary.RecentGames).Error; err != nil {
		return summary, err
	}

	var popular struct {
		GameMode string
		Cnt      int64
	}

	err = newQuery().
		Select("game_mode, COUNT(*) AS cnt").
		Group("game_mode").
		Order("cnt DESC").
		Limit(1).
		Scan(&popular).Error

	if err != nil {
		return summary, err
	}

	if popular.GameMode != "" {
		summary.PopularMode = popular.GameMode
	}

	return summary, nil
}

// GetDistribution partitions the in-scope scores of one game mode into ten
// equal-width buckets spanning [min, max]. Buckets are half-open except the
// last, which is closed to absorb the maximum. A single-valued score set
// collapses to one bucket labeled with that value.
func GetDistribution(db *gorm.DB, gameMode string, scope groups.Scope) ([]Bucket, error) {
	scoped, empty, err := scopedUsernames(db, scope)
	if err != nil {
		return nil, err
	}
	if empty {
		return []Bucket{}, nil
	}

	query := db.Model(&models.ScoreEntry{}).Where("game_mode = ?", gameMode)
	if scoped != nil {
		query = query.Where("username IN ?", scoped)
	}

	var scores []int

	if err := query.Pluck("score", &scores).Error; err != nil {
		return nil, err
	}

	if len(scores) == 0 {
		return []Bucket{}, nil
	}

	minScore, maxScore := scores[0], scores[0]
	for _, score := range scores {
		if score < minScore {
			minScore = score
		}
		if score > maxScore {
			maxScore = score
		}
	}

	if minScore == maxScore {
		return []Bucket{{Range: strconv.Itoa(minScore), Count: len(scores)}}, nil
	}

	width := float64(maxScore-minScore) / bucketCount

	buckets := make([]Bucket, bucketCount)
	for i := range buckets {
		lo := float64(minScore) + width*float64(i)
		buckets[i].Range = fmt.Sprintf("%.0f-%.0f", lo, lo+width)
	}

	for _, score := range scores {
		idx := int(float64(score-minScore) / width)
		if idx >= bucketCount {
			idx = bucketCount - 1
		}
		buckets[idx].Count++
	}

	return buckets, nil
}

// GetActivityTrend counts entries per calendar day over the trailing window.
// Every day appears in the series, zero or not.
func GetActivityTrend(db *gorm.DB, days int, scope groups.Scope) ([]DayCount, error) {
	start, dates := trendWindow(days)

	perDay := make(map[string]int)

	entries, err := windowEntries(db, start, scope, nil)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		perDay[dayKey(entry.CreatedAt)]++
	}

	series := make([]DayCount, len(dates))
	for i, date := range dates {
		series[i] = DayCount{Date: date, Games: perDay[date]}
	}

	return series, nil
}

// GetActivityByMode is the activity trend broken out per game-mode tag, with
// every configured mode zero-filled on every day.
func GetActivityByMode(db *gorm.DB, days int, scope groups.Scope) ([]DayModeCount, error) {
	start, dates := trendWindow(days)

	perDay := make(map[string]map[string]int)

	entries, err := windowEntries(db, start, scope, nil)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		key := dayKey(entry.CreatedAt)
		if perDay[key] == nil {
			perDay[key] = make(map[string]int)
		}
		perDay[key][entry.GameMode]++
	}

	series := make([]DayModeCount, len(dates))

	for i, date := range dates {
		day := DayModeCount{Date: date, Modes: make(map[string]int)}
		for _, mode := range types.GameModes {
			day.Modes[mode] = 0
		}
		for mode, count := range perDay[date] {
			day.Modes[mode] = count
			day.Games += count
		}
		series[i] = day
	}

	return series, nil
}

// GetActivityByUser selects the top-K most active usernames inside the window
// and emits a zero-filled daily series for those users only.
func GetActivityByUser(db *gorm.DB, days int, topK int, scope groups.Scope) (UserActivity, error) {
	start, dates := trendWindow(days)

	activity := UserActivity{Users: []string{}, Trend: []DayUserCount{}}

	scoped, empty, err := scopedUsernames(db, scope)
	if err != nil {
		return activity, err
	}
	if empty {
		return activity, nil
	}

	topQuery := db.Model(&models.ScoreEntry{}).Where("created_at >= ?", start)
	if scoped != nil {
		topQuery = topQuery.Where("username IN ?", scoped)
	}

	var top []struct {
		Username string
		Cnt      int64
	}

	err = topQuery.
		Select("username, COUNT(*) AS cnt").
		Group("username").
		Order("cnt DESC").
		Limit(topK).
		Scan(&top).Error

	if err != nil {
		return activity, err
	}

	if len(top) == 0 {
		return activity, nil
	}

	for _, row := range top {
		activity.Users = append(activity.Users, row.Username)
	}

	entries, err := windowEntries(db, start, groups.AllUsers(), activity.Users)
	if err != nil {
		return activity, err
	}

	perDay := make(map[string]map[string]int)

	for _, entry := range entries {
		key := dayKey(entry.CreatedAt)
		if perDay[key] == nil {
			perDay[key] = make(map[string]int)
		}
		perDay[key][entry.Username]++
	}

	for _, date := range dates {
		day := DayUserCount{Date: date, Counts: make(map[string]int)}
		for _, username := range activity.Users {
			day.Counts[username] = perDay[date][username]
		}
		activity.Trend = append(activity.Trend, day)
	}

	return activity, nil
}

// trendWindow truncates to server-local days: the window runs from N days ago
// through today inclusive, N+1 dates total.
func trendWindow(days int) (time.Time, []string) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -days)

	dates := make([]string, 0, days+1)
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		dates = append(dates, dayKey(d))
	}

	return start, dates
}

func dayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

func windowEntries(db *gorm.DB, start time.Time, scope groups.Scope, usernames []string) ([]models.ScoreEntry, error) {
	scoped, empty, err := scopedUsernames(db, scope)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}

	query := db.Model(&models.ScoreEntry{}).
		Select("username", "game_mode", "created_at").
		Where("created_at >= ?", start)

	if scoped != nil {
		query = query.Where("username IN ?", scoped)
	}
	if usernames != nil {
		query = query.Where("username IN ?", usernames)
	}

	var entries []models.ScoreEntry

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

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
