package stats_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/znyiri100/snake-rivals-arena/internal/groups"
	"github.com/znyiri100/snake-rivals-arena/internal/models"
	"github.com/znyiri100/snake-rivals-arena/internal/stats"
	"github.com/znyiri100/snake-rivals-arena/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = gdb.AutoMigrate(&models.User{}, &models.Group{}, &models.GroupMembership{}, &models.ScoreEntry{})
	require.NoError(t, err)

	return gdb
}

func seedScore(t *testing.T, gdb *gorm.DB, username string, score int, mode string, at time.Time) {
	t.Helper()

	entry := models.ScoreEntry{
		Username:  username,
		Score:     score,
		GameMode:  mode,
		CreatedAt: at,
	}
	require.NoError(t, gdb.Create(&entry).Error)
}

func TestSummary(t *testing.T) {
	gdb := newTestDB(t)

	now := time.Now()
	seedScore(t, gdb, "alice", 100, "snake", now.Add(-time.Hour))
	seedScore(t, gdb, "alice", 50, "snake", now.Add(-48*time.Hour))
	seedScore(t, gdb, "bob", 70, "tetris", now.Add(-time.Hour))

	summary, err := stats.GetSummary(gdb, groups.AllUsers())
	require.NoError(t, err)

	require.EqualValues(t, 3, summary.TotalGames)
	require.EqualValues(t, 2, summary.TotalPlayers)
	require.EqualValues(t, 2, summary.RecentGames)
	require.Equal(t, "snake", summary.PopularMode)
}

func TestSummaryEmpty(t *testing.T) {
	gdb := newTestDB(t)

	summary, err := stats.GetSummary(gdb, groups.AllUsers())
	require.NoError(t, err)

	require.EqualValues(t, 0, summary.TotalGames)
	require.EqualValues(t, 0, summary.TotalPlayers)
	require.EqualValues(t, 0, summary.RecentGames)
	require.Equal(t, "None", summary.PopularMode)
}

func TestDistributionBuckets(t *testing.T) {
	gdb := newTestDB(t)

	now := time.Now()
	scores := []int{0, 5, 10, 15, 20, 55, 99, 100}
	for _, score := range scores {
		seedScore(t, gdb, "alice", score, "snake", now)
	}

	buckets, err := stats.GetDistribution(gdb, "snake", groups.AllUsers())
	require.NoError(t, err)
	require.Len(t, buckets, 10)

	total := 0
	for _, bucket := range buckets {
		total += bucket.Count
	}
	require.Equal(t, len(scores), total, "bucket counts must sum to the score count")

	// The maximum lands in the last (closed) bucket.
	require.GreaterOrEqual(t, buckets[9].Count, 1)
}

func TestDistributionSingleValue(t *testing.T) {
	gdb := newTestDB(t)

	now := time.Now()
	seedScore(t, gdb, "alice", 42, "snake", now)
	seedScore(t, gdb, "bob", 42, "snake", now)

	buckets, err := stats.GetDistribution(gdb, "snake", groups.AllUsers())
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	require.Equal(t, "42", buckets[0].Range)
	require.Equal(t, 2, buckets[0].Count)
}

func TestDistributionEmpty(t *testing.T) {
	gdb := newTestDB(t)

	buckets, err := stats.GetDistribution(gdb, "snake", groups.AllUsers())
	require.NoError(t, err)
	require.Empty(t, buckets)
}

func TestDistributionScoped(t *testing.T) {
	gdb := newTestDB(t)

	var group models.Group
	require.NoError(t, gdb.Create(&models.Group{Name: "team-a"}).Error)
	require.NoError(t, gdb.Where("name = ?", "team-a").First(&group).Error)

	user := models.User{Username: "alice", Email: "alice@example.com", Password: "pass"}
	require.NoError(t, gdb.Create(&user).Error)
	require.NoError(t, gdb.Create(&models.GroupMembership{
		UserID: user.ID, GroupID: group.ID, Username: "alice", Email: user.Email,
	}).Error)

	now := time.Now()
	seedScore(t, gdb, "alice", 10, "snake", now)
	seedScore(t, gdb, "outsider", 10, "snake", now)

	buckets, err := stats.GetDistribution(gdb, "snake", groups.ForGroup(group.ID))
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	require.Equal(t, 1, buckets[0].Count)
}

func TestActivityTrendZeroFilled(t *testing.T) {
	gdb := newTestDB(t)

	now := time.Now()
	seedScore(t, gdb, "alice", 10, "snake", now)
	seedScore(t, gdb, "alice", 20, "snake", now.Add(-72*time.Hour))

	series, err := stats.GetActivityTrend(gdb, 7, groups.AllUsers())
	require.NoError(t, err)
	require.Len(t, series, 8, "window is inclusive of today")

	total := 0
	zeros := 0
	for _, day := range series {
		total += day.Games
		if day.Games == 0 {
			zeros++
		}
	}
	require.Equal(t, 2, total)
	require.Equal(t, 6, zeros, "days without entries still appear")
	require.Equal(t, time.Now().Format("2006-01-02"), series[len(series)-1].Date)
}

func TestActivityByModeZeroFillsModes(t *testing.T) {
	gdb := newTestDB(t)

	seedScore(t, gdb, "alice", 10, "snake", time.Now())

	series, err := stats.GetActivityByMode(gdb, 2, groups.AllUsers())
	require.NoError(t, err)
	require.Len(t, series, 3)

	for _, day := range series {
		for _, mode := range types.GameModes {
			_, ok := day.Modes[mode]
			require.True(t, ok, "every configured mode appears every day")
		}
	}

	today := series[len(series)-1]
	require.Equal(t, 1, today.Games)
	require.Equal(t, 1, today.Modes["snake"])
	require.Equal(t, 0, today.Modes["tetris"])
}

func TestActivityByUserSelectsTopK(t *testing.T) {
	gdb := newTestDB(t)

	now := time.Now()
	seedScore(t, gdb, "busy", 10, "snake", now)
	seedScore(t, gdb, "busy", 20, "snake", now)
	seedScore(t, gdb, "busy", 30, "snake", now)
	seedScore(t, gdb, "quiet", 10, "snake", now)

	activity, err := stats.GetActivityByUser(gdb, 7, 1, groups.AllUsers())
	require.NoError(t, err)
	require.Equal(t, []string{"busy"}, activity.Users)
	require.Len(t, activity.Trend, 8)

	today := activity.Trend[len(activity.Trend)-1]
	require.Equal(t, 3, today.Counts["busy"])
	_, ok := today.Counts["quiet"]
	require.False(t, ok, "only selected users get a series")

	for _, day := range activity.Trend {
		_, ok := day.Counts["busy"]
		require.True(t, ok, "selected users are zero-filled on every day")
	}
}

func TestActivityByUserEmpty(t *testing.T) {
	gdb := newTestDB(t)

	activity, err := stats.GetActivityByUser(gdb, 7, 10, groups.AllUsers())
	require.NoError(t, err)
	require.Empty(t, activity.Users)
	require.Empty(t, activity.Trend)
}
