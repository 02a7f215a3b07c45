package panels

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/tradequest/tradequest/internal/api"
)

func TestLeaderboardTruncatesLongNamesSafely(t *testing.T) {
	p := NewLeaderboardPanel("user-1")
	p.SetSize(60, 12)
	p.SetEntries([]api.LeaderboardEntry{
		{Rank: 1, UserID: "user-2", Username: "とても長いプレイヤー名前です", TotalValue: 120000},
		{Rank: 2, UserID: "user-1", Username: "alice", TotalValue: 100000},
	})

	view := p.View()
	assert.True(t, utf8.ValidString(view), "rendered rows must not contain split runes")
	assert.Contains(t, view, "alice")
}
