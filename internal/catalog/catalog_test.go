package catalog

import (
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/phrazzld/crossplay/internal/domain"
	"github.com/phrazzld/crossplay/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `[
  {"id": "eiffel", "name": "Eiffel Tower", "width": 125, "height": 330},
  {"id": "bridge", "name": "Golden Gate", "width": 2737},
  {"id": "tower", "name": "CN Tower", "height": 553},
  {"id": "", "name": "No ID", "width": 10},
  {"id": "nameless", "width": 10},
  {"id": "no-metrics", "name": "Nothing"},
  {"id": "negative", "name": "Negative", "width": -3},
  {"id": "bad-axis", "name": "Diagonal", "width": 3, "allowed_axes": ["diagonal"]},
  {"id": "eiffel", "name": "Eiffel Again", "width": 1, "height": 1}
]`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLoad_SkipsInvalidCards(t *testing.T) {
	buf, log, cleanup := logger.SetupTestLogger(t, nil)
	defer cleanup()

	c, err := Load(strings.NewReader(sampleCatalog), log)
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	ids := make([]string, 0, c.Len())
	for _, card := range c.AllCards() {
		ids = append(ids, card.ID)
	}
	assert.Equal(t, []string{"eiffel", "bridge", "tower"}, ids)

	eiffel, ok := c.Card("eiffel")
	require.True(t, ok)
	assert.Equal(t, "Eiffel Tower", eiffel.Name)

	_, ok = c.Card("no-metrics")
	assert.False(t, ok)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	warnings := 0
	for _, e := range entries {
		if e["level"] == "WARN" {
			warnings++
			assert.Equal(t, "card_catalog", e["component"])
		}
	}
	assert.Equal(t, 6, warnings)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := Load(strings.NewReader("not json"), discardLogger())
	assert.Error(t, err)

	_, err = Load(strings.NewReader(`[{"id": "x", "name": "X"}]`), discardLogger())
	assert.ErrorIs(t, err, ErrNoValidCards)

	_, err = Load(strings.NewReader(`[]`), discardLogger())
	assert.ErrorIs(t, err, ErrNoValidCards)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

	c, err := LoadFile(path, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"), discardLogger())
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	c, err := Default(discardLogger())
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 20)
	assert.NotEmpty(t, c.OriginCards())

	for _, card := range c.AllCards() {
		assert.NoError(t, card.Validate(), card.ID)
	}
}

func TestCatalog_Queries(t *testing.T) {
	t.Parallel()

	c, err := Load(strings.NewReader(sampleCatalog), discardLogger())
	require.NoError(t, err)

	origins := c.OriginCards()
	require.Len(t, origins, 1)
	assert.Equal(t, "eiffel", origins[0].ID)

	assert.Len(t, c.CardsForAxis(domain.AxisHorizontal), 2)
	assert.Len(t, c.CardsForAxis(domain.AxisVertical), 2)

	assert.Equal(t, Stats{
		Total:         3,
		OriginCapable: 1,
		Horizontal:    2,
		Vertical:      2,
		WidthOnly:     1,
		HeightOnly:    1,
	}, c.Stats())
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New([]domain.CardDefinition{{ID: "x", Name: "X"}}, nil)
	assert.ErrorIs(t, err, domain.ErrCardNoMetrics)

	_, err = New(nil, nil)
	assert.ErrorIs(t, err, ErrNoValidCards)

	c, err := New([]domain.CardDefinition{{ID: "x", Name: "X", Width: domain.FloatPtr(1)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_ShuffledDeck(t *testing.T) {
	t.Parallel()

	newCat := func(seed int64) *Catalog {
		c, err := Default(discardLogger(), WithRand(rand.New(rand.NewSource(seed))))
		require.NoError(t, err)
		return c
	}

	c := newCat(7)
	deck := c.ShuffledDeck()
	require.Len(t, deck, c.Len())

	// Same cards, possibly different order.
	got := make([]string, 0, len(deck))
	for _, card := range deck {
		got = append(got, card.ID)
	}
	want := make([]string, 0, c.Len())
	for _, card := range c.AllCards() {
		want = append(want, card.ID)
	}
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)

	// The same seed gives the same order.
	a := newCat(99).ShuffledDeck()
	b := newCat(99).ShuffledDeck()
	assert.Equal(t, a, b)

	// Shuffling does not disturb the catalog order.
	assert.Equal(t, newCat(1).AllCards(), c.AllCards())
}

func TestCatalog_DealAndDraw(t *testing.T) {
	t.Parallel()

	cards := []domain.CardDefinition{
		{ID: "c1", Name: "1", Width: domain.FloatPtr(1)},
		{ID: "c2", Name: "2", Width: domain.FloatPtr(2)},
		{ID: "c3", Name: "3", Width: domain.FloatPtr(3)},
		{ID: "c4", Name: "4", Width: domain.FloatPtr(4)},
		{ID: "c5", Name: "5", Width: domain.FloatPtr(5)},
	}
	c, err := New(cards, discardLogger())
	require.NoError(t, err)

	deck := c.AllCards()
	hands := c.Deal(&deck, []string{"alice", "bob"}, 2)

	assert.Equal(t, []string{"c5", "c3"}, ids(hands["alice"]))
	assert.Equal(t, []string{"c4", "c2"}, ids(hands["bob"]))
	require.Len(t, deck, 1)

	card, ok := c.Draw(&deck)
	require.True(t, ok)
	assert.Equal(t, "c1", card.ID)
	assert.Empty(t, deck)

	_, ok = c.Draw(&deck)
	assert.False(t, ok)

	_, ok = c.Draw(nil)
	assert.False(t, ok)

	// Dealing from a short deck gives out what is left.
	short := c.AllCards()[:3]
	hands = c.Deal(&short, []string{"alice", "bob"}, 5)
	assert.Len(t, hands["alice"], 2)
	assert.Len(t, hands["bob"], 1)
	assert.Empty(t, short)
}

func ids(cards []domain.CardDefinition) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}
