package api_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/crossplay/internal/api"
	"github.com/phrazzld/crossplay/internal/catalog"
	"github.com/phrazzld/crossplay/internal/domain"
	"github.com/phrazzld/crossplay/internal/mocks"
	"github.com/phrazzld/crossplay/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCardRouter(t *testing.T) http.Handler {
	t.Helper()

	log, _ := logger.GetTestLogger(t)
	cat, err := catalog.New(mocks.LandmarkDeck(), log)
	require.NoError(t, err)

	h := api.NewCardHandler(cat, log)
	r := chi.NewRouter()
	r.Route("/cards", func(r chi.Router) {
		r.Get("/", h.ListCards)
		r.Get("/stats", h.CardStats)
		r.Get("/{cardID}", h.GetCard)
	})
	return r
}

func TestCardHandler_ListCards(t *testing.T) {
	h := newCardRouter(t)

	tests := []struct {
		query  string
		status int
		count  int
	}{
		{"", http.StatusOK, 9},
		{"?axis=origin", http.StatusOK, 6},
		{"?axis=horizontal", http.StatusOK, 7},
		{"?axis=vertical", http.StatusOK, 8},
		{"?axis=diagonal", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run("axis"+tt.query, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodGet, "/cards"+tt.query, nil)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			if tt.status != http.StatusOK {
				assert.Equal(t, "Invalid axis: must be origin, horizontal or vertical", errorMessage(t, rr))
				return
			}
			resp := decode[api.CardListResponse](t, rr)
			assert.Equal(t, tt.count, resp.Count)
			assert.Len(t, resp.Cards, tt.count)
		})
	}
}

func TestCardHandler_GetCard(t *testing.T) {
	h := newCardRouter(t)

	rr := doRequest(t, h, http.MethodGet, "/cards/eiffel", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	card := decode[domain.CardDefinition](t, rr)
	assert.Equal(t, "eiffel", card.ID)
	require.NotNil(t, card.Height)
	assert.Equal(t, 330.0, *card.Height)

	rr = doRequest(t, h, http.MethodGet, "/cards/atlantis", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Card not found", errorMessage(t, rr))
}

func TestCardHandler_CardStats(t *testing.T) {
	h := newCardRouter(t)

	rr := doRequest(t, h, http.MethodGet, "/cards/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, catalog.Stats{
		Total:         9,
		OriginCapable: 6,
		Horizontal:    7,
		Vertical:      8,
		WidthOnly:     1,
		HeightOnly:    2,
	}, decode[catalog.Stats](t, rr))
}
