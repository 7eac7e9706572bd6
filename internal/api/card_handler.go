package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/crossplay/internal/api/shared"
	"github.com/phrazzld/crossplay/internal/catalog"
	"github.com/phrazzld/crossplay/internal/domain"
)

// CardCatalog is the read side of the card catalog.
type CardCatalog interface {
	AllCards() []domain.CardDefinition
	Card(id string) (domain.CardDefinition, bool)
	OriginCards() []domain.CardDefinition
	CardsForAxis(axis domain.Axis) []domain.CardDefinition
	Stats() catalog.Stats
}

// CardHandler serves the card catalog
type CardHandler struct {
	catalog CardCatalog
	logger  *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cards CardCatalog, logger *slog.Logger) *CardHandler {
	if cards == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("catalog cannot be nil for CardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		catalog: cards,
		logger:  logger.With(slog.String("component", "card_handler")),
	}
}

// ListCards handles GET /cards. An optional ?axis= of origin, horizontal or
// vertical limits the list to cards playable there.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	var cards []domain.CardDefinition

	switch axis := domain.Axis(r.URL.Query().Get("axis")); {
	case axis == "":
		cards = h.catalog.AllCards()
	case axis == domain.AxisOrigin:
		cards = h.catalog.OriginCards()
	case axis.IsArm():
		cards = h.catalog.CardsForAxis(axis)
	default:
		HandleValidationError(w, r, domain.NewValidationError("axis", "must be origin, horizontal or vertical", domain.ErrInvalidAxis))
		return
	}

	if cards == nil {
		cards = []domain.CardDefinition{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CardListResponse{Cards: cards, Count: len(cards)})
}

// GetCard handles GET /cards/{cardID}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := handlePathParam(w, r, "cardID", h.logger)
	if !ok {
		return
	}

	card, found := h.catalog.Card(cardID)
	if !found {
		HandleAPIError(w, r, ErrCardNotFound, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// CardStats handles GET /cards/stats
func (h *CardHandler) CardStats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.catalog.Stats())
}
