// Package catalog loads the immutable card definitions and performs the deck
// bookkeeping used by game sessions: shuffling, dealing and drawing.
package catalog

import (
	_ "embed"

	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/crossplay/internal/domain"
)

//go:embed cards.json
var defaultCards []byte

// ErrNoValidCards is returned when a catalog source yields no usable card.
var ErrNoValidCards = errors.New("catalog contains no valid cards")

var validate = validator.New()

// cardRecord is the on-disk card format.
type cardRecord struct {
	ID          string         `json:"id"           validate:"required"`
	Name        string         `json:"name"         validate:"required"`
	Width       *float64       `json:"width"        validate:"omitempty,gt=0"`
	Height      *float64       `json:"height"       validate:"omitempty,gt=0"`
	ImageURL    string         `json:"image_url"`
	AllowedAxes []string       `json:"allowed_axes" validate:"omitempty,dive,oneof=horizontal vertical"`
	Metadata    map[string]any `json:"metadata"`
}

func (r cardRecord) toDefinition() domain.CardDefinition {
	axes := make([]domain.Axis, 0, len(r.AllowedAxes))
	for _, a := range r.AllowedAxes {
		axes = append(axes, domain.Axis(a))
	}
	return domain.CardDefinition{
		ID:          r.ID,
		Name:        r.Name,
		Width:       r.Width,
		Height:      r.Height,
		ImageURL:    r.ImageURL,
		AllowedAxes: axes,
		Metadata:    r.Metadata,
	}
}

// Stats summarizes the catalog.
type Stats struct {
	Total         int `json:"total"`
	OriginCapable int `json:"origin_capable"`
	Horizontal    int `json:"horizontal"`
	Vertical      int `json:"vertical"`
	WidthOnly     int `json:"width_only"`
	HeightOnly    int `json:"height_only"`
}

// Catalog holds the card definitions. It is safe for concurrent use.
type Catalog struct {
	cards  []domain.CardDefinition
	byID   map[string]domain.CardDefinition
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(c *Catalog) {
		c.rng = r
	}
}

// Default loads the catalog bundled with the binary.
func Default(logger *slog.Logger, opts ...Option) (*Catalog, error) {
	return Load(bytes.NewReader(defaultCards), logger, opts...)
}

// LoadFile loads a catalog from a JSON file.
func LoadFile(path string, logger *slog.Logger, opts ...Option) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return Load(f, logger, opts...)
}

// Load reads a JSON array of cards. Invalid records are logged and skipped.
func Load(r io.Reader, logger *slog.Logger, opts ...Option) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "card_catalog"))

	var records []cardRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode card catalog: %w", err)
	}

	cards := make([]domain.CardDefinition, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		if err := validate.Struct(rec); err != nil {
			log.Warn("skipping invalid card",
				slog.Int("index", i),
				slog.String("card_id", rec.ID),
				slog.String("error", err.Error()))
			continue
		}

		def := rec.toDefinition()
		if err := def.Validate(); err != nil {
			log.Warn("skipping invalid card",
				slog.Int("index", i),
				slog.String("card_id", rec.ID),
				slog.String("error", err.Error()))
			continue
		}

		if seen[def.ID] {
			log.Warn("skipping duplicate card", slog.String("card_id", def.ID))
			continue
		}
		seen[def.ID] = true
		cards = append(cards, def)
	}

	c, err := newCatalog(cards, log, opts...)
	if err != nil {
		return nil, err
	}

	log.Info("card catalog loaded",
		slog.Int("valid_cards", len(cards)),
		slog.Int("skipped_cards", len(records)-len(cards)))
	return c, nil
}

// New builds a catalog from definitions that are already in memory.
func New(cards []domain.CardDefinition, logger *slog.Logger, opts ...Option) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid card %q: %w", c.ID, err)
		}
	}
	return newCatalog(cards, logger.With(slog.String("component", "card_catalog")), opts...)
}

func newCatalog(cards []domain.CardDefinition, logger *slog.Logger, opts ...Option) (*Catalog, error) {
	if len(cards) == 0 {
		return nil, ErrNoValidCards
	}

	c := &Catalog{
		cards:  cards,
		byID:   make(map[string]domain.CardDefinition, len(cards)),
		logger: logger,
	}
	for _, card := range cards {
		c.byID[card.ID] = card
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c, nil
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// AllCards returns a copy of every card in catalog order.
func (c *Catalog) AllCards() []domain.CardDefinition {
	out := make([]domain.CardDefinition, len(c.cards))
	copy(out, c.cards)
	return out
}

// Card looks up a card by ID.
func (c *Catalog) Card(id string) (domain.CardDefinition, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// OriginCards returns the cards that can start a board.
func (c *Catalog) OriginCards() []domain.CardDefinition {
	var out []domain.CardDefinition
	for _, card := range c.cards {
		if card.CanBeOrigin() {
			out = append(out, card)
		}
	}
	return out
}

// CardsForAxis returns the cards carrying the metric of an arm.
func (c *Catalog) CardsForAxis(axis domain.Axis) []domain.CardDefinition {
	var out []domain.CardDefinition
	for _, card := range c.cards {
		if card.HasMetric(axis) {
			out = append(out, card)
		}
	}
	return out
}

// Stats counts cards by capability.
func (c *Catalog) Stats() Stats {
	s := Stats{Total: len(c.cards)}
	for _, card := range c.cards {
		hasW, hasH := card.Width != nil, card.Height != nil
		if hasW {
			s.Horizontal++
		}
		if hasH {
			s.Vertical++
		}
		switch {
		case hasW && hasH:
			s.OriginCapable++
		case hasW:
			s.WidthOnly++
		case hasH:
			s.HeightOnly++
		}
	}
	return s
}

// ShuffledDeck returns every card in a uniformly random order.
func (c *Catalog) ShuffledDeck() []domain.CardDefinition {
	deck := c.AllCards()

	c.mu.Lock()
	for i := len(deck) - 1; i > 0; i-- {
		j := c.rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	c.mu.Unlock()

	c.logger.Debug("created shuffled deck", slog.Int("cards", len(deck)))
	return deck
}

// Deal hands out perPlayer cards to each player round-robin, popping from
// the end of deck. Players get fewer cards when the deck runs out.
func (c *Catalog) Deal(deck *[]domain.CardDefinition, playerIDs []string, perPlayer int) map[string][]domain.CardDefinition {
	hands := make(map[string][]domain.CardDefinition, len(playerIDs))
	for _, pid := range playerIDs {
		hands[pid] = make([]domain.CardDefinition, 0, perPlayer)
	}

	for i := 0; i < perPlayer; i++ {
		for _, pid := range playerIDs {
			card, ok := c.Draw(deck)
			if !ok {
				break
			}
			hands[pid] = append(hands[pid], card)
		}
	}

	c.logger.Debug("dealt cards",
		slog.Int("players", len(playerIDs)),
		slog.Int("per_player", perPlayer),
		slog.Int("deck_remaining", len(*deck)))
	return hands
}

// Draw pops the last card of deck. It reports false on an empty deck.
func (c *Catalog) Draw(deck *[]domain.CardDefinition) (domain.CardDefinition, bool) {
	if deck == nil || len(*deck) == 0 {
		return domain.CardDefinition{}, false
	}
	last := len(*deck) - 1
	card := (*deck)[last]
	*deck = (*deck)[:last]
	return card, true
}
