package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/crossplay/internal/domain"
	"github.com/phrazzld/crossplay/internal/domain/board"
)

// Status is the lifecycle state of a session.
type Status string

// Possible session states
const (
	StatusWaiting    Status = "waiting"
	StatusPlaying    Status = "playing"
	StatusRoundEnded Status = "round_ended"
	StatusEnded      Status = "ended"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusWaiting, StatusPlaying, StatusRoundEnded, StatusEnded:
		return true
	}
	return false
}

// Default session settings
const (
	DefaultMaxPlayers = 8
	DefaultHandSize   = 5
)

// Dealer supplies shuffled decks and performs the deck bookkeeping.
type Dealer interface {
	ShuffledDeck() []domain.CardDefinition
	Deal(deck *[]domain.CardDefinition, playerIDs []string, perPlayer int) map[string][]domain.CardDefinition
	Draw(deck *[]domain.CardDefinition) (domain.CardDefinition, bool)
}

// Player is a participant of a session.
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// Settings are the per-session limits.
type Settings struct {
	MaxPlayers int `json:"max_players"`
	HandSize   int `json:"hand_size"`
}

// DefaultSettings returns the standard limits.
func DefaultSettings() Settings {
	return Settings{MaxPlayers: DefaultMaxPlayers, HandSize: DefaultHandSize}
}

func (s Settings) withDefaults() Settings {
	if s.MaxPlayers <= 0 {
		s.MaxPlayers = DefaultMaxPlayers
	}
	if s.HandSize <= 0 {
		s.HandSize = DefaultHandSize
	}
	return s
}

// Metadata describes a session for listings.
type Metadata struct {
	Name      string `json:"name,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
}

// Options configure a new or restored session.
type Options struct {
	Settings Settings
	Metadata Metadata

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// MoveResult reports the outcome of ExecuteMove.
type MoveResult struct {
	Success    bool                 `json:"success"`
	GameEnded  bool                 `json:"game_ended"`
	Loser      string               `json:"loser,omitempty"`
	Reason     string               `json:"reason,omitempty"`
	Placed     *board.PlacedCard    `json:"placed,omitempty"`
	Point      board.InsertionPoint `json:"point"`
	DrewCard   bool                 `json:"drew_card"`
	NextPlayer string               `json:"next_player,omitempty"`

	// Err holds the rule violation of a rejected move.
	Err error `json:"-"`
}

// RevealedCard exposes both metrics of a placed card.
type RevealedCard struct {
	X      int                   `json:"x"`
	Y      int                   `json:"y"`
	Axis   domain.Axis           `json:"axis"`
	Card   domain.CardDefinition `json:"card"`
	Width  *float64              `json:"width"`
	Height *float64              `json:"height"`
}

// RoundOutcome is returned by EndRound.
type RoundOutcome struct {
	Loser    string         `json:"loser,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	Revealed []RevealedCard `json:"revealed"`
}

// Session is one game: roster, board, deck, hands and lifecycle.
type Session struct {
	id        string
	dealer    Dealer
	now       func() time.Time
	settings  Settings
	metadata  Metadata
	players   []Player
	turnOrder []string
	turnIndex int

	board  *board.Board
	engine *board.Engine
	deck   []domain.CardDefinition
	hands  map[string][]domain.CardDefinition

	round      int
	status     Status
	revealed   bool
	lastLoser  string
	lastReason string

	createdAt    time.Time
	lastActivity time.Time
}

// NewSession creates a session in the waiting state.
func NewSession(id string, dealer Dealer, opts Options) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("session_id", "cannot be empty", domain.ErrValidation)
	}
	if dealer == nil {
		return nil, domain.NewValidationError("dealer", "cannot be nil", domain.ErrValidation)
	}

	s := newSession(id, dealer, opts)
	now := s.now()
	s.createdAt = now
	s.lastActivity = now
	return s, nil
}

func newSession(id string, dealer Dealer, opts Options) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	b := board.New()
	return &Session{
		id:       id,
		dealer:   dealer,
		now:      now,
		settings: opts.Settings.withDefaults(),
		metadata: opts.Metadata,
		board:    b,
		engine:   board.NewEngine(b),
		hands:    make(map[string][]domain.CardDefinition),
		status:   StatusWaiting,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Status returns the lifecycle state.
func (s *Session) Status() Status { return s.status }

// Round returns the round counter; zero before the first game start.
func (s *Session) Round() int { return s.round }

// Revealed reports whether the board metrics have been revealed.
func (s *Session) Revealed() bool { return s.revealed }

// LastLoser returns the player who lost the last round, if any.
func (s *Session) LastLoser() string { return s.lastLoser }

// LastReason returns why the last round ended, if it did.
func (s *Session) LastReason() string { return s.lastReason }

// Settings returns the session limits.
func (s *Session) Settings() Settings { return s.settings }

// Metadata returns the descriptive session data.
func (s *Session) Metadata() Metadata { return s.metadata }

// CreatedAt returns the creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastActivity returns the time of the last state change.
func (s *Session) LastActivity() time.Time { return s.lastActivity }

// Board returns the current board. Callers must not mutate it.
func (s *Session) Board() *board.Board { return s.board }

// TurnIndex returns the index into the turn order of the current player.
func (s *Session) TurnIndex() int { return s.turnIndex }

// DeckCount returns the number of undealt cards.
func (s *Session) DeckCount() int { return len(s.deck) }

// Players returns the roster in join order.
func (s *Session) Players() []Player {
	out := make([]Player, len(s.players))
	copy(out, s.players)
	return out
}

// TurnOrder returns the player IDs in turn order.
func (s *Session) TurnOrder() []string {
	out := make([]string, len(s.turnOrder))
	copy(out, s.turnOrder)
	return out
}

// Hand returns a copy of a player's hand.
func (s *Session) Hand(playerID string) ([]domain.CardDefinition, bool) {
	hand, ok := s.hands[playerID]
	if !ok {
		return nil, false
	}
	out := make([]domain.CardDefinition, len(hand))
	copy(out, hand)
	return out, true
}

// PlayerCount returns the number of players in the roster.
func (s *Session) PlayerCount() int { return len(s.players) }

// HasPlayer reports whether id is in the roster.
func (s *Session) HasPlayer(id string) bool {
	return s.playerIndex(id) >= 0
}

// CurrentPlayerID returns whose turn it is, or "" when no turn order is set.
func (s *Session) CurrentPlayerID() string {
	if len(s.turnOrder) == 0 || s.turnIndex < 0 || s.turnIndex >= len(s.turnOrder) {
		return ""
	}
	return s.turnOrder[s.turnIndex]
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.lastActivity = now
}

// IsExpired reports whether the session has been idle for longer than ttl.
func (s *Session) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.lastActivity) > ttl
}

func (s *Session) touch() {
	s.lastActivity = s.now()
}

func (s *Session) playerIndex(id string) int {
	for i, p := range s.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// AddPlayer adds a player to a waiting session.
func (s *Session) AddPlayer(id, name string) error {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return domain.NewValidationError("player_id", "cannot be empty", domain.ErrValidation)
	}
	if name == "" {
		return domain.NewValidationError("player_name", "cannot be empty", domain.ErrValidation)
	}

	if s.HasPlayer(id) {
		return ErrPlayerExists
	}
	if len(s.players) >= s.settings.MaxPlayers {
		return ErrSessionFull
	}
	if s.status != StatusWaiting {
		return ErrGameInProgress
	}

	s.players = append(s.players, Player{ID: id, Name: name, JoinedAt: s.now()})
	s.touch()
	return nil
}

// RemovePlayer removes a player at any time. The current turn stays with the
// same player when possible. A started game with fewer than two players left
// ends.
func (s *Session) RemovePlayer(id string) error {
	idx := s.playerIndex(id)
	if idx < 0 {
		return ErrPlayerNotFound
	}

	s.players = append(s.players[:idx], s.players[idx+1:]...)
	delete(s.hands, id)

	for i, pid := range s.turnOrder {
		if pid != id {
			continue
		}
		s.turnOrder = append(s.turnOrder[:i], s.turnOrder[i+1:]...)
		if i < s.turnIndex {
			s.turnIndex--
		}
		break
	}
	if s.turnIndex >= len(s.turnOrder) {
		s.turnIndex = 0
	}

	if (s.status == StatusPlaying || s.status == StatusRoundEnded) && len(s.players) < 2 {
		s.status = StatusEnded
		s.lastReason = ErrNotEnoughPlayers.Error()
	}

	s.touch()
	return nil
}

// StartGame deals the first round. The initiator must be in the roster.
func (s *Session) StartGame(initiator string) error {
	if s.status != StatusWaiting {
		return ErrGameInProgress
	}
	if len(s.players) < 2 {
		return ErrNotEnoughPlayers
	}
	if !s.HasPlayer(initiator) {
		return ErrNotAPlayer
	}

	s.turnOrder = make([]string, 0, len(s.players))
	for _, p := range s.players {
		s.turnOrder = append(s.turnOrder, p.ID)
	}
	s.round = 0
	s.dealRound()
	return nil
}

// dealRound resets the board and outcome fields, deals fresh hands and
// starts the next round.
func (s *Session) dealRound() {
	s.board = board.New()
	s.engine = board.NewEngine(s.board)
	s.deck = s.dealer.ShuffledDeck()
	s.hands = s.dealer.Deal(&s.deck, s.turnOrder, s.settings.HandSize)
	if s.hands == nil {
		s.hands = make(map[string][]domain.CardDefinition)
	}
	for _, pid := range s.turnOrder {
		if _, ok := s.hands[pid]; !ok {
			s.hands[pid] = []domain.CardDefinition{}
		}
	}

	s.turnIndex = 0
	s.round++
	s.status = StatusPlaying
	s.revealed = false
	s.lastLoser = ""
	s.lastReason = ""
	s.touch()
}

// InsertionPoints enumerates the legal candidates on the current board.
func (s *Session) InsertionPoints() board.InsertionPoints {
	return s.engine.Enumerate()
}

// ExecuteMove plays cardID from the player's hand at point.
//
// Structural problems (wrong status, wrong turn, unknown card) return an error
// and change nothing. A move the board rejects ends the game with the acting
// player as loser; that is reported in the MoveResult with a nil error.
func (s *Session) ExecuteMove(playerID, cardID string, point board.InsertionPoint) (MoveResult, error) {
	if s.status != StatusPlaying {
		return MoveResult{}, ErrGameNotInProgress
	}
	if s.CurrentPlayerID() != playerID {
		return MoveResult{}, ErrNotYourTurn
	}

	hand, ok := s.hands[playerID]
	if !ok {
		return MoveResult{}, ErrHandNotFound
	}

	cardIdx := -1
	for i, c := range hand {
		if c.ID == cardID {
			cardIdx = i
			break
		}
	}
	if cardIdx < 0 {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrCardNotInHand, cardID)
	}

	res := s.engine.Execute(hand[cardIdx], point)
	if !res.Valid {
		s.status = StatusEnded
		s.lastLoser = playerID
		s.lastReason = res.Reason
		s.touch()
		return MoveResult{
			Success:   false,
			GameEnded: true,
			Loser:     playerID,
			Reason:    res.Reason,
			Point:     point,
			Err:       res.Err,
		}, nil
	}

	hand = append(hand[:cardIdx], hand[cardIdx+1:]...)
	drew := false
	if c, ok := s.dealer.Draw(&s.deck); ok {
		hand = append(hand, c)
		drew = true
	}
	s.hands[playerID] = hand

	s.turnIndex = (s.turnIndex + 1) % len(s.turnOrder)
	s.touch()

	return MoveResult{
		Success:    true,
		Placed:     res.Placed,
		Point:      point,
		DrewCard:   drew,
		NextPlayer: s.CurrentPlayerID(),
	}, nil
}

// RevealAllCards returns both metrics of every placed card and marks the
// board as revealed.
func (s *Session) RevealAllCards() []RevealedCard {
	cards := s.board.Cards()
	out := make([]RevealedCard, 0, len(cards))
	for _, pc := range cards {
		out = append(out, RevealedCard{
			X:      pc.X,
			Y:      pc.Y,
			Axis:   pc.Axis,
			Card:   pc.Card,
			Width:  pc.Card.Width,
			Height: pc.Card.Height,
		})
	}
	s.revealed = true
	s.touch()
	return out
}

// EndRound ends a running round. An empty loser records a round that ended
// without a losing move.
func (s *Session) EndRound(loser, reason string) (RoundOutcome, error) {
	if s.status != StatusPlaying {
		return RoundOutcome{}, ErrGameNotInProgress
	}
	if loser != "" && !s.HasPlayer(loser) {
		return RoundOutcome{}, ErrPlayerNotFound
	}

	s.status = StatusRoundEnded
	s.lastLoser = loser
	s.lastReason = reason

	return RoundOutcome{
		Loser:    loser,
		Reason:   reason,
		Revealed: s.RevealAllCards(),
	}, nil
}

// StartNewRound clears the board and deals new hands after a round ended.
func (s *Session) StartNewRound() error {
	if s.status != StatusRoundEnded {
		return fmt.Errorf("%w: cannot start a new round while %s", ErrInvalidState, s.status)
	}
	if len(s.turnOrder) < 2 {
		return ErrNotEnoughPlayers
	}
	s.dealRound()
	return nil
}
