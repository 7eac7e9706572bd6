package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/crossplay/internal/domain"
	"github.com/phrazzld/crossplay/internal/domain/board"
)

// SnapshotVersion is the current snapshot schema version.
const SnapshotVersion = 1

// Snapshot is the durable form of a session.
type Snapshot struct {
	Version      int                                `json:"version"`
	ID           string                             `json:"id"`
	Players      []Player                           `json:"players"`
	TurnOrder    []string                           `json:"turn_order"`
	TurnIndex    int                                `json:"turn_index"`
	Board        []SnapshotCard                     `json:"board"`
	Deck         []domain.CardDefinition            `json:"deck"`
	Hands        map[string][]domain.CardDefinition `json:"hands"`
	Status       Status                             `json:"status"`
	Round        int                                `json:"round"`
	Revealed     bool                               `json:"revealed"`
	LastLoser    string                             `json:"last_loser,omitempty"`
	LastReason   string                             `json:"last_reason,omitempty"`
	CreatedAt    time.Time                          `json:"created_at"`
	LastActivity time.Time                          `json:"last_activity"`
	Settings     Settings                           `json:"settings"`
	Metadata     Metadata                           `json:"metadata"`
}

// SnapshotCard is a placed card in a snapshot.
type SnapshotCard struct {
	Card domain.CardDefinition `json:"card"`
	X    int                   `json:"x"`
	Y    int                   `json:"y"`
	Axis domain.Axis           `json:"axis"`
}

// Snapshot captures the full session state.
func (s *Session) Snapshot() Snapshot {
	cards := s.board.Cards()
	placed := make([]SnapshotCard, 0, len(cards))
	for _, pc := range cards {
		placed = append(placed, SnapshotCard{Card: pc.Card, X: pc.X, Y: pc.Y, Axis: pc.Axis})
	}

	hands := make(map[string][]domain.CardDefinition, len(s.hands))
	for pid := range s.hands {
		hands[pid], _ = s.Hand(pid)
	}

	deck := make([]domain.CardDefinition, len(s.deck))
	copy(deck, s.deck)

	return Snapshot{
		Version:      SnapshotVersion,
		ID:           s.id,
		Players:      s.Players(),
		TurnOrder:    s.TurnOrder(),
		TurnIndex:    s.turnIndex,
		Board:        placed,
		Deck:         deck,
		Hands:        hands,
		Status:       s.status,
		Round:        s.round,
		Revealed:     s.revealed,
		LastLoser:    s.lastLoser,
		LastReason:   s.lastReason,
		CreatedAt:    s.createdAt,
		LastActivity: s.lastActivity,
		Settings:     s.settings,
		Metadata:     s.metadata,
	}
}

// Restore rebuilds a session from a snapshot. The board's ordering is
// re-checked; a snapshot that breaks it is rejected. Settings and metadata
// come from the snapshot; only the clock is taken from opts.
func Restore(snap Snapshot, dealer Dealer, opts Options) (*Session, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}
	if strings.TrimSpace(snap.ID) == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidSnapshot)
	}
	if dealer == nil {
		return nil, domain.NewValidationError("dealer", "cannot be nil", domain.ErrValidation)
	}
	if !snap.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidSnapshot, snap.Status)
	}
	if len(snap.TurnOrder) > 0 && (snap.TurnIndex < 0 || snap.TurnIndex >= len(snap.TurnOrder)) {
		return nil, fmt.Errorf("%w: turn index %d out of range", ErrInvalidSnapshot, snap.TurnIndex)
	}

	s := newSession(snap.ID, dealer, Options{
		Settings: snap.Settings,
		Metadata: snap.Metadata,
		Now:      opts.Now,
	})

	roster := make(map[string]bool, len(snap.Players))
	for _, p := range snap.Players {
		roster[p.ID] = true
	}
	for _, pid := range snap.TurnOrder {
		if !roster[pid] {
			return nil, fmt.Errorf("%w: turn order references unknown player %q", ErrInvalidSnapshot, pid)
		}
	}

	for _, sc := range snap.Board {
		if s.board.Occupied(sc.X, sc.Y) {
			return nil, fmt.Errorf("%w: duplicate card at (%d,%d)", ErrInvalidSnapshot, sc.X, sc.Y)
		}
		s.board.Place(sc.Card, sc.X, sc.Y, sc.Axis)
	}
	if err := s.board.CheckOrder(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, board.Reason(err))
	}

	s.players = append([]Player(nil), snap.Players...)
	s.turnOrder = append([]string(nil), snap.TurnOrder...)
	s.turnIndex = snap.TurnIndex
	s.deck = append([]domain.CardDefinition(nil), snap.Deck...)
	for pid, hand := range snap.Hands {
		s.hands[pid] = append([]domain.CardDefinition{}, hand...)
	}
	s.status = snap.Status
	s.round = snap.Round
	s.revealed = snap.Revealed
	s.lastLoser = snap.LastLoser
	s.lastReason = snap.LastReason
	s.createdAt = snap.CreatedAt
	s.lastActivity = snap.LastActivity

	return s, nil
}
