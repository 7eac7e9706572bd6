package game

import (
	"github.com/phrazzld/crossplay/internal/domain"
	"github.com/phrazzld/crossplay/internal/domain/board"
)

// BoardCard is a placed card as shown to players. Metrics stay hidden until
// the board is revealed.
type BoardCard struct {
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Axis        domain.Axis `json:"axis"`
	Orientation string      `json:"orientation"`
	CardID      string      `json:"card_id"`
	Name        string      `json:"name"`
	ImageURL    string      `json:"image_url,omitempty"`
	Width       *float64    `json:"width,omitempty"`
	Height      *float64    `json:"height,omitempty"`
}

// PlayerView is the state of a session from one player's seat. Other
// players' hands are reduced to their sizes.
type PlayerView struct {
	SessionID       string                  `json:"session_id"`
	Status          Status                  `json:"status"`
	Players         []Player                `json:"players"`
	CurrentPlayer   string                  `json:"current_player,omitempty"`
	MyTurn          bool                    `json:"my_turn"`
	Board           []BoardCard             `json:"board"`
	BoardStats      board.Stats             `json:"board_stats"`
	Hand            []domain.CardDefinition `json:"hand"`
	HandSizes       map[string]int          `json:"hand_sizes"`
	DeckCount       int                     `json:"deck_count"`
	InsertionPoints board.InsertionPoints   `json:"insertion_points"`
	Round           int                     `json:"round"`
	Revealed        bool                    `json:"revealed"`
	LastLoser       string                  `json:"last_loser,omitempty"`
	LastReason      string                  `json:"last_reason,omitempty"`
	Metadata        Metadata                `json:"metadata"`
	Settings        Settings                `json:"settings"`
}

// ViewFor builds the view of the session for playerID. An unknown player
// gets the public view with an empty hand.
func (s *Session) ViewFor(playerID string) PlayerView {
	cards := s.board.Cards()
	boardCards := make([]BoardCard, 0, len(cards))
	for _, pc := range cards {
		bc := BoardCard{
			X:           pc.X,
			Y:           pc.Y,
			Axis:        pc.Axis,
			Orientation: pc.Orientation(),
			CardID:      pc.Card.ID,
			Name:        pc.Card.Name,
			ImageURL:    pc.Card.ImageURL,
		}
		if s.revealed {
			bc.Width = pc.Card.Width
			bc.Height = pc.Card.Height
		}
		boardCards = append(boardCards, bc)
	}

	hand, ok := s.Hand(playerID)
	if !ok {
		hand = []domain.CardDefinition{}
	}

	sizes := make(map[string]int, len(s.hands))
	for pid, h := range s.hands {
		sizes[pid] = len(h)
	}

	current := s.CurrentPlayerID()
	return PlayerView{
		SessionID:       s.id,
		Status:          s.status,
		Players:         s.Players(),
		CurrentPlayer:   current,
		MyTurn:          current != "" && current == playerID,
		Board:           boardCards,
		BoardStats:      s.board.Stats(),
		Hand:            hand,
		HandSizes:       sizes,
		DeckCount:       len(s.deck),
		InsertionPoints: s.InsertionPoints(),
		Round:           s.round,
		Revealed:        s.revealed,
		LastLoser:       s.lastLoser,
		LastReason:      s.lastReason,
		Metadata:        s.metadata,
		Settings:        s.settings,
	}
}
