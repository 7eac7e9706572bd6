package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/crossplay/internal/domain"
	"github.com/phrazzld/crossplay/internal/domain/board"
	"github.com/phrazzld/crossplay/internal/domain/game"
	"github.com/phrazzld/crossplay/internal/events"
	"github.com/phrazzld/crossplay/internal/platform/logger"
	"github.com/phrazzld/crossplay/internal/store"
	"golang.org/x/sync/singleflight"
)

// DefaultSessionTTL is how long a session may stay idle when Config leaves it unset.
const DefaultSessionTTL = 30 * time.Minute

// Config holds the registry settings.
type Config struct {
	// Settings are applied to every new session.
	Settings game.Settings

	// SessionTTL is the idle time after which CleanupExpired deletes a session.
	SessionTTL time.Duration

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// SessionSummary describes a session without any player's hand.
type SessionSummary struct {
	ID            string        `json:"id"`
	Name          string        `json:"name,omitempty"`
	CreatedBy     string        `json:"created_by,omitempty"`
	Status        game.Status   `json:"status"`
	Players       []game.Player `json:"players"`
	PlayerCount   int           `json:"player_count"`
	MaxPlayers    int           `json:"max_players"`
	HandSize      int           `json:"hand_size"`
	CurrentPlayer string        `json:"current_player,omitempty"`
	Round         int           `json:"round"`
	DeckCount     int           `json:"deck_count"`
	BoardCards    int           `json:"board_cards"`
	LastLoser     string        `json:"last_loser,omitempty"`
	LastReason    string        `json:"last_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	LastActivity  time.Time     `json:"last_activity"`
}

func summarize(s *game.Session) SessionSummary {
	meta := s.Metadata()
	settings := s.Settings()
	return SessionSummary{
		ID:            s.ID(),
		Name:          meta.Name,
		CreatedBy:     meta.CreatedBy,
		Status:        s.Status(),
		Players:       s.Players(),
		PlayerCount:   s.PlayerCount(),
		MaxPlayers:    settings.MaxPlayers,
		HandSize:      settings.HandSize,
		CurrentPlayer: s.CurrentPlayerID(),
		Round:         s.Round(),
		DeckCount:     s.DeckCount(),
		BoardCards:    s.Board().Len(),
		LastLoser:     s.LastLoser(),
		LastReason:    s.LastReason(),
		CreatedAt:     s.CreatedAt(),
		LastActivity:  s.LastActivity(),
	}
}

// GameService is the session registry: it creates, finds, mutates and
// deletes game sessions.
type GameService interface {
	// CreateSession creates a waiting session. An empty id generates one.
	// Returns ErrSessionExists if the id is taken.
	CreateSession(ctx context.Context, id string, meta game.Metadata) (SessionSummary, error)

	// GetSession returns the summary of a session.
	GetSession(ctx context.Context, id string) (SessionSummary, error)

	// DeleteSession removes a session from memory and the store.
	DeleteSession(ctx context.Context, id string) error

	// ListSessions summarizes every stored session, ordered by ID.
	ListSessions(ctx context.Context) ([]SessionSummary, error)

	AddPlayer(ctx context.Context, sessionID, playerID, name string) (SessionSummary, error)
	RemovePlayer(ctx context.Context, sessionID, playerID string) (SessionSummary, error)
	StartGame(ctx context.Context, sessionID, initiator string) (SessionSummary, error)

	// ExecuteMove plays a card. A rejected move is reported in the result
	// and ends the game; the returned error is reserved for moves that
	// could not be attempted at all.
	ExecuteMove(ctx context.Context, sessionID, playerID, cardID string, point board.InsertionPoint) (game.MoveResult, error)

	InsertionPoints(ctx context.Context, sessionID string) (board.InsertionPoints, error)

	// GameState returns the session as seen by playerID.
	GameState(ctx context.Context, sessionID, playerID string) (game.PlayerView, error)

	RevealCards(ctx context.Context, sessionID string) ([]game.RevealedCard, error)
	StartNewRound(ctx context.Context, sessionID string) (SessionSummary, error)
	EndRound(ctx context.Context, sessionID, loser, reason string) (game.RoundOutcome, error)

	// CleanupExpired deletes sessions idle for longer than the TTL and
	// returns how many were removed.
	CleanupExpired(ctx context.Context) (int, error)
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	store   store.SessionStore
	dealer  game.Dealer
	emitter events.EventEmitter
	config  Config
	logger  *slog.Logger

	cacheMu sync.RWMutex
	cache   map[string]*game.Session

	locks *lockTable
	loads singleflight.Group
}

// NewGameService creates a new GameService.
// It returns an error if any of the required dependencies are nil.
// A nil emitter discards events.
func NewGameService(
	sessionStore store.SessionStore,
	dealer game.Dealer,
	emitter events.EventEmitter,
	config Config,
	logger *slog.Logger,
) (GameService, error) {
	if sessionStore == nil {
		return nil, domain.NewValidationError("sessionStore", "cannot be nil", domain.ErrValidation)
	}
	if dealer == nil {
		return nil, domain.NewValidationError("dealer", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = DefaultSessionTTL
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &gameServiceImpl{
		store:   sessionStore,
		dealer:  dealer,
		emitter: emitter,
		config:  config,
		logger:  logger.With(slog.String("component", "game_service")),
		cache:   make(map[string]*game.Session),
		locks:   newLockTable(),
	}, nil
}

func (s *gameServiceImpl) options(meta game.Metadata) game.Options {
	return game.Options{Settings: s.config.Settings, Metadata: meta, Now: s.config.Now}
}

func (s *gameServiceImpl) cached(id string) (*game.Session, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	sess, ok := s.cache[id]
	return sess, ok
}

func (s *gameServiceImpl) put(sess *game.Session) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache[sess.ID()] = sess
}

func (s *gameServiceImpl) evict(id string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.cache, id)
}

// load returns the session from the cache or restores it from the store.
// Callers hold the session lock.
func (s *gameServiceImpl) load(ctx context.Context, id string) (*game.Session, error) {
	if sess, ok := s.cached(id); ok {
		return sess, nil
	}

	v, err, _ := s.loads.Do(id, func() (interface{}, error) {
		if sess, ok := s.cached(id); ok {
			return sess, nil
		}

		data, err := s.store.Load(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				return nil, ErrSessionNotFound
			}
			return nil, NewServiceError("load", "failed to load session", err)
		}

		var snap game.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
		}
		sess, err := game.Restore(snap, s.dealer, s.options(snap.Metadata))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
		}

		s.put(sess)
		logger.FromContextOrDefault(ctx, s.logger).Debug("session restored from store",
			slog.String("session_id", id),
			slog.String("status", string(sess.Status())))
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*game.Session), nil
}

// save writes the session through to the store. On failure the cached copy
// is evicted.
func (s *gameServiceImpl) save(ctx context.Context, op string, sess *game.Session) error {
	data, err := json.Marshal(sess.Snapshot())
	if err != nil {
		s.evict(sess.ID())
		return NewServiceError(op, "failed to encode session", err)
	}

	if err := s.store.Save(ctx, sess.ID(), data, sess.LastActivity()); err != nil {
		s.evict(sess.ID())
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to persist session, evicted from cache",
			slog.String("error", err.Error()),
			slog.String("session_id", sess.ID()),
			slog.String("operation", op))
		return NewServiceError(op, "failed to persist session", err)
	}
	return nil
}

// mutate runs fn on the session under its write lock and saves the result.
// fn returning an error leaves the session unchanged and nothing is saved.
func (s *gameServiceImpl) mutate(
	ctx context.Context,
	op, id string,
	fn func(sess *game.Session) error,
) (*game.Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(sess); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("operation rejected",
			slog.String("operation", op),
			slog.String("session_id", id),
			slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.save(ctx, op, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// read runs fn on the session under its read lock.
func (s *gameServiceImpl) read(ctx context.Context, id string, fn func(sess *game.Session) error) error {
	unlock := s.locks.rlock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return fn(sess)
}

func (s *gameServiceImpl) emit(ctx context.Context, eventType, sessionID string, payload interface{}) {
	event, err := events.NewGameEvent(eventType, sessionID, payload)
	if err != nil {
		s.logger.Error("failed to build event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("event handler failed",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.String("session_id", sessionID))
	}
}

// CreateSession implements GameService.CreateSession
func (s *gameServiceImpl) CreateSession(ctx context.Context, id string, meta game.Metadata) (SessionSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}

	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.load(ctx, id); err == nil {
		return SessionSummary{}, ErrSessionExists
	} else if !errors.Is(err, ErrSessionNotFound) {
		return SessionSummary{}, err
	}

	sess, err := game.NewSession(id, s.dealer, s.options(meta))
	if err != nil {
		return SessionSummary{}, err
	}
	if err := s.save(ctx, "create", sess); err != nil {
		return SessionSummary{}, err
	}
	s.put(sess)

	summary := summarize(sess)
	log.Info("session created",
		slog.String("session_id", id),
		slog.String("name", meta.Name))
	s.emit(ctx, events.SessionCreated, id, meta)
	return summary, nil
}

// GetSession implements GameService.GetSession
func (s *gameServiceImpl) GetSession(ctx context.Context, id string) (SessionSummary, error) {
	var summary SessionSummary
	err := s.read(ctx, id, func(sess *game.Session) error {
		summary = summarize(sess)
		return nil
	})
	return summary, err
}

// DeleteSession implements GameService.DeleteSession
func (s *gameServiceImpl) DeleteSession(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	_, inCache := s.cached(id)
	if err := s.store.Delete(ctx, id); err != nil {
		if !errors.Is(err, store.ErrSessionNotFound) {
			return NewServiceError("delete", "failed to delete session", err)
		}
		if !inCache {
			return ErrSessionNotFound
		}
	}
	s.evict(id)

	logger.FromContextOrDefault(ctx, s.logger).Info("session deleted", slog.String("session_id", id))
	s.emit(ctx, events.SessionDeleted, id, map[string]string{"reason": "deleted"})
	return nil
}

// ListSessions implements GameService.ListSessions
// Sessions that cannot be restored are skipped with a warning.
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return nil, NewServiceError("list", "failed to list sessions", err)
	}

	summaries := make([]SessionSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := s.GetSession(ctx, id)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				continue
			}
			logger.FromContextOrDefault(ctx, s.logger).Warn("skipping unreadable session",
				slog.String("session_id", id),
				slog.String("error", err.Error()))
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// AddPlayer implements GameService.AddPlayer
func (s *gameServiceImpl) AddPlayer(ctx context.Context, sessionID, playerID, name string) (SessionSummary, error) {
	var summary SessionSummary
	_, err := s.mutate(ctx, "add_player", sessionID, func(sess *game.Session) error {
		if err := sess.AddPlayer(playerID, name); err != nil {
			return err
		}
		summary = summarize(sess)
		return nil
	})
	if err != nil {
		return SessionSummary{}, err
	}

	s.emit(ctx, events.PlayerJoined, sessionID, map[string]string{"player_id": playerID, "name": name})
	return summary, nil
}

// RemovePlayer implements GameService.RemovePlayer
func (s *gameServiceImpl) RemovePlayer(ctx context.Context, sessionID, playerID string) (SessionSummary, error) {
	var summary SessionSummary
	_, err := s.mutate(ctx, "remove_player", sessionID, func(sess *game.Session) error {
		if err := sess.RemovePlayer(playerID); err != nil {
			return err
		}
		summary = summarize(sess)
		return nil
	})
	if err != nil {
		return SessionSummary{}, err
	}

	s.emit(ctx, events.PlayerLeft, sessionID, map[string]string{
		"player_id": playerID,
		"status":    string(summary.Status),
	})
	return summary, nil
}

// StartGame implements GameService.StartGame
func (s *gameServiceImpl) StartGame(ctx context.Context, sessionID, initiator string) (SessionSummary, error) {
	var summary SessionSummary
	_, err := s.mutate(ctx, "start_game", sessionID, func(sess *game.Session) error {
		if err := sess.StartGame(initiator); err != nil {
			return err
		}
		summary = summarize(sess)
		return nil
	})
	if err != nil {
		return SessionSummary{}, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("game started",
		slog.String("session_id", sessionID),
		slog.Int("players", summary.PlayerCount))
	s.emit(ctx, events.GameStarted, sessionID, map[string]interface{}{
		"initiator":      initiator,
		"round":          summary.Round,
		"current_player": summary.CurrentPlayer,
	})
	return summary, nil
}

// ExecuteMove implements GameService.ExecuteMove
func (s *gameServiceImpl) ExecuteMove(
	ctx context.Context,
	sessionID, playerID, cardID string,
	point board.InsertionPoint,
) (game.MoveResult, error) {
	var result game.MoveResult
	_, err := s.mutate(ctx, "execute_move", sessionID, func(sess *game.Session) error {
		res, err := sess.ExecuteMove(playerID, cardID, point)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return game.MoveResult{}, err
	}

	if result.Success {
		s.emit(ctx, events.MoveExecuted, sessionID, map[string]interface{}{
			"player_id":   playerID,
			"card_id":     cardID,
			"point":       result.Point,
			"next_player": result.NextPlayer,
		})
	} else {
		logger.FromContextOrDefault(ctx, s.logger).Info("move rejected, game ended",
			slog.String("session_id", sessionID),
			slog.String("player_id", playerID),
			slog.String("reason", result.Reason))
		s.emit(ctx, events.MoveRejected, sessionID, map[string]interface{}{
			"player_id": playerID,
			"card_id":   cardID,
			"point":     result.Point,
			"reason":    result.Reason,
		})
	}
	return result, nil
}

// InsertionPoints implements GameService.InsertionPoints
func (s *gameServiceImpl) InsertionPoints(ctx context.Context, sessionID string) (board.InsertionPoints, error) {
	var points board.InsertionPoints
	err := s.read(ctx, sessionID, func(sess *game.Session) error {
		points = sess.InsertionPoints()
		return nil
	})
	return points, err
}

// GameState implements GameService.GameState
func (s *gameServiceImpl) GameState(ctx context.Context, sessionID, playerID string) (game.PlayerView, error) {
	var view game.PlayerView
	err := s.read(ctx, sessionID, func(sess *game.Session) error {
		view = sess.ViewFor(playerID)
		return nil
	})
	return view, err
}

// RevealCards implements GameService.RevealCards
func (s *gameServiceImpl) RevealCards(ctx context.Context, sessionID string) ([]game.RevealedCard, error) {
	var revealed []game.RevealedCard
	_, err := s.mutate(ctx, "reveal_cards", sessionID, func(sess *game.Session) error {
		revealed = sess.RevealAllCards()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.CardsRevealed, sessionID, map[string]int{"count": len(revealed)})
	return revealed, nil
}

// StartNewRound implements GameService.StartNewRound
func (s *gameServiceImpl) StartNewRound(ctx context.Context, sessionID string) (SessionSummary, error) {
	var summary SessionSummary
	_, err := s.mutate(ctx, "start_new_round", sessionID, func(sess *game.Session) error {
		if err := sess.StartNewRound(); err != nil {
			return err
		}
		summary = summarize(sess)
		return nil
	})
	if err != nil {
		return SessionSummary{}, err
	}

	s.emit(ctx, events.NewRoundStarted, sessionID, map[string]interface{}{
		"round":          summary.Round,
		"current_player": summary.CurrentPlayer,
	})
	return summary, nil
}

// EndRound implements GameService.EndRound
func (s *gameServiceImpl) EndRound(ctx context.Context, sessionID, loser, reason string) (game.RoundOutcome, error) {
	var outcome game.RoundOutcome
	_, err := s.mutate(ctx, "end_round", sessionID, func(sess *game.Session) error {
		o, err := sess.EndRound(loser, reason)
		if err != nil {
			return err
		}
		outcome = o
		return nil
	})
	if err != nil {
		return game.RoundOutcome{}, err
	}

	s.emit(ctx, events.RoundEnded, sessionID, map[string]string{"loser": loser, "reason": reason})
	return outcome, nil
}

// CleanupExpired implements GameService.CleanupExpired
// Candidates come from the store's idle index and the cache; each is
// re-checked under its lock so a session touched meanwhile survives.
func (s *gameServiceImpl) CleanupExpired(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.config.Now()

	idle, err := s.store.ListIdle(ctx, now.Add(-s.config.SessionTTL))
	if err != nil {
		return 0, NewServiceError("cleanup", "failed to list idle sessions", err)
	}

	candidates := make(map[string]struct{}, len(idle))
	for _, id := range idle {
		candidates[id] = struct{}{}
	}
	s.cacheMu.RLock()
	for id, sess := range s.cache {
		if sess.IsExpired(now, s.config.SessionTTL) {
			candidates[id] = struct{}{}
		}
	}
	s.cacheMu.RUnlock()

	if len(candidates) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	unlock := s.locks.lockAll(ids)
	expired := ids[:0]
	for _, id := range ids {
		if sess, ok := s.cached(id); ok && !sess.IsExpired(now, s.config.SessionTTL) {
			continue
		}
		expired = append(expired, id)
	}

	if len(expired) == 0 {
		unlock()
		return 0, nil
	}

	removed, err := s.store.DeleteMany(ctx, expired)
	if err != nil {
		unlock()
		return 0, NewServiceError("cleanup", "failed to delete idle sessions", err)
	}
	for _, id := range expired {
		s.evict(id)
	}
	unlock()

	for _, id := range expired {
		s.emit(ctx, events.SessionDeleted, id, map[string]string{"reason": "expired"})
	}
	log.Info("expired sessions cleaned up",
		slog.Int("count", len(expired)),
		slog.Int("rows_removed", removed))
	return len(expired), nil
}
