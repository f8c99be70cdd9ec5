package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaminalder/tictactoe-arena/internal/domain"
	"github.com/jaminalder/tictactoe-arena/internal/engine"
)

// Errors exposed by the service layer.
var (
	ErrNotFound    = errors.New("game not found")
	ErrNotYourTurn = errors.New("not your turn")
)

// DefaultAIDelay is how long an AI waits before moving so the previous move
// renders first.
const DefaultAIDelay = 500 * time.Millisecond

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID        string
	Mode      engine.Mode
	Game      domain.Game
	ScoreX    int
	ScoreO    int
	Draws     int
	AIPending bool
	// Event is a one-off status line from a mode start or reset; the next
	// move clears it.
	Event   string
	Created time.Time
	Updated time.Time

	// bumped on every board reset; AI timers from older generations are ignored
	generation uint64
}

// Status returns the line shown above the board.
func (gs GameState) Status() string {
	switch {
	case gs.Game.Over && gs.Game.Winner != domain.Empty:
		return fmt.Sprintf("%s has won!", gs.Game.Winner)
	case gs.Game.Over:
		return "It's a draw!"
	case gs.Event != "":
		return gs.Event
	case gs.AIPending:
		return fmt.Sprintf("%s is thinking...", gs.Game.Turn)
	default:
		return fmt.Sprintf("%s to move", gs.Game.Turn)
	}
}

type subscriber struct {
	ch        chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.ch)
		close(s.done)
	})
}

// Options configures a Service. Zero values pick defaults.
type Options struct {
	// AIDelay defaults to DefaultAIDelay; negative means no delay.
	AIDelay  time.Duration
	Rand     engine.Rand
	Renderer func(GameState) []byte
	// Schedule runs f after d on another goroutine; it must not call f
	// before returning. Defaults to time.AfterFunc.
	Schedule func(d time.Duration, f func())
	Logger   *slog.Logger
}

// Service manages games and subscribers.
type Service struct {
	mu       sync.Mutex
	games    map[string]*GameState
	subs     map[string]map[*subscriber]struct{}
	render   func(GameState) []byte
	selector *engine.Selector
	aiDelay  time.Duration
	schedule func(time.Duration, func())
	log      *slog.Logger
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService() *Service { return New(Options{}) }

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte) *Service {
	return New(Options{Renderer: renderer})
}

// New creates a service from opts.
func New(opts Options) *Service {
	s := &Service{
		games:    make(map[string]*GameState),
		subs:     make(map[string]map[*subscriber]struct{}),
		selector: engine.NewSelector(opts.Rand),
		aiDelay:  opts.AIDelay,
		schedule: opts.Schedule,
		log:      opts.Logger,
	}
	s.SetRenderer(opts.Renderer)
	switch {
	case s.aiDelay == 0:
		s.aiDelay = DefaultAIDelay
	case s.aiDelay < 0:
		s.aiDelay = 0
	}
	if s.schedule == nil {
		s.schedule = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(gs GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame creates and registers a new game in the given mode.
func (s *Service) CreateGame(mode engine.Mode) (*GameState, error) {
	if _, err := engine.ParseMode(string(mode)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	id := uuid.NewString()
	now := time.Now()
	gs := &GameState{ID: id, Mode: mode, Game: domain.New(), Created: now, Updated: now}
	s.games[id] = gs
	s.kickLocked(gs)
	cp := *gs
	s.mu.Unlock()
	s.log.Info("game created", "game", id, "mode", mode)
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// StartMode switches the game to mode with a fresh board and X to move.
func (s *Service) StartMode(id string, mode engine.Mode) (*GameState, error) {
	if _, err := engine.ParseMode(string(mode)); err != nil {
		return nil, err
	}
	return s.update(id, func(gs *GameState) error {
		resetBoard(gs)
		gs.Mode = mode
		gs.Event = fmt.Sprintf("Starting game mode: %s", strings.ToUpper(string(mode)))
		s.kickLocked(gs)
		s.log.Info("mode started", "game", id, "mode", mode)
		return nil
	})
}

// ResetBoard clears the board and keeps mode and scores.
func (s *Service) ResetBoard(id string) (*GameState, error) {
	return s.update(id, func(gs *GameState) error {
		resetBoard(gs)
		s.kickLocked(gs)
		return nil
	})
}

// ResetScore zeroes the scores and clears the board.
func (s *Service) ResetScore(id string) (*GameState, error) {
	return s.update(id, func(gs *GameState) error {
		gs.ScoreX, gs.ScoreO, gs.Draws = 0, 0, 0
		resetBoard(gs)
		s.kickLocked(gs)
		return nil
	})
}

// Play applies a human move at cell idx for the side to move.
func (s *Service) Play(id string, idx int) (*GameState, error) {
	return s.update(id, func(gs *GameState) error {
		if gs.Game.Over {
			return domain.ErrGameOver
		}
		if gs.AIPending || gs.Mode.AIPlays(gs.Game.Turn) {
			return ErrNotYourTurn
		}
		if err := gs.Game.Play(idx); err != nil {
			return err
		}
		s.afterMoveLocked(gs)
		return nil
	})
}

// update runs fn on the stored game under the lock and broadcasts the result
// when fn succeeds.
func (s *Service) update(id string, fn func(gs *GameState) error) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if err := fn(gs); err != nil {
		cp := *gs
		s.mu.Unlock()
		return &cp, err
	}
	gs.Updated = time.Now()
	cp := *gs
	s.fanOutLocked(id, s.render(cp))
	s.mu.Unlock()
	return &cp, nil
}

func (s *Service) aiTurn(id string, generation uint64) {
	_, err := s.update(id, func(gs *GameState) error {
		if gs.generation != generation {
			return errStaleTurn
		}
		gs.AIPending = false
		tier, ok := gs.Mode.Tier()
		if !ok || gs.Game.Over || !gs.Mode.AIPlays(gs.Game.Turn) {
			return nil
		}
		mark := gs.Game.Turn
		idx, err := s.selector.ChooseMove(gs.Game.Board, mark, tier)
		if err != nil {
			return fmt.Errorf("choose move: %w", err)
		}
		if err := gs.Game.Play(idx); err != nil {
			return fmt.Errorf("apply ai move %d: %w", idx, err)
		}
		s.log.Debug("ai moved", "game", id, "mode", gs.Mode, "tier", tier, "mark", mark, "cell", idx)
		s.afterMoveLocked(gs)
		return nil
	})
	switch {
	case err == nil, errors.Is(err, errStaleTurn), errors.Is(err, ErrNotFound):
	default:
		s.log.Error("ai turn failed", "game", id, "err", err)
	}
}

var errStaleTurn = errors.New("stale ai turn")

func (s *Service) afterMoveLocked(gs *GameState) {
	gs.Event = ""
	if gs.Game.Over {
		switch gs.Game.Winner {
		case domain.X:
			gs.ScoreX++
		case domain.O:
			gs.ScoreO++
		default:
			gs.Draws++
		}
		s.log.Info("game over", "game", gs.ID, "mode", gs.Mode, "winner", gs.Game.Winner.String(), "moves", gs.Game.Moves)
		return
	}
	s.kickLocked(gs)
}

// kickLocked schedules an AI move if the AI holds the turn and none is pending.
func (s *Service) kickLocked(gs *GameState) {
	if gs.AIPending || gs.Game.Over || !gs.Mode.AIPlays(gs.Game.Turn) {
		return
	}
	gs.AIPending = true
	id, generation := gs.ID, gs.generation
	s.schedule(s.aiDelay, func() { s.aiTurn(id, generation) })
}

func resetBoard(gs *GameState) {
	gs.Game = domain.New()
	gs.AIPending = false
	gs.Event = "Game Reset. Let's Play!"
	gs.generation++
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1), done: make(chan struct{})}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			sub.close()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			unsub()
		case <-sub.done:
		}
	}()
	return sub.ch, unsub, nil
}

// fanOutLocked delivers payload without blocking; slow subscribers are closed
// and dropped. Sends and closes both happen under s.mu.
func (s *Service) fanOutLocked(id string, payload []byte) {
	set := s.subs[id]
	for sub := range set {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			delete(set, sub)
			s.log.Debug("dropped slow subscriber", "game", id)
		}
	}
}
