package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/jobs"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/scheduler"
	"github.com/vytor/flashdeck/internal/session"
)

// SessionView is a snapshot of a study session as returned to clients.
type SessionView struct {
	ID             string            `json:"id"`
	DeckID         int64             `json:"deck_id"`
	Status         string            `json:"status"`
	Config         session.Config    `json:"config"`
	TotalCards     int               `json:"total_cards"`
	CurrentIndex   int               `json:"current_index"`
	CurrentCard    *models.Flashcard `json:"current_card,omitempty"`
	ShowBack       bool              `json:"show_back"`
	CompletedCards int               `json:"completed_cards"`
	CorrectCount   int               `json:"correct_count"`
	WrongCount     int               `json:"wrong_count"`
	CurrentStreak  int               `json:"current_streak"`
	BestStreak     int               `json:"best_streak"`
	Accuracy       float64           `json:"accuracy"`
	Progress       float64           `json:"progress"`
	ElapsedSeconds int64             `json:"elapsed_seconds"`
	Results        []CardResultView  `json:"results"`
}

// CardResultView is one rating of the session log as returned to clients.
type CardResultView struct {
	FlashcardID int64 `json:"flashcard_id"`
	Quality     int   `json:"quality"`
	TimeSpentMs int64 `json:"time_spent_ms"`
}

// RateResult is returned after a rating has been persisted and applied.
// StreakMilestone is set when the card's own correct-in-a-row count reaches
// a multiple of 5.
type RateResult struct {
	Session         SessionView      `json:"session"`
	Card            models.Flashcard `json:"card"`
	StreakMilestone bool             `json:"streak_milestone"`
}

// StudyService runs study sessions over the cards of a deck
type StudyService interface {
	Start(ctx context.Context, deckID int64, cfg session.Config) (*SessionView, error)
	Get(ctx context.Context, id string) (*SessionView, error)
	Flip(ctx context.Context, id string) (*SessionView, error)
	Rate(ctx context.Context, id string, quality int) (*RateResult, error)
	Skip(ctx context.Context, id string) (*SessionView, error)
	End(ctx context.Context, id string) (*SessionView, error)
	Reset(ctx context.Context, id string) error
}

// StudyOption configures a StudyService
type StudyOption func(*studyService)

// WithClock sets the time source used for ratings, timings and due checks.
func WithClock(now func() time.Time) StudyOption {
	return func(s *studyService) { s.now = now }
}

// WithBuilder sets the session builder.
func WithBuilder(b *session.Builder) StudyOption {
	return func(s *studyService) { s.builder = b }
}

// WithDefaults sets the limits applied when a start request leaves them unset.
func WithDefaults(cfg session.Config) StudyOption {
	return func(s *studyService) { s.defaults = cfg }
}

// WithIdleTimeout sets how long an untouched session is kept. Zero keeps
// sessions until they are reset.
func WithIdleTimeout(d time.Duration) StudyOption {
	return func(s *studyService) { s.idleTimeout = d }
}

// WithIDGenerator sets the session id generator.
func WithIDGenerator(gen func() string) StudyOption {
	return func(s *studyService) { s.newID = gen }
}

type studyEntry struct {
	mu         sync.Mutex
	state      session.State
	endedAt    time.Time
	summarized bool
	touched    atomic.Int64
}

type studyService struct {
	decks repository.DeckRepository
	cards repository.FlashcardRepository
	queue jobs.JobQueue

	buildMu     sync.Mutex
	builder     *session.Builder
	defaults    session.Config
	idleTimeout time.Duration
	now         func() time.Time
	newID       func() string

	mu       sync.RWMutex
	sessions map[string]*studyEntry
}

// NewStudyService creates a new StudyService. Session state lives in
// process memory; only ratings and finished-session summaries are persisted.
func NewStudyService(
	decks repository.DeckRepository,
	cards repository.FlashcardRepository,
	queue jobs.JobQueue,
	opts ...StudyOption,
) StudyService {
	s := &studyService{
		decks:    decks,
		cards:    cards,
		queue:    queue,
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*studyEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		s.builder = session.NewBuilder()
		s.builder.Now = s.now
	}
	return s
}

func (s *studyService) Start(ctx context.Context, deckID int64, cfg session.Config) (*SessionView, error) {
	log := logger.FromContext(ctx).WithField("deck_id", deckID)

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewValidationError("config", err.Error())
	}
	cfg = cfg.WithDefaults(s.defaults)

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		log.Error("failed to load flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}

	s.buildMu.Lock()
	queue := s.builder.Build(cards, cfg)
	s.buildMu.Unlock()

	if len(queue) == 0 {
		log.Debug("no cards to study: total=%d, due_only=%v", len(cards), cfg.DueOnly)
		return nil, errors.NewValidationError("deck", "no cards to study")
	}

	now := s.now()
	e := &studyEntry{
		state: session.Reduce(session.State{}, session.Start{
			DeckID: deckID,
			Cards:  queue,
			Config: cfg,
			At:     now,
		}),
	}
	e.touched.Store(now.UnixNano())

	id := s.newID()
	s.mu.Lock()
	s.pruneIdleLocked(ctx, now)
	s.sessions[id] = e
	s.mu.Unlock()

	log.Info("study session started: id=%s, cards=%d of %d", id, len(queue), len(cards))
	view := s.view(id, e)
	return &view, nil
}

func (s *studyService) Get(ctx context.Context, id string) (*SessionView, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	view := s.view(id, e)
	return &view, nil
}

func (s *studyService) Flip(ctx context.Context, id string) (*SessionView, error) {
	return s.dispatch(ctx, id, session.Flip{})
}

func (s *studyService) Skip(ctx context.Context, id string) (*SessionView, error) {
	return s.dispatch(ctx, id, session.Next{At: s.now()})
}

func (s *studyService) End(ctx context.Context, id string) (*SessionView, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = session.Reduce(e.state, session.Complete{})
	s.finish(ctx, id, e)
	view := s.view(id, e)
	return &view, nil
}

// Rate persists the rescheduled card and only then advances the session.
// When the save fails the session stays on the same card so the rating can
// be retried.
func (s *studyService) Rate(ctx context.Context, id string, quality int) (*RateResult, error) {
	log := logger.FromContext(ctx).WithField("session_id", id)

	if !scheduler.ValidQuality(quality) {
		return nil, errors.NewValidationError("quality", "must be between 0 and 5")
	}

	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	card, ok := e.state.CurrentCard()
	if !ok {
		return nil, errors.NewConflictError("session has no card to rate")
	}

	now := s.now()
	updated := scheduler.ApplyReview(card, quality, now)
	log.Debug("applied review: flashcard_id=%d, quality=%d, interval=%.2f, ease=%.2f",
		card.ID, quality, updated.Interval, updated.EaseFactor)

	if err := s.cards.Update(ctx, updated); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("flashcard", card.ID)
		}
		log.Error("failed to save flashcard %d: %v", card.ID, err)
		return nil, errors.NewInternalError(err)
	}

	spent := now.Sub(e.state.CardStartTime)
	e.state = session.Reduce(e.state, session.Rate{Quality: quality, At: now})

	if secs := spent.Seconds(); secs > 0 {
		if err := s.cards.InsertReviewHistory(ctx, card.ID, quality, secs); err != nil {
			log.Warn("failed to store review history: %v", err)
		}
	}

	s.finish(ctx, id, e)
	return &RateResult{
		Session:         s.view(id, e),
		Card:            updated,
		StreakMilestone: scheduler.IsStreakMilestone(updated.Streak),
	}, nil
}

func (s *studyService) Reset(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return errors.NewNotFoundError("session", id)
	}

	e.mu.Lock()
	e.state = session.Reduce(e.state, session.Reset{})
	e.mu.Unlock()

	logger.FromContext(ctx).Debug("study session reset: id=%s", id)
	return nil
}

func (s *studyService) dispatch(ctx context.Context, id string, ev session.Event) (*SessionView, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = session.Reduce(e.state, ev)
	s.finish(ctx, id, e)
	view := s.view(id, e)
	return &view, nil
}

func (s *studyService) lookup(id string) (*studyEntry, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}
	e.touched.Store(s.now().UnixNano())
	return e, nil
}

// finish records the end time and enqueues the summary the first time the
// session is seen completed. Caller holds e.mu.
func (s *studyService) finish(ctx context.Context, id string, e *studyEntry) {
	if !e.state.IsCompleted() || e.summarized {
		return
	}
	e.summarized = true
	e.endedAt = s.now()

	log := logger.FromContext(ctx).WithField("session_id", id)
	log.Info("study session completed: completed=%d/%d, accuracy=%.1f",
		e.state.CompletedCards, len(e.state.Cards), e.state.Accuracy())

	if e.state.CompletedCards == 0 || s.queue == nil {
		return
	}
	if err := s.queue.EnqueueSessionSummary(e.state.Summary(id, e.endedAt)); err != nil {
		log.Warn("failed to enqueue session summary: %v", err)
	}
}

// pruneIdleLocked drops sessions nobody touched within the idle timeout.
// Caller holds s.mu.
func (s *studyService) pruneIdleLocked(ctx context.Context, now time.Time) {
	if s.idleTimeout <= 0 {
		return
	}
	cutoff := now.Add(-s.idleTimeout).UnixNano()
	for id, e := range s.sessions {
		if e.touched.Load() < cutoff {
			delete(s.sessions, id)
			logger.FromContext(ctx).Debug("pruned idle study session: id=%s", id)
		}
	}
}

// view builds a snapshot of e. Caller holds e.mu or owns e exclusively.
func (s *studyService) view(id string, e *studyEntry) SessionView {
	st := e.state
	at := s.now()
	if !e.endedAt.IsZero() {
		at = e.endedAt
	}

	v := SessionView{
		ID:             id,
		DeckID:         st.DeckID,
		Status:         st.Status.String(),
		Config:         st.Config,
		TotalCards:     len(st.Cards),
		CurrentIndex:   st.CurrentIndex,
		ShowBack:       st.ShowBack,
		CompletedCards: st.CompletedCards,
		CorrectCount:   st.CorrectCount,
		WrongCount:     st.WrongCount,
		CurrentStreak:  st.CurrentStreak,
		BestStreak:     st.BestStreak,
		Accuracy:       st.Accuracy(),
		Progress:       st.Progress(),
		ElapsedSeconds: int64(st.ElapsedTime(at) / time.Second),
		Results:        make([]CardResultView, 0, len(st.CardResults)),
	}
	for _, r := range st.CardResults {
		v.Results = append(v.Results, CardResultView{
			FlashcardID: r.FlashcardID,
			Quality:     r.Quality,
			TimeSpentMs: r.TimeSpent.Milliseconds(),
		})
	}
	if card, ok := st.CurrentCard(); ok {
		v.CurrentCard = &card
	}
	return v
}
