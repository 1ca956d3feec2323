// Package session holds the current selection (season, event, stage, ...)
// and keeps the store seeded for it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/ingest"
	"github.com/mpapenbr/wrc-timing-go/pkg/model"
	"github.com/mpapenbr/wrc-timing-go/pkg/repository"
	"github.com/mpapenbr/wrc-timing-go/pkg/upstream"
)

var (
	ErrNoSeason     = errors.New("no season selected")
	ErrNoEvent      = errors.New("no event selected")
	ErrUnknownStage = errors.New("unknown stage")
)

// NoCategory disables the category filter
const NoCategory = "P0"

// Seeder loads upstream data into the store. Satisfied by *ingest.Ingester.
type Seeder interface {
	Seasons(ctx context.Context) (ingest.Counts, error)
	Season(ctx context.Context, seasonID int64) (ingest.Counts, error)
	Event(ctx context.Context, eventID int64) (ingest.EventRef, ingest.Counts, error)
}

// State is a snapshot of the selection
type State struct {
	Year         int
	Championship model.Category
	SeasonID     int64
	EventID      int64
	RallyID      int64
	ItineraryID  int64
	StageID      int64
	StageCode    string
	Category     string
}

type Session struct {
	store  *repository.Store
	seeder Seeder
	lookup *model.ChampionshipLookup
	now    func() time.Time
	log    *log.Logger

	state State
	// the stage selection is resolved on first use
	stageSel      string
	stageResolved bool
}

type Option func(*Session)

func WithSeeder(s Seeder) Option {
	return func(x *Session) {
		x.seeder = s
	}
}

func WithLookup(l *model.ChampionshipLookup) Option {
	return func(x *Session) {
		x.lookup = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(x *Session) {
		x.now = now
	}
}

func New(store *repository.Store, opts ...Option) *Session {
	ret := &Session{
		store:  store,
		lookup: model.NewChampionshipLookup(),
		now:    time.Now,
		log:    log.Default().Named("session"),
		state:  State{Championship: model.CategoryWRC, Category: NoCategory},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Lookup() *model.ChampionshipLookup {
	return s.lookup
}

// SetSeason selects the season of year. Event, rally and stage are reset
// and the store is seeded with the rounds and championships of the season.
func (s *Session) SetSeason(ctx context.Context, year int) error {
	season, ok, err := s.store.SeasonByYear(ctx, year)
	if err != nil {
		return err
	}
	if !ok && s.seeder != nil {
		if _, err := s.seeder.Seasons(ctx); err != nil {
			return err
		}
		season, ok, err = s.store.SeasonByYear(ctx, year)
		if err != nil {
			return err
		}
	}
	if !ok {
		return fmt.Errorf("season %d: %w", year, ErrNoSeason)
	}
	s.state = State{
		Year:         year,
		Championship: s.state.Championship,
		SeasonID:     season.SeasonID,
		Category:     s.state.Category,
	}
	s.clearStage()
	if s.seeder != nil {
		if _, err := s.seeder.Season(ctx, season.SeasonID); err != nil {
			return err
		}
	}
	champs, err := s.store.Championships(ctx, season.SeasonID)
	if err != nil {
		return err
	}
	s.lookup.AddFromChampionships(year, champs)
	return nil
}

// SetChampionship selects the championship by its short key
func (s *Session) SetChampionship(c model.Category) {
	s.state.Championship = c
}

// SetCategory sets the priority filter ("P1", "P2", ...).
// Empty or "P0" disables it.
func (s *Session) SetCategory(priority string) {
	p := strings.ToUpper(strings.TrimSpace(priority))
	if p == "" {
		p = NoCategory
	}
	s.state.Category = p
}

// Priority returns the active priority filter, empty means none
func (s *Session) Priority() string {
	if s.state.Category == NoCategory {
		return ""
	}
	return s.state.Category
}

// SetEvent selects the event and resolves its main rally and itinerary.
// With a seeder the event data is loaded into the store first.
func (s *Session) SetEvent(ctx context.Context, eventID int64) error {
	if s.state.EventID == eventID && s.state.RallyID != 0 {
		return nil
	}
	s.state.EventID = eventID
	s.state.RallyID = 0
	s.state.ItineraryID = 0
	s.clearStage()
	if s.seeder != nil {
		ref, _, err := s.seeder.Event(ctx, eventID)
		if err != nil {
			return err
		}
		s.state.RallyID = ref.RallyID
		s.state.ItineraryID = ref.ItineraryID
		return nil
	}
	rallies, err := s.store.Rallies(ctx, eventID)
	if err != nil {
		return err
	}
	if len(rallies) == 0 {
		return fmt.Errorf("event %d has no rally: %w", eventID, ErrNoEvent)
	}
	s.state.RallyID = rallies[0].RallyID
	s.state.ItineraryID = rallies[0].ItineraryID
	return nil
}

// CurrentEvent returns the latest event of the selected season that has
// started by now (at the event location).
func (s *Session) CurrentEvent(ctx context.Context) (model.Event, bool, error) {
	if s.state.SeasonID == 0 {
		return model.Event{}, false, ErrNoSeason
	}
	events, err := s.store.Events(ctx, s.state.SeasonID)
	if err != nil {
		return model.Event{}, false, err
	}
	ev, ok := LatestStarted(events, s.now())
	return ev, ok, nil
}

// LatestStarted picks the event with the latest start date not after now
func LatestStarted(events []model.Event, now time.Time) (model.Event, bool) {
	var (
		best      model.Event
		bestStart time.Time
		found     bool
	)
	for i := range events {
		if !events[i].HasStarted(now) {
			continue
		}
		start, err := events[i].StartTime()
		if err != nil {
			continue
		}
		if !found || start.After(bestStart) {
			best, bestStart, found = events[i], start, true
		}
	}
	return best, found
}

// UseCurrentEvent selects the current event of the season
func (s *Session) UseCurrentEvent(ctx context.Context) error {
	ev, ok, err := s.CurrentEvent(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no started event in season %d: %w", s.state.Year, ErrNoEvent)
	}
	return s.SetEvent(ctx, ev.EventID)
}

// IsLive reports whether the selected event is running right now
func (s *Session) IsLive(ctx context.Context) (bool, error) {
	if s.state.EventID == 0 {
		return false, ErrNoEvent
	}
	ev, ok, err := s.store.Event(ctx, s.state.EventID)
	if err != nil || !ok {
		return false, err
	}
	return ev.IsLive(s.now()), nil
}

// SetStage selects a stage by code ("SS5", "SHD") or numeric id.
// The selection is resolved when the stage is requested.
func (s *Session) SetStage(codeOrID string) {
	sel := strings.TrimSpace(codeOrID)
	if strings.EqualFold(sel, s.stageSel) {
		return
	}
	s.clearStage()
	s.stageSel = sel
}

func (s *Session) SetStageID(id int64) {
	s.SetStage(strconv.FormatInt(id, 10))
}

func (s *Session) clearStage() {
	s.stageSel = ""
	s.stageResolved = false
	s.state.StageID = 0
	s.state.StageCode = ""
}

// Stage resolves the selected stage
func (s *Session) Stage(ctx context.Context) (model.Stage, error) {
	if s.stageSel == "" {
		return model.Stage{}, ErrUnknownStage
	}
	var (
		st  model.Stage
		ok  bool
		err error
	)
	if id, perr := strconv.ParseInt(s.stageSel, 10, 64); perr == nil {
		st, ok, err = s.store.Stage(ctx, id)
	} else {
		if s.state.EventID == 0 {
			return model.Stage{}, ErrNoEvent
		}
		st, ok, err = s.store.StageByCode(ctx, s.state.EventID, s.stageSel)
	}
	if err != nil {
		return model.Stage{}, err
	}
	if !ok {
		return model.Stage{}, fmt.Errorf("%q: %w", s.stageSel, ErrUnknownStage)
	}
	if !s.stageResolved {
		s.log.Debug("stage resolved",
			log.String("selection", s.stageSel), log.Int64("stageId", st.StageID))
	}
	s.stageResolved = true
	s.state.StageID = st.StageID
	s.state.StageCode = st.Code
	if s.state.EventID == 0 {
		s.state.EventID = st.EventID
	}
	return st, nil
}

// StageRef builds the upstream parameters of the selected stage
func (s *Session) StageRef(ctx context.Context) (upstream.StageRef, error) {
	st, err := s.Stage(ctx)
	if err != nil {
		return upstream.StageRef{}, err
	}
	ref := s.EventRef()
	ref.StageID = st.StageID
	return ref, nil
}

// EventRef is StageRef without stage, used for the event scoped endpoints
func (s *Session) EventRef() upstream.StageRef {
	ref := upstream.StageRef{
		Year:         s.state.Year,
		EventID:      s.state.EventID,
		RallyID:      s.state.RallyID,
		Championship: string(s.state.Championship),
	}
	if id, ok := s.lookup.Drivers(s.state.Year, s.state.Championship); ok {
		ref.ChampionshipID = id
	}
	return ref
}
