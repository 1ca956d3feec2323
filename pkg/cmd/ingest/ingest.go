package ingest

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/cmd/util"
	"github.com/mpapenbr/wrc-timing-go/pkg/config"
	"github.com/mpapenbr/wrc-timing-go/pkg/ingest"
	"github.com/mpapenbr/wrc-timing-go/pkg/patches"
	"github.com/mpapenbr/wrc-timing-go/pkg/repository"
	"github.com/mpapenbr/wrc-timing-go/pkg/session"
)

var force bool

func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "loads upstream data into the store",
	}
	cmd.PersistentFlags().StringVar(&config.Source,
		"source",
		"timing",
		"endpoint family for stage results (timing, results)")
	cmd.PersistentFlags().StringVar(&config.WaitForUpstream,
		"wait-for-upstream",
		"",
		"duration to wait for the upstream to respond (empty: no wait)")

	cmd.AddCommand(
		newSeasonsCmd(),
		newSeasonCmd(),
		newEventCmd(),
		newStageCmd(),
		newLiveCmd(),
		newShakedownCmd(),
		newChampionshipCmd(),
	)
	return cmd
}

type env struct {
	store    *repository.Store
	ingester *ingest.Ingester
	patches  *patches.Patches
	close    func()
}

func setup(ctx context.Context) (*env, error) {
	store, err := util.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	f, err := util.NewFetcher(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	p, err := util.LoadPatches()
	if err != nil {
		f.Close()
		store.Close()
		return nil, err
	}
	return &env{
		store:    store,
		ingester: util.NewIngester(f, store),
		patches:  p,
		close: func() {
			if err := f.Close(); err != nil {
				log.Warn("closing fetcher", log.ErrorField(err))
			}
			if err := store.Close(); err != nil {
				log.Warn("closing store", log.ErrorField(err))
			}
		},
	}, nil
}

// run executes f within an ingest environment and logs the resulting counts
func run(cmd *cobra.Command, f func(ctx context.Context, e *env) (ingest.Counts, error)) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	counts, err := f(ctx, e)
	if err != nil {
		return err
	}
	for _, table := range counts.Tables() {
		log.Info("stored", log.String("table", table), log.Int("rows", counts[table]))
	}
	return nil
}

func (e *env) session(ctx context.Context) (*session.Session, error) {
	return util.NewSession(ctx, e.store, e.ingester, e.patches)
}

func newSeasonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seasons",
		Short: "loads the list of seasons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) (ingest.Counts, error) {
				return e.ingester.Seasons(ctx)
			})
		},
	}
}

func newSeasonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "season [year]",
		Short: "loads championships and calendar of a season",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				year, err := strconv.Atoi(args[0])
				if err != nil {
					return err
				}
				config.Year = year
			}
			return run(cmd, func(ctx context.Context, e *env) (ingest.Counts, error) {
				// the session seeds seasons and season details
				_, err := e.session(ctx)
				if err != nil && !isNoEvent(err) {
					return nil, err
				}
				return ingest.Counts{}, nil
			})
		},
	}
}

func newEventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event [eventId]",
		Short: "loads entries, itinerary and results of an event (default: current event)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := eventArg(args); err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, e *env) (ingest.Counts, error) {
				if config.EventID != 0 {
					_, counts, err := e.ingester.Event(ctx, config.EventID)
					return counts, err
				}
				s, err := e.session(ctx)
				if err != nil {
					return nil, err
				}
				log.Info("using current event", log.Int64("eventId", s.State().EventID))
				return ingest.Counts{}, nil
			})
		},
	}
}

func newStageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stage <code|stageId>",
		Short: "loads stage times, split times and overall standings of a stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) (ingest.Counts, error) {
				s, err := e.session(ctx)
				if err != nil {
					return nil, err
				}
				s.SetStage(args[0])
				ref, err := s.StageRef(ctx)
				if err != nil {
					return nil, err
				}
				return e.ingester.Stage(ctx, ref, force)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "reload even if the stage is final")
	cmd.Flags().Int64Var(&config.EventID, "event", 0, "event id (default: current event)")
	return cmd
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "refreshes all running stages and the results of the event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) (ingest.Counts, error) {
				s, err := e.session(ctx)
				if err != nil {
					return nil, err
				}
				return e.ingester.LiveStages(ctx, s.EventRef(), force)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "reload final stages too")
	cmd.Flags().Int64Var(&config.EventID, "event", 0, "event id (default: current event)")
	return cmd
}

func newShakedownCmd() *cobra.Command {
	var number int
	cmd := &cobra.Command{
		Use:   "shakedown",
		Short: "loads the shakedown runs of the event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) (ingest.Counts, error) {
				s, err := e.session(ctx)
				if err != nil {
					return nil, err
				}
				st := s.State()
				return e.ingester.Shakedown(ctx, st.EventID, st.RallyID, number)
			})
		},
	}
	cmd.Flags().IntVar(&number, "number", 1, "shakedown number")
	cmd.Flags().Int64Var(&config.EventID, "event", 0, "event id (default: current event)")
	return cmd
}

func newChampionshipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "championship <championshipId>",
		Short: "loads entries and results of a championship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, e *env) (ingest.Counts, error) {
				return e.ingester.Championship(ctx, id)
			})
		},
	}
}

func eventArg(args []string) error {
	if len(args) == 0 {
		return nil
	}
	id, err := util.ParseID(args[0])
	if err != nil {
		return err
	}
	config.EventID = id
	return nil
}
