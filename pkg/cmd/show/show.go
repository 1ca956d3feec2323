package show

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/cmd/util"
	"github.com/mpapenbr/wrc-timing-go/pkg/config"
	"github.com/mpapenbr/wrc-timing-go/pkg/query"
	"github.com/mpapenbr/wrc-timing-go/pkg/session"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/timing"
)

var raw bool

//nolint:lll,funlen // subcommand table
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "renders stored data as tables",
	}
	cmd.PersistentFlags().Int64Var(&config.EventID, "event", 0, "event id (default: current event)")
	cmd.PersistentFlags().StringVarP(&config.OutputFormat, "output", "o", "table",
		"output format (table, csv, markdown)")
	cmd.PersistentFlags().BoolVar(&raw, "raw", false, "show milliseconds instead of formatted times")

	cmd.AddCommand(
		stageCmd("stage-times", "stage times of a stage", func(ctx context.Context, e *env) (*tabular.Table, error) {
			return e.q.StageTimesPretty(ctx, e.s.State().StageID, e.s.Priority())
		}),
		stageCmd("splits", "split times of a stage (long form)", func(ctx context.Context, e *env) (*tabular.Table, error) {
			return e.q.SplitTimesPretty(ctx, e.s.State().StageID, e.s.Priority())
		}),
		stageCmd("overall", "overall standings after a stage", func(ctx context.Context, e *env) (*tabular.Table, error) {
			return e.q.StageOverallPretty(ctx, e.s.State().StageID, e.s.Priority())
		}),
		stageCmd("changes", "position changes caused by a stage", func(ctx context.Context, e *env) (*tabular.Table, error) {
			return e.q.OverallChanges(ctx, e.s.State().StageID, e.s.Priority())
		}),
		newSectionsCmd(),
		newStartlistCmd(),
		eventCmd("winners", "stage winners of the event", func(ctx context.Context, e *env) (*tabular.Table, error) {
			return e.q.StageWinnersPretty(ctx, e.s.State().EventID)
		}),
		eventCmd("trace", "overall position of each entry after each stage", func(ctx context.Context, e *env) (*tabular.Table, error) {
			return e.q.PositionTrace(ctx, e.s.State().EventID, e.s.Priority())
		}),
		eventCmd("penalties", "penalties of the event", func(ctx context.Context, e *env) (*tabular.Table, error) {
			return e.q.PenaltiesPretty(ctx, e.s.State().EventID)
		}),
		eventCmd("retirements", "retirements of the event", func(ctx context.Context, e *env) (*tabular.Table, error) {
			return e.q.RetirementsPretty(ctx, e.s.State().EventID)
		}),
		eventCmd("shakedown", "best shakedown run per entry", func(ctx context.Context, e *env) (*tabular.Table, error) {
			return e.q.ShakedownPretty(ctx, e.s.State().EventID, e.s.Priority())
		}),
		newStandingsCmd(),
	)
	return cmd
}

type env struct {
	s *session.Session
	q *query.Query
}

type reader func(ctx context.Context, e *env) (*tabular.Table, error)

// withEnv opens store and session. stage is resolved if not empty.
func withEnv(cmd *cobra.Command, stage string, f func(ctx context.Context, e *env) error) error {
	ctx := cmd.Context()
	store, err := util.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("closing store", log.ErrorField(err))
		}
	}()
	p, err := util.LoadPatches()
	if err != nil {
		return err
	}
	s, err := util.NewSession(ctx, store, nil, p)
	if err != nil {
		return err
	}
	if stage != "" {
		s.SetStage(stage)
		if _, err := s.Stage(ctx); err != nil {
			return err
		}
	}
	return f(ctx, &env{s: s, q: query.New(store, query.WithPatches(p))})
}

func output(cmd *cobra.Command, t *tabular.Table, cfg renderConfig) error {
	cfg.format = config.OutputFormat
	cfg.raw = raw
	return render(cmd.OutOrStdout(), t, cfg)
}

func stageCmd(use, short string, read reader) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <code|stageId>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, args[0], func(ctx context.Context, e *env) error {
				t, err := read(ctx, e)
				if err != nil {
					return err
				}
				return output(cmd, t, renderConfig{})
			})
		},
	}
}

func eventCmd(use, short string, read reader) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, "", func(ctx context.Context, e *env) error {
				t, err := read(ctx, e)
				if err != nil {
					return err
				}
				return output(cmd, t, renderConfig{})
			})
		},
	}
}

func newSectionsCmd() *cobra.Command {
	req := query.SectionsRequest{}
	cmd := &cobra.Command{
		Use:   "sections <code|stageId>",
		Short: "time per split section of a stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, args[0], func(ctx context.Context, e *env) error {
				req.StageID = e.s.State().StageID
				req.Priority = e.s.Priority()
				view, err := e.q.SplitSections(ctx, req)
				if err != nil {
					return err
				}
				cfg := renderConfig{
					highlight:      view.Durations.Columns[3:],
					reversePalette: view.ReversePalette,
				}
				parts := []struct {
					title string
					t     *tabular.Table
				}{
					{"section times (s)", view.Durations},
					{"pace (s/km)", view.Pace},
					{"speed (km/h)", view.Speed},
				}
				for _, part := range parts {
					if part.t == nil {
						continue
					}
					fmt.Fprintln(cmd.OutOrStdout(), part.title)
					if err := output(cmd, part.t, cfg); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.RebaseRef, "rebase", "",
		fmt.Sprintf("entry id (or %s) used as reference", timing.UltimateKey))
	cmd.Flags().BoolVar(&req.WithUltimate, "ultimate", false, "add the virtual best competitor")
	cmd.Flags().BoolVar(&req.ReversePalette, "reverse-palette", false, "swap the highlight colors")
	return cmd
}

func newStartlistCmd() *cobra.Command {
	var startListID int64
	cmd := &cobra.Command{
		Use:   "startlist",
		Short: "start order of the event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, "", func(ctx context.Context, e *env) error {
				t, err := e.q.StartlistPretty(ctx, e.s.State().EventID, startListID)
				if err != nil {
					return err
				}
				return output(cmd, t, renderConfig{})
			})
		},
	}
	cmd.Flags().Int64Var(&startListID, "startlist", 0, "startlist id (default: all)")
	return cmd
}

func newStandingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standings [championshipId]",
		Short: "championship standings (default: drivers championship of the selection)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, "", func(ctx context.Context, e *env) error {
				id := e.s.EventRef().ChampionshipID
				if len(args) == 1 {
					var err error
					if id, err = util.ParseID(args[0]); err != nil {
						return err
					}
				}
				t, err := e.q.ChampionshipStandings(ctx, id)
				if err != nil {
					return err
				}
				return output(cmd, t, renderConfig{})
			})
		},
	}
}
