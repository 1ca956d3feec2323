// Package query provides the named reads consumed by the presentation layer.
// Each read returns a single tidy table.
//
//nolint:lll // sql readability
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aarondl/opt/null"
	"github.com/samber/lo"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/model"
	"github.com/mpapenbr/wrc-timing-go/pkg/patches"
	"github.com/mpapenbr/wrc-timing-go/pkg/repository"
	"github.com/mpapenbr/wrc-timing-go/pkg/rules/overall"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/timing"
)

var ErrNotFound = errors.New("not found")

// NoFilter is the priority value that disables the category filter
const NoFilter = "P0"

type Query struct {
	store     *repository.Store
	patches   *patches.Patches
	evaluator *overall.Evaluator
	log       *log.Logger
}

type Option func(*Query)

// WithPatches sets the fallback for missing split point distances
func WithPatches(p *patches.Patches) Option {
	return func(q *Query) {
		q.patches = p
	}
}

// WithEvaluator replaces the default rules for OverallChanges
func WithEvaluator(e *overall.Evaluator) Option {
	return func(q *Query) {
		q.evaluator = e
	}
}

func New(store *repository.Store, opts ...Option) *Query {
	ret := &Query{
		store:     store,
		patches:   patches.Empty(),
		evaluator: overall.NewEvaluator(),
		log:       log.Default().Named("query"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// NormalizePriority maps "", "p0", "P0" to "" (no filter)
func NormalizePriority(p string) string {
	p = strings.ToUpper(strings.TrimSpace(p))
	if p == NoFilter {
		return ""
	}
	return p
}

type entryInfo struct {
	EntryID          int64  `db:"entryId"`
	CarNo            string `db:"carNo"`
	DriverName       string `db:"driverName"`
	CodriverName     string `db:"codriverName"`
	ManufacturerName string `db:"manufacturerName"`
	Priority         string `db:"priority"`
}

const entryInfoQuery = `SELECT e."entryId" AS "entryId", COALESCE(e."identifier",'') AS "carNo",
	COALESCE(d."fullName",'') AS "driverName", COALESCE(c."fullName",'') AS "codriverName",
	COALESCE(m."name",'') AS "manufacturerName", COALESCE(e."priority",'') AS "priority"
	FROM entries e
	LEFT JOIN persons d ON d."personId" = e."driverId"
	LEFT JOIN persons c ON c."personId" = e."codriverId"
	LEFT JOIN manufacturers m ON m."manufacturerId" = e."manufacturerId"
	WHERE e."eventId" = ?`

type entryInfos map[int64]entryInfo

func (q *Query) entries(ctx context.Context, eventID int64) (entryInfos, error) {
	rows, err := repository.Select[entryInfo](ctx, q.store, entryInfoQuery, eventID)
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(rows, func(e entryInfo) (int64, entryInfo) {
		return e.EntryID, e
	}), nil
}

// accept returns the category filter for priority (nil accepts all)
func (e entryInfos) accept(priority string) func(entryID int64) bool {
	p := NormalizePriority(priority)
	if p == "" {
		return nil
	}
	return func(entryID int64) bool {
		info, ok := e[entryID]
		return ok && strings.EqualFold(info.Priority, p)
	}
}

func keep[T any](rows []T, accept func(int64) bool, id func(T) int64) []T {
	if accept == nil {
		return rows
	}
	return lo.Filter(rows, func(r T, _ int) bool { return accept(id(r)) })
}

func (q *Query) stage(ctx context.Context, stageID int64) (model.Stage, error) {
	st, ok, err := q.store.Stage(ctx, stageID)
	if err != nil {
		return st, err
	}
	if !ok {
		return st, fmt.Errorf("stage %d: %w", stageID, ErrNotFound)
	}
	return st, nil
}

type stageInfoRow struct {
	StageID      int64   `db:"stageId"`
	Code         string  `db:"code"`
	Distance     float64 `db:"distance"`
	LegID        int64   `db:"legId"`
	LegOrder     int     `db:"legOrder"`
	SectionID    int64   `db:"sectionId"`
	SectionOrder int     `db:"sectionOrder"`
	Number       int     `db:"number"`
}

const stageInfoQuery = `SELECT st."stageId" AS "stageId", COALESCE(st."code",'') AS "code", COALESCE(st."distance",0) AS "distance",
	COALESCE(l."itineraryLegId",0) AS "legId", COALESCE(l."order",0) AS "legOrder",
	COALESCE(sec."itinerarySectionId",0) AS "sectionId", COALESCE(sec."order",0) AS "sectionOrder",
	COALESCE(st."number",0) AS "number"
	FROM stages st
	LEFT JOIN itinerary_sections sec ON sec."itinerarySectionId" = st."itinerarySectionId"
	LEFT JOIN itinerary_legs l ON l."itineraryLegId" = sec."itineraryLegId"
	WHERE st."eventId" = ?`

// StageInfos locates the stages of the event within the itinerary,
// in chronological order
func (q *Query) StageInfos(ctx context.Context, eventID int64) ([]timing.StageInfo, error) {
	rows, err := repository.Select[stageInfoRow](ctx, q.store, stageInfoQuery, eventID)
	if err != nil {
		return nil, err
	}
	return timing.ChronologicalOrder(lo.Map(rows, func(r stageInfoRow, _ int) timing.StageInfo {
		return timing.StageInfo(r)
	})), nil
}

type roadPosRow struct {
	EntryID int64 `db:"entryId"`
	Order   int64 `db:"order"`
}

// roadPositions maps entries to their start order on the day of the stage
func (q *Query) roadPositions(ctx context.Context, stageID int64) (map[int64]int64, error) {
	rows, err := repository.Select[roadPosRow](ctx, q.store, `SELECT sli."entryId" AS "entryId", COALESCE(sli."order",0) AS "order"
		FROM stages st
		JOIN itinerary_sections sec ON sec."itinerarySectionId" = st."itinerarySectionId"
		JOIN itinerary_legs l ON l."itineraryLegId" = sec."itineraryLegId"
		JOIN startlist_items sli ON sli."startListId" = l."startListId"
		WHERE st."stageId" = ?`, stageID)
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(rows, func(r roadPosRow) (int64, int64) {
		return r.EntryID, r.Order
	}), nil
}

type stageMeta struct {
	Year    int   `db:"year"`
	RallyID int64 `db:"rallyId"`
}

// meta resolves season year and main rally of a stage (needed for patches)
func (q *Query) meta(ctx context.Context, stageID int64) (stageMeta, bool, error) {
	return repository.SelectOne[stageMeta](ctx, q.store, `SELECT COALESCE(s."year",0) AS "year", r."rallyId" AS "rallyId"
		FROM stages st
		JOIN season_rounds ev ON ev."eventId" = st."eventId"
		JOIN seasons s ON s."seasonId" = ev."seasonId"
		JOIN event_rallies r ON r."eventId" = st."eventId"
		WHERE st."stageId" = ? ORDER BY r."isMain" DESC LIMIT 1`, stageID)
}

// cell converts optional values into table cells
func cell[T any](v null.Val[T]) any {
	if x, ok := v.Get(); ok {
		return x
	}
	return nil
}

func diff(a, b null.Val[float64]) null.Val[float64] {
	x, ok1 := a.Get()
	y, ok2 := b.Get()
	if !ok1 || !ok2 {
		return null.Val[float64]{}
	}
	return null.From(timing.Round1(x - y))
}

func secondsOf(ms null.Val[int64]) null.Val[float64] {
	if v, ok := ms.Get(); ok {
		return null.From(timing.MsToSeconds(v))
	}
	return null.Val[float64]{}
}

// without returns t minus the given columns
func without(t *tabular.Table, cols ...string) *tabular.Table {
	return t.Select(lo.Without(t.Columns, cols...)...)
}
