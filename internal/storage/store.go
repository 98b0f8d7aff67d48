package storage

import (
	"context"

	"chromatin/internal/model"
)

// Store defines persistence operations for simulation runs and the
// series derived from them.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, record model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	DeleteRun(ctx context.Context, id string) error
	SaveCurve(ctx context.Context, runID, variant string, points []model.CurvePoint) error
	GetCurve(ctx context.Context, runID, variant string) ([]model.CurvePoint, bool, error)
	SaveTrace(ctx context.Context, runID, label string, samples []model.TraceSample) error
	GetTrace(ctx context.Context, runID, label string) ([]model.TraceSample, bool, error)
	SaveDistribution(ctx context.Context, record model.DistributionRecord) error
	GetDistribution(ctx context.Context, runID, variant string) (model.DistributionRecord, bool, error)
}
