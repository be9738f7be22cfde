// Package worker runs one enrichment invocation end to end.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/summons-enricher/internal/model"
	"github.com/sells-group/summons-enricher/internal/reconcile"
	"github.com/sells-group/summons-enricher/internal/store"
	"github.com/sells-group/summons-enricher/internal/trigger"
)

// Stage names used in logs.
const (
	StageNormalize   = "normalize_input"
	StageEligibility = "eligibility_check"
	StagePage        = "extract_page"
	StageDocument    = "extract_document"
	StageReconcile   = "reconcile"
)

// PageExtractor finds the creation timestamp on a linked page.
type PageExtractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

// DocumentExtractor extracts structured fields from a linked document.
type DocumentExtractor interface {
	Extract(ctx context.Context, documentURL string) (*model.DocumentFields, error)
}

// Worker orchestrates normalization, eligibility, extraction and
// reconciliation. It holds no per-invocation state and is safe for
// concurrent use.
type Worker struct {
	store      store.RecordStore
	pages      PageExtractor
	docs       DocumentExtractor
	reconciler *reconcile.Reconciler
}

// Option configures a Worker.
type Option func(*Worker)

// WithReconciler replaces the default reconciler.
func WithReconciler(r *reconcile.Reconciler) Option {
	return func(w *Worker) { w.reconciler = r }
}

// New creates a Worker.
func New(st store.RecordStore, pages PageExtractor, docs DocumentExtractor, opts ...Option) *Worker {
	w := &Worker{
		store:      st,
		pages:      pages,
		docs:       docs,
		reconciler: reconcile.New(0),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Handle normalizes a raw trigger payload and processes it.
func (w *Worker) Handle(ctx context.Context, payload []byte) model.Outcome {
	req, err := trigger.Normalize(payload)
	if err != nil {
		zap.L().Error("worker: invalid input",
			zap.String("stage", StageNormalize),
			zap.Error(err),
		)
		return model.Failure(model.ErrorInput, err.Error())
	}
	return w.Process(ctx, req)
}

// Process enriches the record identified by req. Extraction failures are
// logged and absorbed; only invalid input or a failed read or write of the
// record store fails the invocation. The invocation sets no deadline of its
// own, and store calls do not observe cancellation of ctx.
func (w *Worker) Process(ctx context.Context, req model.EnrichmentRequest) model.Outcome {
	log := zap.L().With(zap.String("summons_id", req.SummonsID))

	if err := trigger.Validate(req); err != nil {
		log.Error("worker: invalid input", zap.String("stage", StageNormalize), zap.Error(err))
		return model.Failure(model.ErrorInput, err.Error())
	}

	start := time.Now()
	storeCtx := context.WithoutCancel(ctx)

	snap, err := w.store.GetSnapshot(storeCtx, req.SummonsID)
	if err != nil {
		log.Error("worker: read record failed", zap.String("stage", StageEligibility), zap.Error(err))
		return model.Failure(model.ErrorPersistence, err.Error())
	}

	decision := reconcile.Decide(req, snap)
	if !decision.Proceed() {
		log.Info("worker: skipped",
			zap.String("stage", StageEligibility),
			zap.String("reason", decision.Reason),
		)
		return model.Skipped(req.SummonsID, decision.Reason)
	}
	if decision.Action == reconcile.ActionHeal {
		log.Info("worker: healing record",
			zap.String("stage", StageEligibility),
			zap.Strings("missing", decision.Missing),
		)
	}

	res := w.extract(ctx, req, log)

	u := w.reconciler.Merge(req, snap, res)
	if u == nil {
		log.Info("worker: nothing extracted", zap.String("stage", StageReconcile))
		return w.success(req, nil, res)
	}

	if err := w.store.ApplyUpdate(storeCtx, req.SummonsID, u); err != nil {
		log.Error("worker: persist update failed",
			zap.String("stage", StageReconcile),
			zap.Strings("fields", u.FieldNames()),
			zap.Error(err),
		)
		return model.Failure(model.ErrorPersistence, err.Error())
	}

	fields := u.FieldNames()
	log.Info("worker: record enriched",
		zap.Strings("fields", fields),
		zap.Duration("elapsed", time.Since(start)),
	)
	return w.success(req, fields, res)
}

// extract runs page and document extraction concurrently. Neither branch
// fails the group, so one branch's retries never cancel the other.
func (w *Worker) extract(ctx context.Context, req model.EnrichmentRequest, log *zap.Logger) reconcile.Results {
	var res reconcile.Results

	g, gCtx := errgroup.WithContext(ctx)

	if req.HasPage() && w.pages != nil {
		g.Go(func() error {
			date, err := w.pages.Extract(gCtx, req.PageURL)
			if err != nil {
				log.Warn("worker: page extraction failed",
					zap.String("stage", StagePage),
					zap.String("url", req.PageURL),
					zap.Error(err),
				)
				return nil
			}
			res.PageDate = &date
			return nil
		})
	}

	if req.HasDocument() && w.docs != nil {
		g.Go(func() error {
			doc, err := w.docs.Extract(gCtx, req.DocumentURL)
			if err != nil {
				log.Warn("worker: document extraction failed",
					zap.String("stage", StageDocument),
					zap.String("url", req.DocumentURL),
					zap.Error(err),
				)
				return nil
			}
			res.Document = doc
			return nil
		})
	}

	// Errors are absorbed per branch.
	_ = g.Wait()
	return res
}

// success reports has_ocr_data only for healing invocations.
func (w *Worker) success(req model.EnrichmentRequest, fields []string, res reconcile.Results) model.Outcome {
	o := model.Success(req.SummonsID, fields, res.Document.HasData())
	if !req.Healing {
		o.Body.HasOCRData = nil
	}
	return o
}
