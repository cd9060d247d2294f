// Package pipeline drives uploaded files through extraction, mapping,
// validation and persistence, and aggregates per-file outcomes into one
// batch report.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"supplysight/pkg/core/extract"
	"supplysight/pkg/core/mapping"
	"supplysight/pkg/core/schema"
	"supplysight/pkg/core/validate"
	"supplysight/pkg/logger"
)

// UploadFile is one file of an upload submission.
type UploadFile struct {
	Name       string
	SchemaType string
	Content    []byte
}

// OracleMapper is the AI mapping stage. The concrete implementation is
// mapping.Oracle; tests substitute their own.
type OracleMapper interface {
	MapRows(ctx context.Context, def *schema.Definition, table *extract.RawTable) ([]map[string]interface{}, error)
}

// RecordStore persists accepted records. InsertMany is atomic per call and
// independent across calls, so concurrent file pipelines never interfere.
type RecordStore interface {
	InsertMany(ctx context.Context, schemaType string, records []schema.Record) error
}

// OutcomeLog archives finished batch reports. Optional.
type OutcomeLog interface {
	SaveBatch(ctx context.Context, outcome *BatchOutcome) error
}

const persistTimeout = 30 * time.Second

// Orchestrator runs one pipeline instance per file, concurrently, with no
// shared mutable state between files.
type Orchestrator struct {
	oracle OracleMapper
	store  RecordStore
	audit  OutcomeLog
	log    *logger.Logger
}

func New(oracle OracleMapper, store RecordStore, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Orchestrator{oracle: oracle, store: store, log: log}
}

// SetAuditLog enables archiving of batch outcomes.
func (o *Orchestrator) SetAuditLog(audit OutcomeLog) {
	o.audit = audit
}

// Run processes all files of a submission and returns the complete batch
// report. It never returns an error: every failure mode ends up inside a
// FileOutcome instead.
func (o *Orchestrator) Run(ctx context.Context, userID string, files []UploadFile) *BatchOutcome {
	return o.run(ctx, userID, files, true)
}

// Preview runs extraction, mapping and validation but skips persistence,
// so users can review a mapping before committing an import.
func (o *Orchestrator) Preview(ctx context.Context, userID string, files []UploadFile) *BatchOutcome {
	return o.run(ctx, userID, files, false)
}

func (o *Orchestrator) run(ctx context.Context, userID string, files []UploadFile, persist bool) *BatchOutcome {
	batchID := uuid.NewString()
	log := o.log.With("batchId", batchID, "userId", userID)
	log.Info("batch started", "files", len(files), "persist", persist)

	outcomes := make([]FileOutcome, len(files))

	// A plain group, not errgroup.WithContext: one file's failure must
	// not cancel its siblings.
	var g errgroup.Group
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			outcomes[i] = o.processFile(ctx, log, userID, f, persist)
			return nil
		})
	}
	_ = g.Wait()

	outcome := &BatchOutcome{
		BatchID:     batchID,
		UserID:      userID,
		Files:       outcomes,
		Status:      OverallStatus(outcomes),
		CompletedAt: time.Now().UTC(),
	}
	log.Info("batch finished", "status", outcome.Status)

	if persist && o.audit != nil {
		// Archiving is best effort and must not leak into the report.
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		if err := o.audit.SaveBatch(actx, outcome); err != nil {
			log.Warn("batch outcome not archived", "error", err)
		}
	}
	return outcome
}

// processFile walks one file through the per-file state machine:
// Extracted -> Mapped(AI)|Mapped(Fallback) -> Validated -> Persisted|Rejected.
func (o *Orchestrator) processFile(ctx context.Context, log *logger.Logger, userID string, file UploadFile, persist bool) FileOutcome {
	out := FileOutcome{FileName: file.Name, SchemaType: file.SchemaType}
	flog := log.With("file", file.Name, "schemaType", file.SchemaType)

	def, err := schema.Lookup(file.SchemaType)
	if err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
		return out
	}

	table, err := extract.ForFile(file.Name, file.Content).Extract(file.Content)
	if err != nil {
		flog.Warn("extraction failed", "error", err)
		out.Status = StatusFailed
		out.Error = fmt.Sprintf("extraction failed: %v", err)
		return out
	}
	out.RowsExtracted = len(table.Rows)
	if out.RowsExtracted == 0 {
		out.Status = StatusFailed
		out.Error = "no data rows found"
		return out
	}

	records := o.mapRows(ctx, flog, def, table, &out)
	mapping.AttachOwner(records, userID)

	var accepted []schema.Record
	for i, rec := range records {
		res := validate.Check(def, rec)
		if res.OK {
			accepted = append(accepted, rec)
			continue
		}
		out.RecordsRejected++
		for _, reason := range res.Reasons {
			out.RejectionReasons = append(out.RejectionReasons, fmt.Sprintf("row %d: %s", i+1, reason))
		}
	}

	if persist && len(accepted) > 0 {
		// Persistence gets a detached context: a caller hang-up must
		// not leave a file's record set half committed.
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		if err := o.store.InsertMany(pctx, def.Type, accepted); err != nil {
			flog.Error("persistence failed", "records", len(accepted), "error", err)
			out.RecordsAccepted = 0
			out.Status = StatusFailed
			out.Error = fmt.Sprintf("store error: %v", err)
			return out
		}
	}

	out.RecordsAccepted = len(accepted)
	out.Status = fileStatus(out.RecordsAccepted, out.RecordsRejected)
	flog.Info("file processed",
		"status", out.Status,
		"rows", out.RowsExtracted,
		"accepted", out.RecordsAccepted,
		"rejected", out.RecordsRejected,
		"usedFallback", out.UsedFallback,
	)
	return out
}

// mapRows tries the oracle first and substitutes the deterministic
// heuristic mapper when the oracle call or its reply is unusable. Fallback
// engagement is an observability signal, never a user-facing failure.
func (o *Orchestrator) mapRows(ctx context.Context, flog *logger.Logger, def *schema.Definition, table *extract.RawTable, out *FileOutcome) []schema.Record {
	if o.oracle != nil {
		objs, err := o.oracle.MapRows(ctx, def, table)
		if err == nil {
			return mapping.Project(def, objs)
		}
		flog.Warn("oracle mapping unusable, falling back to heuristics", "error", err)
	}
	out.UsedFallback = true
	seq := mapping.NewSequence(sequencePrefix(def.Type))
	return mapping.Fallback(def, table, seq)
}

// sequencePrefix yields e.g. "PRO-1a2b3c4d" so synthetic IDs from
// concurrently processed files stay distinct.
func sequencePrefix(schemaType string) string {
	tag := strings.ToUpper(schemaType)
	if len(tag) > 3 {
		tag = tag[:3]
	}
	return fmt.Sprintf("%s-%s", tag, uuid.NewString()[:8])
}
