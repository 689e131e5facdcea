package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantfoot/pipeline/internal/domain/refdata"
	"github.com/quantfoot/pipeline/internal/platform/logging"
)

type InstrumentMergeConfig struct {
	// InstrumentType is the instrument_type mnemonic assigned to every merged record.
	InstrumentType string
	// StrictSources fails the batch on an unknown source mnemonic instead of dropping the record.
	StrictSources bool
}

// MergeResult reports one merge batch. Success is the only signal callers
// should branch on; the counters are for logs and run records.
type MergeResult struct {
	Success             bool     `json:"success"`
	Received            int      `json:"received"`
	Resolved            int      `json:"resolved"`
	Dropped             int      `json:"dropped"`
	DroppedSources      []string `json:"dropped_sources,omitempty"`
	InstrumentsInserted int      `json:"instruments_inserted"`
	InstrumentsUpdated  int      `json:"instruments_updated"`
	EquitiesInserted    int      `json:"equities_inserted"`
	EquitiesUpdated     int      `json:"equities_updated"`
	MappingsInserted    int      `json:"mappings_inserted"`
}

type InstrumentMergeService struct {
	store  refdata.Store
	cfg    InstrumentMergeConfig
	logger *logging.Logger
}

func NewInstrumentMergeService(store refdata.Store, cfg InstrumentMergeConfig, logger *logging.Logger) *InstrumentMergeService {
	if logger == nil {
		logger = logging.Default()
	}
	cfg.InstrumentType = strings.TrimSpace(cfg.InstrumentType)
	if cfg.InstrumentType == "" {
		cfg.InstrumentType = refdata.DefaultInstrumentType
	}

	return &InstrumentMergeService{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Merge resolves the staged batch and upserts instruments, equities and
// mappings in one transaction. Any error rolls back the whole batch.
func (s *InstrumentMergeService) Merge(ctx context.Context) (MergeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.InstrumentMergeService.Merge")
	defer span.End()

	var result MergeResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx refdata.Tx) error {
		result = MergeResult{}

		records, err := tx.StagedRecords(ctx)
		if err != nil {
			return fmt.Errorf("read staged records: %w", err)
		}
		result.Received = len(records)

		ref, err := tx.LoadReference(ctx, records)
		if err != nil {
			return fmt.Errorf("load reference data: %w", err)
		}

		resolved, err := refdata.Resolve(records, ref, s.cfg.InstrumentType)
		if err != nil {
			return fmt.Errorf("resolve identifiers: %w", err)
		}
		result.Resolved = len(resolved.Resolved)
		result.Dropped = len(resolved.Dropped)
		result.DroppedSources = resolved.DroppedSources()
		if result.Dropped > 0 {
			if s.cfg.StrictSources {
				return fmt.Errorf("%w: %s", refdata.ErrUnknownSource, strings.Join(result.DroppedSources, ","))
			}
			s.logger.WarnContext(ctx, "dropping staged records with unknown source",
				"dropped", result.Dropped,
				"sources", result.DroppedSources,
			)
		}

		upserted, err := s.upsertInstruments(ctx, tx, resolved.Resolved, &result)
		if err != nil {
			return err
		}
		if err := s.upsertEquities(ctx, tx, upserted, &result); err != nil {
			return err
		}
		return s.insertMappings(ctx, tx, upserted, &result)
	})
	if err != nil {
		return MergeResult{Success: false}, fmt.Errorf("merge instruments: %w", err)
	}

	result.Success = true
	s.logger.InfoContext(ctx, "instrument merge committed",
		"received", result.Received,
		"resolved", result.Resolved,
		"dropped", result.Dropped,
		"instruments_inserted", result.InstrumentsInserted,
		"instruments_updated", result.InstrumentsUpdated,
		"equities_inserted", result.EquitiesInserted,
		"equities_updated", result.EquitiesUpdated,
		"mappings_inserted", result.MappingsInserted,
	)
	return result, nil
}

func (s *InstrumentMergeService) upsertInstruments(ctx context.Context, tx refdata.Tx, records []refdata.ResolvedRecord, result *MergeResult) ([]refdata.UpsertedInstrument, error) {
	out := make([]refdata.UpsertedInstrument, 0, len(records))
	for i := range records {
		rec := &records[i]
		id, inserted, err := tx.UpsertInstrument(ctx, rec.InternalInstrumentID, rec.InstrumentFields())
		if err != nil {
			return nil, fmt.Errorf("upsert instrument source=%s external_instrument_id=%s: %w",
				rec.Record.Source, rec.Record.ExternalInstrumentID, err)
		}
		if inserted {
			result.InstrumentsInserted++
		} else {
			result.InstrumentsUpdated++
		}
		out = append(out, refdata.UpsertedInstrument{InstrumentID: id, Inserted: inserted, Source: rec})
	}
	return out, nil
}

func (s *InstrumentMergeService) upsertEquities(ctx context.Context, tx refdata.Tx, upserted []refdata.UpsertedInstrument, result *MergeResult) error {
	for _, item := range upserted {
		inserted, err := tx.UpsertEquity(ctx, item.Source.Equity(item.InstrumentID))
		if err != nil {
			return fmt.Errorf("upsert equity instrument_id=%d: %w", item.InstrumentID, err)
		}
		if inserted {
			result.EquitiesInserted++
		} else {
			result.EquitiesUpdated++
		}
	}
	return nil
}

func (s *InstrumentMergeService) insertMappings(ctx context.Context, tx refdata.Tx, upserted []refdata.UpsertedInstrument, result *MergeResult) error {
	for _, item := range upserted {
		inserted, err := tx.InsertInstrumentMapping(ctx, item.Mapping())
		if err != nil {
			return fmt.Errorf("insert instrument mapping instrument_id=%d: %w", item.InstrumentID, err)
		}
		if inserted {
			result.MappingsInserted++
		}
	}
	return nil
}
