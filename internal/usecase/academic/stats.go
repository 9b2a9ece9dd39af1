package academic

import (
	"context"
	"errors"

	"academictoken/internal/domain/curriculum"
	"academictoken/internal/domain/engine"
	"academictoken/internal/domain/equivalence"
	"academictoken/internal/errs"
	"academictoken/internal/ports"
)

var equivalenceStatuses = []equivalence.Status{
	equivalence.StatusPending,
	equivalence.StatusAnalyzing,
	equivalence.StatusUnderReview,
	equivalence.StatusApproved,
	equivalence.StatusRejected,
}

type Stats struct {
	Initialized      bool
	Engine           engine.State
	Records          ports.RecordCounts
	ContentDocuments int
}

// Dump is a debug listing of the engine's global records.
type Dump struct {
	Stats           Stats
	Equivalences    []equivalence.Equivalence
	Curricula       []curriculum.Requirements
	ContentLocators []string
}

// Stats aggregates record counts with the engine counters. An uninitialized
// engine is reported, not treated as an error.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if err := s.queryReady(ctx); err != nil {
		return Stats{}, err
	}
	if s.state == nil {
		return Stats{}, errStateRequired
	}

	var out Stats
	state, err := s.state.GetState(ctx)
	switch {
	case err == nil:
		out.Initialized = true
		out.Engine = state
	case !errors.Is(err, engine.ErrNotInitialized):
		return Stats{}, err
	}

	counts, err := s.repo.CountRecords(ctx)
	if err != nil {
		return Stats{}, err
	}
	out.Records = counts

	locators, err := s.contentLocators(ctx)
	if err != nil {
		return Stats{}, err
	}
	out.ContentDocuments = len(locators)
	return out, nil
}

// Dump lists up to limit equivalences per status, curricula and cached locators.
func (s *Service) Dump(ctx context.Context, limit int) (Dump, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return Dump{}, err
	}
	page := ports.Page{Limit: limit}.Clamp()

	out := Dump{
		Stats:        stats,
		Equivalences: []equivalence.Equivalence{},
	}
	for _, status := range equivalenceStatuses {
		items, err := s.repo.ListEquivalencesByStatus(ctx, status, page)
		if err != nil {
			return Dump{}, err
		}
		out.Equivalences = append(out.Equivalences, items...)
	}

	curricula, err := s.repo.ListCurricula(ctx, page)
	if err != nil {
		return Dump{}, err
	}
	out.Curricula = curricula

	locators, err := s.contentLocators(ctx)
	if err != nil {
		return Dump{}, err
	}
	if len(locators) > page.Limit {
		locators = locators[:page.Limit]
	}
	out.ContentLocators = locators
	return out, nil
}

func (s *Service) contentLocators(ctx context.Context) ([]string, error) {
	out := []string{}
	if s.content == nil {
		return out, nil
	}
	cursor := ""
	for {
		batch, err := s.content.List(ctx, cursor, ports.MaxPageSize)
		if err != nil {
			return nil, errs.Storage(err, "list cached content")
		}
		out = append(out, batch...)
		if len(batch) < ports.MaxPageSize {
			return out, nil
		}
		cursor = batch[len(batch)-1]
	}
}
