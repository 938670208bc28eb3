package turn

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Garsondee/grid-tactics/internal/turn"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// encounterMetrics are the encounter's OTel instruments. They come from the
// global provider and are no-ops unless the host installs one.
type encounterMetrics struct {
	actions   metric.Int64Counter
	rejected  metric.Int64Counter
	knockOuts metric.Int64Counter
	turns     metric.Int64Counter
}

func newEncounterMetrics() (*encounterMetrics, error) {
	m := meter()
	em := &encounterMetrics{}

	var err error
	em.actions, err = m.Int64Counter(
		"encounter.actions.applied",
		metric.WithDescription("Total actions committed by strategies"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating actions counter: %w", err)
	}

	em.rejected, err = m.Int64Counter(
		"encounter.actions.rejected",
		metric.WithDescription("Total actions refused by the encounter"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}

	em.knockOuts, err = m.Int64Counter(
		"encounter.knockouts",
		metric.WithDescription("Total units knocked out"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating knockouts counter: %w", err)
	}

	em.turns, err = m.Int64Counter(
		"encounter.turns",
		metric.WithDescription("Total unit turns started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating turns counter: %w", err)
	}
	return em, nil
}

func (em *encounterMetrics) action(kind ActionKind, r ActionResult) {
	action := attribute.String("action", kind.String())
	if r.Applied {
		em.actions.Add(context.Background(), 1, metric.WithAttributes(action))
		return
	}
	em.rejected.Add(context.Background(), 1,
		metric.WithAttributes(action, attribute.String("reason", r.Reason.String())))
}

func (em *encounterMetrics) knockOut(side string) {
	em.knockOuts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("side", side)))
}

func (em *encounterMetrics) turn(side string) {
	em.turns.Add(context.Background(), 1, metric.WithAttributes(attribute.String("side", side)))
}
