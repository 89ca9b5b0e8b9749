// Package stream turns a materialization run into a sequence of events.
package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tyemirov/treeforge/internal/forest"
	"github.com/tyemirov/treeforge/internal/materialize"
	"github.com/tyemirov/treeforge/internal/output"
	"github.com/tyemirov/treeforge/internal/types"
)

type MaterializeOptions struct {
	Source      *forest.Forest
	Destination string
	Options     materialize.Options
}

type emitter struct {
	ctx     context.Context
	out     chan<- Event
	command string
	runID   string
}

func newEmitter(ctx context.Context, out chan<- Event, command string) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out, command: command, runID: uuid.NewString()}
}

func (e *emitter) send(event Event) error {
	if e.out == nil {
		return fmt.Errorf("stream: event channel is nil")
	}
	event.Version = SchemaVersion
	event.RunID = e.runID
	if event.Command == "" {
		event.Command = e.command
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

// StreamMaterialize materializes opts.Source and emits a start event, one
// entry event per node in decision order, then summary and done events.
// The returned report is the same one Materialize produces.
func StreamMaterialize(ctx context.Context, opts MaterializeOptions, out chan<- Event) (materialize.Report, error) {
	emitter := newEmitter(ctx, out, types.CommandCreate)
	if err := emitter.send(Event{Kind: EventKindStart, Destination: opts.Destination, DryRun: opts.Options.DryRun}); err != nil {
		return materialize.Report{}, err
	}

	materializeOptions := opts.Options
	observe := opts.Options.Observer
	materializeOptions.Observer = func(entry materialize.Entry) {
		if observe != nil {
			observe(entry)
		}
		reportEntry := output.BuildReportEntry(entry)
		// A cancelled context is reported by Materialize itself.
		_ = emitter.send(Event{Kind: EventKindEntry, Entry: &reportEntry})
	}

	report, materializeError := materialize.Materialize(ctx, opts.Source, opts.Destination, materializeOptions)
	if materializeError != nil && errors.Is(materializeError, materialize.ErrDestinationUnavailable) {
		_ = emitter.send(Event{Kind: EventKindError, Err: &ErrorEvent{Message: materializeError.Error()}})
		return report, materializeError
	}

	summary := &SummaryEvent{
		Created: report.Created(),
		Skipped: report.Skipped(),
		Planned: report.Count(materialize.StatusPlanned),
		Failed:  report.Failed(),
	}
	if err := emitter.send(Event{Kind: EventKindSummary, Destination: report.Destination, DryRun: report.DryRun, Summary: summary}); err != nil {
		return report, errors.Join(materializeError, err)
	}
	if materializeError != nil {
		_ = emitter.send(Event{Kind: EventKindError, Err: &ErrorEvent{Message: materializeError.Error()}})
		return report, materializeError
	}
	if err := emitter.send(Event{Kind: EventKindDone, Destination: report.Destination}); err != nil {
		return report, err
	}
	return report, nil
}
