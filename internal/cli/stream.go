package cli

import (
	"context"
	"encoding/json"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/tyemirov/treeforge/internal/forest"
	"github.com/tyemirov/treeforge/internal/materialize"
	"github.com/tyemirov/treeforge/internal/services/stream"
)

// streamCreate materializes a forest and writes every stream event to writer
// as one JSON document per line.
func streamCreate(ctx context.Context, writer io.Writer, parsed *forest.Forest, destination string, options materialize.Options) (materialize.Report, error) {
	var report materialize.Report
	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)

	producer := func(streamCtx context.Context, ch chan<- stream.Event) error {
		streamed, streamError := stream.StreamMaterialize(streamCtx, stream.MaterializeOptions{
			Source:      parsed,
			Destination: destination,
			Options:     options,
		}, ch)
		report = streamed
		return streamError
	}
	consumer := func(event stream.Event) error {
		return encoder.Encode(event)
	}

	dispatchError := dispatchStream(ctx, producer, consumer)
	return report, dispatchError
}

func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- stream.Event) error,
	consume func(stream.Event) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan stream.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := consume(event); err != nil {
					return err
				}
			}
		}
	})

	return group.Wait()
}
