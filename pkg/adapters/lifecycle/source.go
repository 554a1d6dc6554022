package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/stanza-editor/stash/pkg/core"
)

type backupSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits backup-area events.
// It bridges the typed store event channel to the generic lifecycle Event
// interface so hosts can hang the backup area off their supervision tree.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &backupSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *backupSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *backupSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				// core.Event implements lifecycle.Event (has String())
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
