package cloud

import "context"

// Remote is the shared document store all replicas converge on. One
// document lives at a fixed path; every Save overwrites it wholesale and
// every change reaches subscribers.
type Remote interface {
	// Fetch reads the document. Returns (nil, nil) when it does not exist.
	Fetch(ctx context.Context) (*Envelope, error)

	// Save overwrites the document and notifies subscribers.
	Save(ctx context.Context, env *Envelope) error

	// Subscribe delivers every subsequent document change. The channel is
	// closed when ctx ends or the subscription breaks.
	Subscribe(ctx context.Context) (<-chan Envelope, error)

	// Close releases the underlying connection.
	Close() error
}
