package event

import "context"

// Repository is the remote collection gateway contract for events. The
// gateway addresses documents by its own opaque ID; slug resolution is the
// caller's concern. List returns events ordered by creation time, newest
// first, with FVAEvent always resolved to a concrete boolean.
type Repository interface {
	List(ctx context.Context) ([]Event, error)
	Create(ctx context.Context, item Event) (Event, error)
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
}
