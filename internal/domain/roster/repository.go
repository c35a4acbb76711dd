package roster

import "context"

// Repository is the remote collection gateway contract for the team roster.
// List returns members ordered by creation time, newest first. Create has no
// idempotency key; a retried create after a transport failure may leave a
// duplicate behind.
type Repository interface {
	List(ctx context.Context) ([]Member, error)
	Create(ctx context.Context, member Member) (Member, error)
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
}
