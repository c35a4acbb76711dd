package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fvaskate/agency-api/internal/domain/gateway"
	"github.com/fvaskate/agency-api/internal/domain/roster"
	idgen "github.com/fvaskate/agency-api/internal/platform/id"
)

// MemberRepository is an in-process stand-in for the hosted team collection,
// used in local mode and as the store's test double.
type MemberRepository struct {
	mu      sync.RWMutex
	members []roster.Member
	ids     idgen.Generator
	now     func() time.Time
}

func NewMemberRepository(members []roster.Member) *MemberRepository {
	out := make([]roster.Member, 0, len(members))
	out = append(out, members...)

	return &MemberRepository{
		members: out,
		ids:     idgen.NewRandomGenerator(),
		now:     time.Now,
	}
}

func (r *MemberRepository) List(_ context.Context) ([]roster.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Member, 0, len(r.members))
	out = append(out, r.members...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *MemberRepository) Create(_ context.Context, member roster.Member) (roster.Member, error) {
	id, err := r.ids.NewID()
	if err != nil {
		return roster.Member{}, gateway.Wrap("create", "team", err)
	}

	now := r.now()
	member.ID = id
	member.CreatedAt = now
	member.UpdatedAt = now

	r.mu.Lock()
	r.members = append(r.members, member)
	r.mu.Unlock()

	return member, nil
}

func (r *MemberRepository) Update(_ context.Context, id string, patch roster.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.members {
		if r.members[idx].ID == id {
			updated := patch.Apply(r.members[idx])
			updated.UpdatedAt = r.now()
			r.members[idx] = updated
			return nil
		}
	}

	return gateway.Wrap("update", "team", fmt.Errorf("member %s: %w", id, gateway.ErrNotFound))
}

func (r *MemberRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.members {
		if r.members[idx].ID == id {
			r.members = append(r.members[:idx], r.members[idx+1:]...)
			return nil
		}
	}

	return gateway.Wrap("delete", "team", fmt.Errorf("member %s: %w", id, gateway.ErrNotFound))
}
