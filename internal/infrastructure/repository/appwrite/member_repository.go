package appwrite

import (
	"context"

	"github.com/fvaskate/agency-api/internal/domain/gateway"
	"github.com/fvaskate/agency-api/internal/domain/roster"
)

// MemberRepository maps the hosted team collection onto roster domain types.
type MemberRepository struct {
	client       *Client
	collectionID string
}

func NewMemberRepository(client *Client, collectionID string) *MemberRepository {
	return &MemberRepository{client: client, collectionID: collectionID}
}

type memberFields struct {
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Country      string   `json:"country"`
	Image        string   `json:"image"`
	Bio          string   `json:"bio"`
	Achievements []string `json:"achievements"`
	Category     string   `json:"category"`
	Instagram    string   `json:"instagram,omitempty"`
}

type memberDoc struct {
	memberFields
	documentMeta
}

func memberToFields(m roster.Member) memberFields {
	achievements := m.Achievements
	if achievements == nil {
		achievements = []string{}
	}

	return memberFields{
		Name:         m.Name,
		Role:         m.Role,
		Country:      m.Country,
		Image:        m.Image,
		Bio:          m.Bio,
		Achievements: achievements,
		Category:     string(m.Category),
		Instagram:    m.Instagram,
	}
}

func (d memberDoc) toDomain() roster.Member {
	return roster.Member{
		ID:           d.ID,
		Name:         d.Name,
		Role:         d.Role,
		Country:      d.Country,
		Image:        d.Image,
		Bio:          d.Bio,
		Achievements: d.Achievements,
		Category:     roster.Category(d.Category),
		Instagram:    d.Instagram,
		CreatedAt:    d.createdAt(),
		UpdatedAt:    d.updatedAt(),
	}
}

func (r *MemberRepository) List(ctx context.Context) ([]roster.Member, error) {
	var envelope struct {
		Total     int         `json:"total"`
		Documents []memberDoc `json:"documents"`
	}
	if err := r.client.listDocuments(ctx, r.collectionID, &envelope); err != nil {
		return nil, gateway.Wrap("list", "team", err)
	}

	out := make([]roster.Member, 0, len(envelope.Documents))
	for _, doc := range envelope.Documents {
		out = append(out, doc.toDomain())
	}

	return out, nil
}

func (r *MemberRepository) Create(ctx context.Context, member roster.Member) (roster.Member, error) {
	var doc memberDoc
	if err := r.client.createDocument(ctx, r.collectionID, memberToFields(member), &doc); err != nil {
		return roster.Member{}, gateway.Wrap("create", "team", err)
	}

	return doc.toDomain(), nil
}

func (r *MemberRepository) Update(ctx context.Context, id string, patch roster.Patch) error {
	data := map[string]any{}
	if patch.Name != nil {
		data["name"] = *patch.Name
	}
	if patch.Role != nil {
		data["role"] = *patch.Role
	}
	if patch.Country != nil {
		data["country"] = *patch.Country
	}
	if patch.Image != nil {
		data["image"] = *patch.Image
	}
	if patch.Bio != nil {
		data["bio"] = *patch.Bio
	}
	if patch.Achievements != nil {
		data["achievements"] = *patch.Achievements
	}
	if patch.Category != nil {
		data["category"] = string(*patch.Category)
	}
	if patch.Instagram != nil {
		data["instagram"] = *patch.Instagram
	}

	if err := r.client.updateDocument(ctx, r.collectionID, id, data); err != nil {
		return gateway.Wrap("update", "team", err)
	}

	return nil
}

func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.deleteDocument(ctx, r.collectionID, id); err != nil {
		return gateway.Wrap("delete", "team", err)
	}

	return nil
}
