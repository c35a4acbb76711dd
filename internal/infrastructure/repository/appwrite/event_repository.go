package appwrite

import (
	"context"

	"github.com/fvaskate/agency-api/internal/domain/event"
	"github.com/fvaskate/agency-api/internal/domain/gateway"
)

// EventRepository maps the hosted events collection onto event domain types.
type EventRepository struct {
	client       *Client
	collectionID string
}

func NewEventRepository(client *Client, collectionID string) *EventRepository {
	return &EventRepository{client: client, collectionID: collectionID}
}

type registrationFields struct {
	Deadline   string `json:"deadline,omitempty"`
	RegularFee string `json:"regularFee,omitempty"`
	LateFee    string `json:"lateFee,omitempty"`
}

type raceCategoryFields struct {
	Title    string    `json:"title"`
	Distance string    `json:"distance,omitempty"`
	AgeRange string    `json:"ageRange,omitempty"`
	Genders  string    `json:"genders,omitempty"`
	Prizes   [3]string `json:"prizes"`
	Notes    string    `json:"notes,omitempty"`
}

type eventFields struct {
	Slug         string               `json:"slug"`
	Name         string               `json:"name"`
	Date         string               `json:"date"`
	Location     string               `json:"location"`
	Description  string               `json:"description"`
	Image        string               `json:"image"`
	Completed    bool                 `json:"completed"`
	Status       string               `json:"status"`
	Link         string               `json:"link"`
	Featured     bool                 `json:"featured"`
	FVAEvent     *bool                `json:"isFVAEvent,omitempty"`
	Venue        string               `json:"venue,omitempty"`
	Registration *registrationFields  `json:"registration,omitempty"`
	AwardsNote   string               `json:"awardsNote,omitempty"`
	Categories   []raceCategoryFields `json:"categories,omitempty"`
}

type eventDoc struct {
	eventFields
	documentMeta
}

func eventToFields(e event.Event) eventFields {
	fvaEvent := e.FVAEvent
	fields := eventFields{
		Slug:        e.Slug,
		Name:        e.Name,
		Date:        e.Date,
		Location:    e.Location,
		Description: e.Description,
		Image:       e.Image,
		Completed:   e.Completed,
		Status:      string(e.Status),
		Link:        e.Link,
		Featured:    e.Featured,
		FVAEvent:    &fvaEvent,
		Venue:       e.Venue,
		AwardsNote:  e.AwardsNote,
	}
	if e.Registration != nil {
		fields.Registration = &registrationFields{
			Deadline:   e.Registration.Deadline,
			RegularFee: e.Registration.RegularFee,
			LateFee:    e.Registration.LateFee,
		}
	}
	for _, category := range e.Categories {
		fields.Categories = append(fields.Categories, raceCategoryFields(category))
	}

	return fields
}

// toDomain resolves the FVAEvent tri-state: records that predate the field
// count as agency events.
func (d eventDoc) toDomain() event.Event {
	fvaEvent := true
	if d.FVAEvent != nil {
		fvaEvent = *d.FVAEvent
	}

	out := event.Event{
		ID:          d.ID,
		Slug:        d.Slug,
		Name:        d.Name,
		Date:        d.Date,
		Location:    d.Location,
		Description: d.Description,
		Image:       d.Image,
		Completed:   d.Completed,
		Status:      event.Status(d.Status),
		Link:        d.Link,
		Featured:    d.Featured,
		FVAEvent:    fvaEvent,
		Venue:       d.Venue,
		AwardsNote:  d.AwardsNote,
		CreatedAt:   d.createdAt(),
		UpdatedAt:   d.updatedAt(),
	}
	if d.Registration != nil {
		out.Registration = &event.Registration{
			Deadline:   d.Registration.Deadline,
			RegularFee: d.Registration.RegularFee,
			LateFee:    d.Registration.LateFee,
		}
	}
	for _, category := range d.Categories {
		out.Categories = append(out.Categories, event.RaceCategory(category))
	}

	return out.Normalize()
}

func (r *EventRepository) List(ctx context.Context) ([]event.Event, error) {
	var envelope struct {
		Total     int        `json:"total"`
		Documents []eventDoc `json:"documents"`
	}
	if err := r.client.listDocuments(ctx, r.collectionID, &envelope); err != nil {
		return nil, gateway.Wrap("list", "events", err)
	}

	out := make([]event.Event, 0, len(envelope.Documents))
	for _, doc := range envelope.Documents {
		out = append(out, doc.toDomain())
	}

	return out, nil
}

func (r *EventRepository) Create(ctx context.Context, item event.Event) (event.Event, error) {
	var doc eventDoc
	if err := r.client.createDocument(ctx, r.collectionID, eventToFields(item.Normalize()), &doc); err != nil {
		return event.Event{}, gateway.Wrap("create", "events", err)
	}

	return doc.toDomain(), nil
}

func (r *EventRepository) Update(ctx context.Context, id string, patch event.Patch) error {
	data := map[string]any{}
	if patch.Name != nil {
		data["name"] = *patch.Name
	}
	if patch.Date != nil {
		data["date"] = *patch.Date
	}
	if patch.Location != nil {
		data["location"] = *patch.Location
	}
	if patch.Description != nil {
		data["description"] = *patch.Description
	}
	if patch.Image != nil {
		data["image"] = *patch.Image
	}
	if patch.Completed != nil {
		data["completed"] = *patch.Completed
	}
	if patch.Status != nil {
		data["status"] = string(*patch.Status)
	}
	if patch.Link != nil {
		data["link"] = *patch.Link
	}
	if patch.Featured != nil {
		data["featured"] = *patch.Featured
	}
	if patch.FVAEvent != nil {
		data["isFVAEvent"] = *patch.FVAEvent
	}
	if patch.Venue != nil {
		data["venue"] = *patch.Venue
	}
	if patch.Registration != nil {
		data["registration"] = registrationFields{
			Deadline:   patch.Registration.Deadline,
			RegularFee: patch.Registration.RegularFee,
			LateFee:    patch.Registration.LateFee,
		}
	}
	if patch.AwardsNote != nil {
		data["awardsNote"] = *patch.AwardsNote
	}
	if patch.Categories != nil {
		categories := make([]raceCategoryFields, 0, len(*patch.Categories))
		for _, category := range *patch.Categories {
			categories = append(categories, raceCategoryFields(category))
		}
		data["categories"] = categories
	}

	if err := r.client.updateDocument(ctx, r.collectionID, id, data); err != nil {
		return gateway.Wrap("update", "events", err)
	}

	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.deleteDocument(ctx, r.collectionID, id); err != nil {
		return gateway.Wrap("delete", "events", err)
	}

	return nil
}
