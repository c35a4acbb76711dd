package event

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Status tracks where an event sits in its lifecycle.
type Status string

const (
	StatusUpcoming  Status = "Upcoming"
	StatusOngoing   Status = "Ongoing"
	StatusCompleted Status = "Completed"
)

var AllStatuses = map[Status]struct{}{
	StatusUpcoming:  {},
	StatusOngoing:   {},
	StatusCompleted: {},
}

const (
	DefaultLink = "#"
)

// Registration holds the optional sign-up details shown on the event page.
// It is patched wholesale: a partial update either replaces the whole block
// or leaves it alone.
type Registration struct {
	Deadline   string
	RegularFee string
	LateFee    string
}

// RaceCategory describes one competition bracket inside an event.
type RaceCategory struct {
	Title    string
	Distance string
	AgeRange string
	Genders  string
	Prizes   [3]string
	Notes    string
}

// Event is a competition or showcase published on the site. Slug is derived
// from Name at creation time and is the stable public identifier; the gateway
// still indexes by its own opaque ID.
type Event struct {
	ID           string
	Slug         string
	Name         string
	Date         string
	Location     string
	Description  string
	Image        string
	Completed    bool
	Status       Status
	Link         string
	Featured     bool
	FVAEvent     bool
	Venue        string
	Registration *Registration
	AwardsNote   string
	Categories   []RaceCategory
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e Event) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("event name is required")
	}
	if e.Slug == "" {
		return fmt.Errorf("event slug is required")
	}
	if _, ok := AllStatuses[e.Status]; !ok {
		return fmt.Errorf("invalid event status: %s", e.Status)
	}

	return nil
}

// Normalize fills the defaults the admin form may omit. The FVAEvent flag is
// resolved at the gateway read boundary instead, where the wire value can
// still be absent.
func (e Event) Normalize() Event {
	if e.Slug == "" {
		e.Slug = Slugify(e.Name)
	}
	if e.Status == "" {
		e.Status = StatusUpcoming
	}
	if e.Link == "" {
		e.Link = DefaultLink
	}

	return e
}

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	nonWordChars   = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// Slugify derives the public identifier from an event name: lowercase,
// whitespace runs become a single hyphen, remaining non-word characters are
// stripped outright. Stripping never re-hyphenates, so "Café Night!!" yields
// "caf-night", not "caf--night".
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = whitespaceRuns.ReplaceAllString(slug, "-")

	return nonWordChars.ReplaceAllString(slug, "")
}

// Patch carries a partial update. Nil fields are left untouched; Registration
// and Categories are replaced wholesale when set. Slug is immutable and
// therefore absent.
type Patch struct {
	Name         *string
	Date         *string
	Location     *string
	Description  *string
	Image        *string
	Completed    *bool
	Status       *Status
	Link         *string
	Featured     *bool
	FVAEvent     *bool
	Venue        *string
	Registration *Registration
	AwardsNote   *string
	Categories   *[]RaceCategory
}

func (p Patch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("event name cannot be cleared")
	}
	if p.Status != nil {
		if _, ok := AllStatuses[*p.Status]; !ok {
			return fmt.Errorf("invalid event status: %s", *p.Status)
		}
	}

	return nil
}

func (p Patch) Apply(e Event) Event {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	if p.Completed != nil {
		e.Completed = *p.Completed
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Link != nil {
		e.Link = *p.Link
	}
	if p.Featured != nil {
		e.Featured = *p.Featured
	}
	if p.FVAEvent != nil {
		e.FVAEvent = *p.FVAEvent
	}
	if p.Venue != nil {
		e.Venue = *p.Venue
	}
	if p.Registration != nil {
		reg := *p.Registration
		e.Registration = &reg
	}
	if p.AwardsNote != nil {
		e.AwardsNote = *p.AwardsNote
	}
	if p.Categories != nil {
		e.Categories = *p.Categories
	}

	return e
}
