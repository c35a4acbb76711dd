package roster

import (
	"fmt"
	"time"
)

// Category groups athletes by age bracket and gender.
type Category string

const (
	CategorySeniorMen   Category = "senior-men"
	CategorySeniorWomen Category = "senior-women"
	CategoryJuniorMen   Category = "junior-men"
	CategoryJuniorWomen Category = "junior-women"
)

var AllCategories = map[Category]struct{}{
	CategorySeniorMen:   {},
	CategorySeniorWomen: {},
	CategoryJuniorMen:   {},
	CategoryJuniorWomen: {},
}

// Member is an athlete represented by the agency. ID and the timestamps are
// assigned by the document gateway on creation.
type Member struct {
	ID           string
	Name         string
	Role         string
	Country      string
	Image        string
	Bio          string
	Achievements []string
	Category     Category
	Instagram    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (m Member) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("member name is required")
	}
	if m.Role == "" {
		return fmt.Errorf("member role is required")
	}
	if _, ok := AllCategories[m.Category]; !ok {
		return fmt.Errorf("invalid member category: %s", m.Category)
	}

	return nil
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Name         *string
	Role         *string
	Country      *string
	Image        *string
	Bio          *string
	Achievements *[]string
	Category     *Category
	Instagram    *string
}

func (p Patch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("member name cannot be cleared")
	}
	if p.Category != nil {
		if _, ok := AllCategories[*p.Category]; !ok {
			return fmt.Errorf("invalid member category: %s", *p.Category)
		}
	}

	return nil
}

// Apply merges the patch into a member, shallowly: slice fields are replaced
// wholesale, never appended to.
func (p Patch) Apply(m Member) Member {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Role != nil {
		m.Role = *p.Role
	}
	if p.Country != nil {
		m.Country = *p.Country
	}
	if p.Image != nil {
		m.Image = *p.Image
	}
	if p.Bio != nil {
		m.Bio = *p.Bio
	}
	if p.Achievements != nil {
		m.Achievements = *p.Achievements
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Instagram != nil {
		m.Instagram = *p.Instagram
	}

	return m
}
