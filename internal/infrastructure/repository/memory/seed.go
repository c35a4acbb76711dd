package memory

import "github.com/fvaskate/agency-api/internal/domain/roster"

// SeedTeamMembers is the bundled fallback roster used when both hosted
// collections come back empty on first load. Events are admin-authored and
// never seeded.
func SeedTeamMembers() []roster.Member {
	return []roster.Member{
		{
			Name:     "Anna Royo",
			Role:     "ARTISTIC & FREESTYLE ATHLETE",
			Country:  "SPAIN",
			Image:    "/team/anna-royo.jpg",
			Category: roster.CategorySeniorWomen,
		},
		{
			Name:     "Ben Brillante",
			Role:     "FREESTYLE ATHLETE & FILMMAKER",
			Country:  "FRANCE",
			Image:    "/team/ben-brillante.jpg",
			Category: roster.CategorySeniorMen,
		},
		{
			Name:     "Cameron Talbott",
			Role:     "STREET ATHLETE",
			Country:  "UNITED STATES",
			Image:    "/team/eddie-chung.jpg",
			Category: roster.CategorySeniorMen,
		},
		{
			Name:     "Carla Pasquinelli",
			Role:     "STREET ATHLETE",
			Country:  "FRANCE",
			Image:    "/team/carla-pasquinelli.jpg",
			Category: roster.CategorySeniorWomen,
		},
		{
			Name:     "Chihab Chaher",
			Role:     "FREESTYLE ATHLETE",
			Country:  "FRANCE",
			Image:    "/team/daniel-ilabaca.jpg",
			Category: roster.CategorySeniorMen,
		},
		{
			Name:     "Daniel Ilabaca",
			Role:     "FREESTYLE ATHLETE",
			Country:  "UNITED KINGDOM",
			Image:    "/team/daniel-ilabaca.jpg",
			Category: roster.CategorySeniorMen,
		},
		{
			Name:     "Danny Aldridge",
			Role:     "URBAN ATHLETE & VIDEO HOST",
			Country:  "UNITED KINGDOM",
			Image:    "/team/danny-aldridge.jpg",
			Category: roster.CategorySeniorMen,
		},
		{
			Name:     "Eddie Chung",
			Role:     "FREESTYLE",
			Country:  "UNITED STATES",
			Image:    "/team/eddie-chung.jpg",
			Category: roster.CategorySeniorMen,
		},
	}
}
