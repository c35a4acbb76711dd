package appwrite

import "time"

// documentMeta carries the store-assigned identity and timestamps present on
// every document.
type documentMeta struct {
	ID         string `json:"$id"`
	RawCreated string `json:"$createdAt"`
	RawUpdated string `json:"$updatedAt"`
}

// Timestamps arrive as RFC3339 strings. Unparseable values map to the zero
// time rather than failing the whole read; ordering is already applied
// server-side.
func (m documentMeta) createdAt() time.Time {
	return parseDocTime(m.RawCreated)
}

func (m documentMeta) updatedAt() time.Time {
	return parseDocTime(m.RawUpdated)
}

func parseDocTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
