package domain

import "time"

// Entry is a denormalized snapshot of a Module kept in the recent and
// favorite lists. It survives catalog changes; Name joins it back to the
// live Module.
type Entry struct {
	Name            string     `json:"name"`
	Type            ModuleType `json:"type"`
	DisplayCategory string     `json:"displayCategory"`
	Emoji           string     `json:"emoji"`
	SwaggerURL      string     `json:"swaggerUrl,omitempty"`
	YangTreeURL     string     `json:"yangTreeUrl,omitempty"`
	Timestamp       time.Time  `json:"timestamp"`
}

// Snapshot captures the display-relevant fields of m at time at.
func Snapshot(m Module, at time.Time) Entry {
	return Entry{
		Name:            m.Name,
		Type:            m.Type,
		DisplayCategory: m.DisplayCategory,
		Emoji:           m.Emoji,
		SwaggerURL:      m.SwaggerURL,
		YangTreeURL:     m.YangTreeURL,
		Timestamp:       at.UTC(),
	}
}
