package models

// Team is a mirrored competition team, keyed by name in the store
type Team struct {
	ID        int    `json:"team"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	TLA       string `json:"tla,omitempty"`
	Crest     string `json:"crest,omitempty"`
}
