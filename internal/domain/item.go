package domain

// Item is a vocabulary item as seen by the review engine. Content
// management lives elsewhere; only the identifier and the surface forms
// needed for answer checking and scheduling are carried here.
type Item struct {
	ID      string `json:"id"`
	Word    string `json:"word"`                 // Primary script form
	Reading string `json:"reading,omitempty"`    // Phonetic reading
	AltForm string `json:"alt_form,omitempty"`   // Alternate script form
	Romaji  string `json:"romaji,omitempty"`     // Romanized form
	Meaning string `json:"meaning,omitempty"`    // Translation shown on the card back
}

// Validate checks that the item is usable in a session.
func (i Item) Validate() error {
	if i.ID == "" {
		return ErrEmptyItemID
	}
	return nil
}

// SurfaceForms returns every non-empty written form of the item.
// A typed answer matching any of these counts as correct.
func (i Item) SurfaceForms() []string {
	forms := make([]string, 0, 4)
	for _, f := range []string{i.Word, i.Reading, i.AltForm, i.Romaji} {
		if f != "" {
			forms = append(forms, f)
		}
	}
	return forms
}
