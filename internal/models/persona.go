package models

// VisualOption is one candidate avatar description generated for a
// persona. Exactly four are produced per persona.
type VisualOption struct {
	Label       string `json:"label" firestore:"label"`
	Description string `json:"description" firestore:"description"`
}

// Persona is a generated influencer identity.
type Persona struct {
	Name          string         `json:"name" firestore:"name"`
	Bio           string         `json:"bio" firestore:"bio"`
	Personality   string         `json:"personality" firestore:"personality"`
	Niche         string         `json:"niche" firestore:"niche"`
	VisualOptions []VisualOption `json:"visualOptions" firestore:"visualOptions"`
}

const personaVisualOptions = 4

// Normalize guarantees exactly four visual options and non-empty identity
// fields.
func (p *Persona) Normalize(niche string) {
	if p.Niche == "" {
		p.Niche = niche
	}
	if p.Name == "" {
		p.Name = "New Creator"
	}
	if p.Bio == "" {
		p.Bio = "Sharing daily finds from the world of " + p.Niche + "."
	}
	if p.Personality == "" {
		p.Personality = "warm, curious and a little playful"
	}
	styles := []string{"studio portrait", "candid outdoor shot", "editorial close-up", "lifestyle scene"}
	for len(p.VisualOptions) < personaVisualOptions {
		style := styles[len(p.VisualOptions)%len(styles)]
		p.VisualOptions = append(p.VisualOptions, VisualOption{
			Label:       style,
			Description: style + " of a " + p.Niche + " creator",
		})
	}
	p.VisualOptions = p.VisualOptions[:personaVisualOptions]
}

// Identity is the influencer voice fed into content prompts.
type Identity struct {
	ID          string `json:"id" firestore:"id"`
	Name        string `json:"name" firestore:"name"`
	Personality string `json:"personality" firestore:"personality"`
	VisualStyle string `json:"visualStyle" firestore:"visualStyle"`
}
