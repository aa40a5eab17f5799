package model

// Pronoun is a canonical pronoun from the pronoun lookup table
type Pronoun string

const (
	PronounHe   Pronoun = "he"
	PronounShe  Pronoun = "she"
	PronounIt   Pronoun = "it"
	PronounThey Pronoun = "they"

	// PronounPerson marks a singular person of unknown gender; it is
	// replaced by he or she at substitution time.
	PronounPerson Pronoun = "person"
)

// PronounCategory groups pronouns by number and gender certainty
type PronounCategory int

const (
	CategorySingular PronounCategory = iota
	CategoryPlural
	CategorySingularPersonUnknownGender
)

func (c PronounCategory) String() string {
	switch c {
	case CategoryPlural:
		return "plural"
	case CategorySingularPersonUnknownGender:
		return "singular_person_unknown_gender"
	default:
		return "singular"
	}
}

// Category returns the pronoun's category
func (p Pronoun) Category() PronounCategory {
	switch p {
	case PronounThey:
		return CategoryPlural
	case PronounPerson:
		return CategorySingularPersonUnknownGender
	default:
		return CategorySingular
	}
}

// IsGendered reports whether p is he or she
func (p Pronoun) IsGendered() bool {
	return p == PronounHe || p == PronounShe
}

// CompatibleWith reports whether a candidate noun whose lookup pronoun is p
// may stand in for the chosen pronoun. A person of unknown gender fits either
// he or she but never they.
func (p Pronoun) CompatibleWith(chosen Pronoun) bool {
	if p == PronounPerson {
		return chosen.IsGendered()
	}
	return p == chosen
}
