package model

// OverlapResult locates the ambiguous hypothesis span and its premise counterpart
type OverlapResult struct {
	PremiseRefIndex    int    `json:"premise_ref_index"`    // Index into the premise's whitespace tokens
	PremiseRefToken    string `json:"premise_ref_token"`    // Literal premise token at that index
	HypothesisRefIndex int    `json:"hypothesis_ref_index"` // Start of the ambiguous span in the hypothesis
	HypothesisRefSpan  string `json:"hypothesis_ref_span"`  // Literal ambiguous span
	Prefix             string `json:"prefix"`               // Hypothesis text before the span
	Suffix             string `json:"suffix"`               // Hypothesis text after the span
}

// AugmentationResult holds the examples synthesized from one pair
type AugmentationResult struct {
	NewPremise         string   `json:"new_premise"`
	PositiveHypothesis string   `json:"positive_hypothesis"`
	NegativeHypotheses []string `json:"negative_hypotheses"`
	Pronoun            Pronoun  `json:"pronoun"`
}
