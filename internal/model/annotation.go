package model

// Token is a single dependency-parsed token
type Token struct {
	Text     string `json:"text"`
	Dep      string `json:"dep"`                // Dependency label (nsubj, dobj, pobj, ...)
	Index    int    `json:"i"`                  // Position in the parser's token stream
	Children []int  `json:"children,omitempty"` // Indices of syntactic children
}

// Dependency labels the augmenter looks at
const (
	DepNominalSubject      = "nsubj"
	DepDirectObject        = "dobj"
	DepPrepositionalObject = "pobj"
)

// Mention is a span of resolver tokens, End exclusive
type Mention struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Contains reports whether the mention covers token index i
func (m Mention) Contains(i int) bool {
	return i >= m.Start && i < m.End
}

// Cluster is a set of mentions referring to the same entity
type Cluster struct {
	Main     Mention   `json:"main"`
	Mentions []Mention `json:"mentions"`
}

// Contains reports whether any mention of the cluster covers token index i
func (c Cluster) Contains(i int) bool {
	for _, m := range c.Mentions {
		if m.Contains(i) {
			return true
		}
	}
	return false
}

// Document is the coreference resolver's view of a text
type Document struct {
	Tokens   []string  `json:"tokens"`
	Clusters []Cluster `json:"clusters"`
}

// ClustersOf returns the clusters that contain token index i, in resolver order
func (d *Document) ClustersOf(i int) []Cluster {
	var out []Cluster
	for _, c := range d.Clusters {
		if c.Contains(i) {
			out = append(out, c)
		}
	}
	return out
}
