// Package dataset holds the read-only assets consumed by generation
// strategies: word lists, syllable sets and Markov models.
//
// Assets reach a strategy in one of two ways. A configuration may name an
// asset, which is then looked up through a Resolver (usually a Library loaded
// from disk), or it may carry the asset inline as a plain map. Both paths go
// through the same parsers, so a file and an inline payload share one shape.
package dataset

// Kind identifies an asset type. It matches the "type" field of asset files.
type Kind string

// Asset kinds
const (
	KindWordList    Kind = "wordlist"
	KindSyllableSet Kind = "syllable_set"
	KindMarkovModel Kind = "markov_model"
)

// Asset is implemented by every dataset type.
type Asset interface {
	AssetKind() Kind
	AssetName() string
}

// WordEntry is one candidate in a word list.
type WordEntry struct {
	Value  string  `json:"value" yaml:"value"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// WordList is a curated list of strings with optional weights.
type WordList struct {
	Name    string      `json:"name" yaml:"name"`
	Entries []WordEntry `json:"entries" yaml:"entries"`
}

// AssetKind implements Asset.
func (w *WordList) AssetKind() Kind { return KindWordList }

// AssetName implements Asset.
func (w *WordList) AssetName() string { return w.Name }

// Range is an inclusive integer range.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// SyllableSet holds the fragment pools a syllable chain is assembled from.
// MiddleRange is the set's own preferred middle count, nil when unspecified.
type SyllableSet struct {
	Name        string   `json:"name" yaml:"name"`
	Prefixes    []string `json:"prefixes" yaml:"prefixes"`
	Middles     []string `json:"middles" yaml:"middles"`
	Suffixes    []string `json:"suffixes" yaml:"suffixes"`
	MiddleRange *Range   `json:"middle_range,omitempty" yaml:"middle_range,omitempty"`
}

// AssetKind implements Asset.
func (s *SyllableSet) AssetKind() Kind { return KindSyllableSet }

// AssetName implements Asset.
func (s *SyllableSet) AssetName() string { return s.Name }

// Transition is one weighted edge of a Markov transition block.
// A zero Temperature means the edge has no temperature of its own.
type Transition struct {
	Token       string  `json:"token" yaml:"token"`
	Weight      float64 `json:"weight" yaml:"weight"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// WeightedToken is a start-token candidate.
type WeightedToken struct {
	Token  string  `json:"token" yaml:"token"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// MarkovModel is a token transition table.
type MarkovModel struct {
	Name               string                  `json:"name" yaml:"name"`
	States             []string                `json:"states" yaml:"states"`
	Transitions        map[string][]Transition `json:"transitions" yaml:"transitions"`
	StartTokens        []WeightedToken         `json:"start_tokens" yaml:"start_tokens"`
	EndTokens          []string                `json:"end_tokens" yaml:"end_tokens"`
	DefaultTemperature float64                 `json:"default_temperature" yaml:"default_temperature"`
	TokenTemperatures  map[string]float64      `json:"token_temperatures,omitempty" yaml:"token_temperatures,omitempty"`
}

// AssetKind implements Asset.
func (m *MarkovModel) AssetKind() Kind { return KindMarkovModel }

// AssetName implements Asset.
func (m *MarkovModel) AssetName() string { return m.Name }

// IsEndToken reports whether token terminates a chain.
func (m *MarkovModel) IsEndToken(token string) bool {
	for _, end := range m.EndTokens {
		if end == token {
			return true
		}
	}
	return false
}
