package tagged

import "slices"

// EntityMap is an ordered mapping from entity category (e.g. "PERSON",
// "ORGANIZATION") to the mentions found for it in one sentence. Categories
// are ordered by first appearance in the sentence; mentions keep their
// emission order and duplicates are preserved.
type EntityMap struct {
	categories []string
	mentions   map[string][]string
}

// NewEntityMap returns an empty EntityMap.
func NewEntityMap() *EntityMap {
	return &EntityMap{
		mentions: make(map[string][]string, 4),
	}
}

// Add appends a mention under the given category, registering the category
// on first use.
func (m *EntityMap) Add(category, mention string) {
	if _, ok := m.mentions[category]; !ok {
		m.categories = append(m.categories, category)
	}

	m.mentions[category] = append(m.mentions[category], mention)
}

// Get returns the mentions recorded for a category, in emission order.
// The returned slice must not be mutated by the caller.
func (m *EntityMap) Get(category string) []string {
	return m.mentions[category]
}

// Categories returns the category names in order of first appearance.
// The returned slice must not be mutated by the caller.
func (m *EntityMap) Categories() []string {
	return m.categories
}

// Len returns the number of distinct categories.
func (m *EntityMap) Len() int {
	return len(m.categories)
}

// Equal reports whether two entity maps hold the same categories in the same
// order with the same mentions.
func (m *EntityMap) Equal(other *EntityMap) bool {
	if other == nil || !slices.Equal(m.categories, other.categories) {
		return false
	}

	for _, category := range m.categories {
		if !slices.Equal(m.mentions[category], other.mentions[category]) {
			return false
		}
	}

	return true
}
