package types

import "strings"

// CategoryAll matches every item regardless of its tags.
const CategoryAll = "All"

// ParseCategories splits a comma-joined category field into trimmed tags,
// dropping blanks and duplicates while keeping first-seen order.
func ParseCategories(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag == "" || containsFold(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// HasCategory reports whether the comma-joined field carries tag as a whole
// tag. Substrings never match: "Card" is not a tag of "Cards".
func HasCategory(raw, tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.EqualFold(tag, CategoryAll) {
		return true
	}
	return containsFold(ParseCategories(raw), tag)
}

// JoinCategories is the storage form of a tag list.
func JoinCategories(tags []string) string {
	return strings.Join(ParseCategories(strings.Join(tags, ",")), ", ")
}

func containsFold(tags []string, tag string) bool {
	for _, candidate := range tags {
		if strings.EqualFold(candidate, tag) {
			return true
		}
	}
	return false
}
