package model

// categories maps the Danish category labels used upstream onto the
// Apple Podcasts category vocabulary. Treat as read-only.
var categories = map[string]string{
	"Dokumentar":        "Documentary",
	"Historie":          "History",
	"Sundhed":           "Health & Fitness",
	"Samfund":           "Society & Culture",
	"Videnskab og tech": "Science",
	"Tro og eksistens":  "Religion & Spirituality",
	"Kriminal":          "True Crime",
	"Kultur":            "Society & Culture",
	"Nyheder":           "News",
	"Underholdning":     "Entertainment",
	"Sport":             "Sports",
	"Musik":             "Music",
}

// MapCategory returns the iTunes category for an upstream label.
// Labels without a mapping are returned unchanged.
func MapCategory(label string) string {
	if mapped, ok := categories[label]; ok {
		return mapped
	}
	return label
}

// MapCategories maps labels with MapCategory, dropping empty labels
// and emitting each resulting category once in first-seen order.
func MapCategories(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if label == "" {
			continue
		}
		mapped := MapCategory(label)
		if _, dup := seen[mapped]; dup {
			continue
		}
		seen[mapped] = struct{}{}
		out = append(out, mapped)
	}
	return out
}
