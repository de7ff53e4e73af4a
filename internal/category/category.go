package category

import "strings"

// Category is one of the fixed facility areas an issue can be filed under.
type Category string

const (
	Electrical     Category = "Electrical"
	Water          Category = "Water"
	Internet       Category = "Internet"
	Infrastructure Category = "Infrastructure"
)

var All = []Category{Electrical, Water, Internet, Infrastructure}

var descriptions = map[Category]string{
	Electrical:     "Lighting, power outlets and wiring",
	Water:          "Leaks, plumbing and water supply",
	Internet:       "Wi-Fi and wired network access",
	Infrastructure: "Buildings, furniture, doors and grounds",
}

func (c Category) IsValid() bool {
	_, ok := descriptions[c]
	return ok
}

func (c Category) Description() string {
	return descriptions[c]
}

// Names lists the categories in their canonical order.
func Names() []string {
	out := make([]string, len(All))
	for i, c := range All {
		out[i] = string(c)
	}
	return out
}

// JoinedNames renders the list for validation messages.
func JoinedNames() string {
	return strings.Join(Names(), ", ")
}
