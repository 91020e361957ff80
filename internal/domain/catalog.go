package domain

import "fmt"

// Category names a browsable product line. The Idle-state category jump
// keywords map straight onto these.
type Category string

const (
	CategoryIncubators Category = "incubators"
	CategoryChicks     Category = "chicks"
	CategoryCages      Category = "cages"
)

// Item is one sellable catalog entry. Items are immutable after the
// catalog loads; Capacity is unique within a category.
type Item struct {
	Name string `yaml:"name" json:"name"`
	// Capacity is the headcount the product handles: eggs for
	// incubators, chicks per batch, birds per cage.
	Capacity int    `yaml:"capacity" json:"capacity"`
	Price    int    `yaml:"price" json:"price"`
	Solar    bool   `yaml:"solar" json:"solar,omitempty"`
	FreeGen  bool   `yaml:"free_gen" json:"free_gen,omitempty"`
	ImageURL string `yaml:"image" json:"image,omitempty"`

	Category Category `yaml:"-" json:"category"`
}

// FormatKSh renders a price the way the shop quotes them: "KSh 13,000".
func FormatKSh(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return "KSh " + sign + string(out)
}
