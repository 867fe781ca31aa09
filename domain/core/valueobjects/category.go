package valueobjects

// Category classifies a post within the campus feed
type Category string

const (
	CategoryGeneral   Category = "general"
	CategoryAcademics Category = "academics"
	CategorySocial    Category = "social"
	CategoryHousing   Category = "housing"
	CategoryFood      Category = "food"
	CategorySports    Category = "sports"
	CategoryEvents    Category = "events"

	// CategoryAll is a filter sentinel, never stored on a post
	CategoryAll Category = "all"
)

// Categories lists every storable category
func Categories() []Category {
	return []Category{
		CategoryGeneral,
		CategoryAcademics,
		CategorySocial,
		CategoryHousing,
		CategoryFood,
		CategorySports,
		CategoryEvents,
	}
}

// IsValid reports whether the category is a known storable category
func (c Category) IsValid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// NormalizeCategory maps a raw category string to a storable category.
// Posts with a missing or unknown category fall back to "general".
func NormalizeCategory(raw string) Category {
	c := Category(raw)
	if c.IsValid() {
		return c
	}
	return CategoryGeneral
}

func (c Category) String() string {
	return string(c)
}
