// Package catalog models the external nutrition-catalog boundary: the foods
// and serving measures it returns, the partitions it is searched by, and the
// serving entries written back to it. The remote service itself is consumed
// through the Searcher/Writer/Authenticator interfaces in client.go.
package catalog

// Partition identifies a named subset of the catalog that is searched
// independently (user-created entries, favorites, the common database, and so
// on). Each partition carries a static priority weight used when merging
// search results.
type Partition string

const (
	PartitionCustom      Partition = "custom"
	PartitionFavorites   Partition = "favorites"
	PartitionCommon      Partition = "common"
	PartitionSupplements Partition = "supplements"
	PartitionAll         Partition = "all"
)

// DefaultPriorities holds the empirically chosen partition weights. They are
// deliberate constants with no documented derivation; keep them configurable
// rather than "improving" them.
var DefaultPriorities = map[Partition]float64{
	PartitionCustom:      3.0,
	PartitionFavorites:   2.5,
	PartitionCommon:      1.0,
	PartitionSupplements: 0.5,
	PartitionAll:         0.4,
}

// SearchPartitions is the fixed ordered set of partitions queried per search.
var SearchPartitions = []Partition{
	PartitionCustom,
	PartitionFavorites,
	PartitionCommon,
	PartitionSupplements,
	PartitionAll,
}

// Measure is a named serving unit for a food, carrying a gram-equivalent
// value (e.g. "cup" = 240 g).
type Measure struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Grams float64 `json:"gramValue"`
}

// Food is a single catalog entry with its declared serving measures.
type Food struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Measures []Measure `json:"measures"`
}

// Credential is the opaque credential pair issued at login and passed through
// on every catalog call. Its contents are never interpreted by this module.
type Credential struct {
	Token  string
	Secret string
}

// IsZero reports whether the credential is unset.
func (c Credential) IsZero() bool { return c.Token == "" && c.Secret == "" }

// ServingEntry is one row of the batch write payload. Grams is always the
// normalized gram total; the remote write API does not accept arbitrary
// measure/quantity pairs.
type ServingEntry struct {
	Day       string  `json:"day"`  // "yyyy-MM-dd"
	Time      string  `json:"time"` // "HH:mm:ss" or empty
	FoodID    string  `json:"foodId"`
	MeasureID string  `json:"measureId"`
	Grams     float64 `json:"grams"`
	MealOrder int     `json:"mealOrder"`
}

// Meal-order codes used by the remote system for sort ordering.
const (
	MealOrderBreakfast = 1
	MealOrderSnack     = 2
	MealOrderLunch     = 3
	MealOrderDinner    = 5
	MealOrderOther     = 7
)

// MealOrderCode maps an interpreter meal-category label onto the remote
// system's fixed integer code. Unknown labels map to the "other" slot.
func MealOrderCode(category string) int {
	switch category {
	case "breakfast", "desayuno":
		return MealOrderBreakfast
	case "lunch", "almuerzo", "comida":
		return MealOrderLunch
	case "dinner", "cena":
		return MealOrderDinner
	case "snack", "merienda":
		return MealOrderSnack
	default:
		return MealOrderOther
	}
}
