package model

import (
	"sort"
	"strings"
)

// ExpenseNature classifies how discretionary spending in a category is.
type ExpenseNature string

const (
	// NatureFixed represents contractual obligations such as rent or insurance.
	NatureFixed ExpenseNature = "Fixed"
	// NatureVariable represents necessary spending whose amount varies.
	NatureVariable ExpenseNature = "Variable"
	// NatureDiscretionary represents optional spending.
	NatureDiscretionary ExpenseNature = "Discretionary"
)

// Category is a normalized (trimmed, lower-case) spending category name.
type Category string

// Known spending categories.
const (
	CategoryRent          Category = "rent"
	CategoryInsurance     Category = "insurance"
	CategoryLoanPayments  Category = "loan payments"
	CategoryFoodGroceries Category = "food and groceries"
	CategoryUtilities     Category = "utilities"
	CategoryTransport     Category = "transport"
	CategoryMedical       Category = "medical"
	CategoryDiningOut     Category = "dining out"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategorySubscriptions Category = "subscriptions"
	CategoryTravel        Category = "travel"
)

var categoryNature = map[Category]ExpenseNature{
	CategoryRent:          NatureFixed,
	CategoryInsurance:     NatureFixed,
	CategoryLoanPayments:  NatureFixed,
	CategoryFoodGroceries: NatureVariable,
	CategoryUtilities:     NatureVariable,
	CategoryTransport:     NatureVariable,
	CategoryMedical:       NatureVariable,
	CategoryDiningOut:     NatureDiscretionary,
	CategoryShopping:      NatureDiscretionary,
	CategoryEntertainment: NatureDiscretionary,
	CategorySubscriptions: NatureDiscretionary,
	CategoryTravel:        NatureDiscretionary,
}

// categoryAliases maps legacy spellings still produced by older exports.
var categoryAliases = map[string]Category{
	"dinning out": CategoryDiningOut,
	"groceries":   CategoryFoodGroceries,
	"food":        CategoryFoodGroceries,
}

// NormalizeCategory trims and lower-cases a raw category name and resolves aliases.
func NormalizeCategory(raw string) Category {
	key := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := categoryAliases[key]; ok {
		return alias
	}
	return Category(key)
}

// LookupCategory resolves a raw category name to its canonical form and nature.
// The boolean is false for unrecognized categories.
func LookupCategory(raw string) (Category, ExpenseNature, bool) {
	cat := NormalizeCategory(raw)
	nature, ok := categoryNature[cat]
	return cat, nature, ok
}

// Nature returns the expense nature of the category, or "" when unknown.
func (c Category) Nature() ExpenseNature {
	return categoryNature[c]
}

// IsFood reports whether the category covers food purchases.
func (c Category) IsFood() bool {
	return c == CategoryFoodGroceries || c == CategoryDiningOut
}

// CategoryInfo pairs a category with its nature for listings.
type CategoryInfo struct {
	Name   Category      `json:"name"`
	Nature ExpenseNature `json:"nature"`
}

// AllowedCategories returns every recognized category sorted by nature, then name.
func AllowedCategories() []CategoryInfo {
	order := map[ExpenseNature]int{NatureFixed: 0, NatureVariable: 1, NatureDiscretionary: 2}

	infos := make([]CategoryInfo, 0, len(categoryNature))
	for cat, nature := range categoryNature {
		infos = append(infos, CategoryInfo{Name: cat, Nature: nature})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Nature != infos[j].Nature {
			return order[infos[i].Nature] < order[infos[j].Nature]
		}
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// AllowedCategoryNames returns the sorted list of recognized category names.
func AllowedCategoryNames() []string {
	names := make([]string, 0, len(categoryNature))
	for cat := range categoryNature {
		names = append(names, string(cat))
	}
	sort.Strings(names)
	return names
}
