// Package dictionary holds the curated starter set of category groups and
// categories offered when a new budget is created.
package dictionary

import "github.com/thgaskell/budget-sub000/internal/slug"

type CategoryDef struct {
    Code  string `json:"code"`
    Label string `json:"label"`
}

type GroupDef struct {
    Code       string        `json:"code"`
    Label      string        `json:"label"`
    Categories []CategoryDef `json:"categories"`
}

var curated = []GroupDef{
    group("Essentials", "Rent", "Utilities", "Groceries", "Transport", "Insurance"),
    group("Quality of Life", "Dining Out", "Entertainment", "Shopping", "Subscriptions"),
    group("Savings Goals", "Emergency Fund", "Vacation", "Big Purchases"),
}

func group(label string, categoryLabels ...string) GroupDef {
    g := GroupDef{Code: slug.Slugify(label), Label: label}
    for _, l := range categoryLabels {
        g.Categories = append(g.Categories, CategoryDef{Code: slug.Slugify(l), Label: l})
    }
    return g
}

// Groups returns a copy of the curated template so callers cannot mutate
// the package state.
func Groups() []GroupDef {
    out := make([]GroupDef, len(curated))
    for i, g := range curated {
        cats := make([]CategoryDef, len(g.Categories))
        copy(cats, g.Categories)
        out[i] = GroupDef{Code: g.Code, Label: g.Label, Categories: cats}
    }
    return out
}
