package core

// DefaultCategoryColor is used for categories outside the catalogue.
const DefaultCategoryColor = "#6B7280"

type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Categories is the fixed catalogue offered to clients.
var Categories = []Category{
	{Name: "Food & Dining", Color: "#EF4444"},
	{Name: "Transportation", Color: "#3B82F6"},
	{Name: "Shopping", Color: "#8B5CF6"},
	{Name: "Entertainment", Color: "#F59E0B"},
	{Name: "Bills & Utilities", Color: "#10B981"},
	{Name: "Healthcare", Color: "#EC4899"},
	{Name: "Education", Color: "#6366F1"},
	{Name: "Travel", Color: "#14B8A6"},
	{Name: "Investment", Color: "#84CC16"},
	{Name: "Salary", Color: "#22C55E"},
	{Name: "Business", Color: "#F97316"},
	{Name: "Other", Color: DefaultCategoryColor},
}

func CategoryColor(name string) string {
	for _, c := range Categories {
		if c.Name == name {
			return c.Color
		}
	}
	return DefaultCategoryColor
}
