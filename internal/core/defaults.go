package core

// Built-in category sets seeded for new accounts. Users can rename,
// reorder, or delete them afterwards; is_default only marks provenance.

func DefaultExpenseCategories() []Category {
	return defaults(ExpenseCategory, []Category{
		{Name: "Food", Icon: "🍚", Color: "#FF6B6B"},
		{Name: "Cafe", Icon: "☕", Color: "#A47148"},
		{Name: "Transport", Icon: "🚌", Color: "#4D96FF"},
		{Name: "Shopping", Icon: "🛍️", Color: "#FFB84C"},
		{Name: "Housing", Icon: "🏠", Color: "#6BCB77"},
		{Name: "Health", Icon: "💊", Color: "#9D4EDD"},
		{Name: "Leisure", Icon: "🎮", Color: "#FF9F1C"},
		{Name: "Subscriptions", Icon: "📺", Color: "#577590"},
		{Name: "Etc", Icon: "📦", Color: "#8D99AE"},
	})
}

func DefaultIncomeCategories() []Category {
	return defaults(IncomeCategory, []Category{
		{Name: "Salary", Icon: "💼", Color: "#4D96FF"},
		{Name: "Side Income", Icon: "💡", Color: "#FFB84C"},
		{Name: "Allowance", Icon: "🎁", Color: "#FF6B6B"},
		{Name: "Investment", Icon: "📈", Color: "#6BCB77"},
		{Name: "Etc", Icon: "📦", Color: "#8D99AE"},
	})
}

func defaults(kind CategoryKind, categories []Category) []Category {
	for i := range categories {
		categories[i].Kind = kind
		categories[i].OrderIndex = i
		categories[i].IsDefault = true
	}
	return categories
}
