package core

// Category taxonomy. Aggregation and storage operate on category keys only;
// display labels live in a separate (language, key) lookup so business logic
// never touches language-dependent strings.

var categoriesByType = map[TransactionType][]string{
	Income:  {"salary", "business", "investment", "other"},
	Expense: {"food", "transport", "rent", "utilities", "entertainment", "healthcare", "education", "other"},
	Saving:  {"emergency", "investment", "vacation", "education", "other"},
}

// CategoriesFor returns the category keys valid for a transaction type.
func CategoriesFor(t TransactionType) []string {
	keys := categoriesByType[t]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// ValidCategory reports whether key is a known category for the given type.
func ValidCategory(t TransactionType, key string) bool {
	for _, k := range categoriesByType[t] {
		if k == key {
			return true
		}
	}
	return false
}

var categoryLabels = map[Language]map[string]string{
	LangEnglish: {
		"salary":        "Salary",
		"business":      "Business",
		"investment":    "Investment",
		"food":          "Food",
		"transport":     "Transport",
		"rent":          "Rent",
		"utilities":     "Utilities",
		"entertainment": "Entertainment",
		"healthcare":    "Healthcare",
		"education":     "Education",
		"emergency":     "Emergency",
		"vacation":      "Vacation",
		"other":         "Other",
	},
	LangBengali: {
		"salary":        "বেতন",
		"business":      "ব্যবসা",
		"investment":    "বিনিয়োগ",
		"food":          "খাবার",
		"transport":     "যাতায়াত",
		"rent":          "বাড়ি ভাড়া",
		"utilities":     "ইউটিলিটি বিল",
		"entertainment": "বিনোদন",
		"healthcare":    "স্বাস্থ্য সেবা",
		"education":     "শিক্ষা",
		"emergency":     "জরুরী",
		"vacation":      "ছুটি",
		"other":         "অন্যান্য",
	},
}

// CategoryLabel returns the display label for a category key in the given
// language, falling back to the key itself when no label is defined.
func CategoryLabel(lang Language, key string) string {
	if label, ok := categoryLabels[lang][key]; ok {
		return label
	}
	return key
}
