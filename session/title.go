package session

import (
	"regexp"
	"strings"

	"github.com/NextShop-AI/assistant-go/model"
)

// categoryTitles maps message keywords to the emoji-led title stem. Order
// matters: earlier entries win when a message mentions several.
var categoryTitles = []struct {
	keyword string
	emoji   string
	label   string
}{
	{"jacket", "🧥", "Jackets"},
	{"coat", "🧥", "Coats"},
	{"dress", "👗", "Dresses"},
	{"shirt", "👕", "Shirts"},
	{"shoe", "👟", "Shoes"},
	{"sneaker", "👟", "Sneakers"},
	{"boot", "👟", "Boots"},
	{"watch", "⌚", "Watches"},
	{"laptop", "💻", "Laptops"},
	{"phone", "📱", "Phones"},
	{"electronic", "📱", "Electronics"},
	{"jewel", "💍", "Jewellery"},
	{"bag", "👜", "Bags"},
}

var colourWords = []string{"black", "white", "red", "blue", "green", "brown", "grey", "gray", "navy", "pink"}

var budgetPattern = regexp.MustCompile(`(?i)(under|below)\s*£?\s*(\d+)`)

// deriveTitle builds a session title from the first user message: category
// emoji plus extracted qualifiers (gender, colour, budget phrase), falling
// back to the first four words capitalized.
func deriveTitle(text string) string {
	lower := strings.ToLower(text)

	for _, cat := range categoryTitles {
		if !strings.Contains(lower, cat.keyword) {
			continue
		}

		parts := []string{cat.emoji}
		if gender := genderQualifier(lower); gender != "" {
			parts = append(parts, gender)
		}
		if colour := colourQualifier(lower); colour != "" {
			parts = append(parts, colour)
		}
		parts = append(parts, cat.label)
		if m := budgetPattern.FindStringSubmatch(text); m != nil {
			parts = append(parts, strings.ToLower(m[1])+" £"+m[2])
		}
		return strings.Join(parts, " ")
	}

	words := strings.Fields(text)
	if len(words) > 4 {
		words = words[:4]
	}
	if len(words) == 0 {
		return model.DefaultSessionTitle
	}
	for i, word := range words {
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}

func genderQualifier(lower string) string {
	switch {
	case strings.Contains(lower, "women") || strings.Contains(lower, "ladies") ||
		strings.Contains(lower, "female") || strings.Contains(lower, "girls"):
		return "Women's"
	case strings.Contains(lower, "men") || strings.Contains(lower, "male") ||
		strings.Contains(lower, "guys") || strings.Contains(lower, "boys"):
		return "Men's"
	default:
		return ""
	}
}

func colourQualifier(lower string) string {
	for _, colour := range colourWords {
		if strings.Contains(lower, colour) {
			return capitalize(colour)
		}
	}
	return ""
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

func titleHasProductKeyword(title string) bool {
	lower := strings.ToLower(title)
	for _, cat := range categoryTitles {
		if strings.Contains(lower, strings.ToLower(cat.label)) ||
			strings.Contains(lower, cat.emoji) {
			return true
		}
	}
	return false
}
