// Package analyzer derives category breakdowns, ambiguity signals and
// refinement suggestions from a normalized product result set.
package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/NextShop-AI/assistant-go/model"
)

// SmartAction is a suggested follow-up the UI can offer as a one-tap query.
type SmartAction struct {
	Label string `json:"label"`
	Query string `json:"query"`
}

// Analysis is the full analyzer output for one result set.
type Analysis struct {
	Breakdown                []model.CategoryBreakdown `json:"breakdown"`
	HasMultipleCategories    bool                      `json:"hasMultipleCategories"`
	SmartActions             []SmartAction             `json:"smartActions"`
	EnhancedMessage          string                    `json:"enhancedMessage"`
	ShouldShowCategoryDialog bool                      `json:"shouldShowCategoryDialog"`
	Insights                 []string                  `json:"insights"`
}

var clothingKeywords = []string{"jacket", "clothing", "clothes", "wear", "outfit"}

var genderKeywords = []string{"men", "women", "male", "female", "ladies", "guys", "girls", "boys"}

var clothingCategories = []string{"jacket", "clothing", "apparel", "men", "women"}

const maxSuggestions = 3

// Analyze partitions products by category and computes the signals the
// assistant uses to refine an ambiguous search. Never returns an error;
// malformed or absent input takes the fallback path.
func Analyze(products []model.Product, query string) Analysis {
	if len(products) == 0 {
		return fallbackAnalysis()
	}

	breakdown := buildBreakdown(products)
	ambiguous := IsAmbiguousQuery(query)

	analysis := Analysis{
		Breakdown:             breakdown,
		HasMultipleCategories: len(breakdown) > 1,
	}
	analysis.ShouldShowCategoryDialog = shouldShowDialog(breakdown, ambiguous)
	analysis.SmartActions = buildSuggestions(breakdown, query)
	analysis.EnhancedMessage = enhancedMessage(products, breakdown)
	analysis.Insights = buildInsights(products, breakdown)

	return analysis
}

func buildBreakdown(products []model.Product) []model.CategoryBreakdown {
	type bucket struct {
		count int
		total float64
		top   model.Product
	}

	buckets := make(map[string]*bucket)
	order := []string{}
	for _, p := range products {
		b, ok := buckets[p.Category]
		if !ok {
			b = &bucket{top: p}
			buckets[p.Category] = b
			order = append(order, p.Category)
		}
		b.count++
		b.total += p.Price
		if p.Rating > b.top.Rating {
			b.top = p
		}
	}

	breakdown := make([]model.CategoryBreakdown, 0, len(buckets))
	for _, category := range order {
		b := buckets[category]
		breakdown = append(breakdown, model.CategoryBreakdown{
			Category:   category,
			Count:      b.count,
			TopProduct: b.top,
			AvgPrice:   round2(b.total / float64(b.count)),
		})
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Count > breakdown[j].Count
	})

	return breakdown
}

// IsAmbiguousQuery reports whether a query mentions clothing without naming
// a gender, which is the one case worth a clarification dialog.
func IsAmbiguousQuery(query string) bool {
	lower := strings.ToLower(query)
	if !containsAny(lower, clothingKeywords) {
		return false
	}
	return !containsAny(lower, genderKeywords)
}

// shouldShowDialog requires at least two categories each with two or more
// hits, so a single stray item never triggers a prompt.
func shouldShowDialog(breakdown []model.CategoryBreakdown, ambiguous bool) bool {
	if len(breakdown) < 2 || !ambiguous {
		return false
	}
	for _, entry := range breakdown {
		if entry.Count < 2 {
			return false
		}
	}
	return true
}

func buildSuggestions(breakdown []model.CategoryBreakdown, query string) []SmartAction {
	lower := strings.ToLower(query)
	var suggestions []SmartAction

	if !strings.Contains(lower, "under") && !strings.Contains(lower, "below") {
		suggestions = append(suggestions, SmartAction{
			Label: "Under £50",
			Query: strings.TrimSpace(query + " under £50"),
		})
		for _, entry := range breakdown {
			if entry.AvgPrice > 50 {
				suggestions = append(suggestions, SmartAction{
					Label: "Under £100",
					Query: strings.TrimSpace(query + " under £100"),
				})
				break
			}
		}
	}

	if hasClothingCategory(breakdown) && !containsAny(lower, genderKeywords) {
		suggestions = append(suggestions,
			SmartAction{Label: "Men's only", Query: strings.TrimSpace("men's " + query)},
			SmartAction{Label: "Women's only", Query: strings.TrimSpace("women's " + query)},
		)
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

func hasClothingCategory(breakdown []model.CategoryBreakdown) bool {
	for _, entry := range breakdown {
		if containsAny(strings.ToLower(entry.Category), clothingCategories) {
			return true
		}
	}
	return false
}

func enhancedMessage(products []model.Product, breakdown []model.CategoryBreakdown) string {
	if len(breakdown) == 1 {
		return fmt.Sprintf("Found %d products in %s", len(products), breakdown[0].Category)
	}
	return fmt.Sprintf("Found %d products across %d categories, mostly %s",
		len(products), len(breakdown), breakdown[0].Category)
}

func buildInsights(products []model.Product, breakdown []model.CategoryBreakdown) []string {
	var insights []string

	minPrice, maxPrice := products[0].Price, products[0].Price
	highlyRated := 0
	for _, p := range products {
		if p.Price < minPrice {
			minPrice = p.Price
		}
		if p.Price > maxPrice {
			maxPrice = p.Price
		}
		if p.Rating >= 4.5 {
			highlyRated++
		}
	}

	if maxPrice-minPrice > 20 {
		insights = append(insights, fmt.Sprintf("Prices range from £%.2f to £%.2f", minPrice, maxPrice))
	}
	if highlyRated > 0 {
		insights = append(insights, fmt.Sprintf("%d products rated 4.5 or above", highlyRated))
	}
	if len(breakdown) > 1 {
		insights = append(insights, fmt.Sprintf("Most results are in %s", breakdown[0].Category))
	}

	return insights
}

func fallbackAnalysis() Analysis {
	return Analysis{
		Breakdown:       []model.CategoryBreakdown{},
		EnhancedMessage: "I couldn't find any products matching your search.",
		Insights: []string{
			"Try a broader search term",
			"Check the spelling of product names",
			"Browse the category pages to see what's in stock",
		},
	}
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
