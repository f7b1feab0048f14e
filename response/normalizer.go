// Package response normalizes the heterogeneous payloads the Nex reasoning
// server returns into one canonical shape. The backend does not guarantee a
// single payload form, so interpretation lives here and nowhere else.
package response

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/NextShop-AI/assistant-go/model"

	"github.com/rs/zerolog/log"
)

// FallbackMessage is returned when nothing recognizable is found in a payload.
const FallbackMessage = "Sorry, I couldn't process that response. Please try again."

// ProcessedResponse is the canonical response consumed by the rest of the
// assistant. Products distinguishes nil (no product-bearing response) from an
// empty slice (searched, found nothing).
type ProcessedResponse struct {
	Message     string
	DisplayMode model.DisplayMode
	Products    []model.Product
	Actions     []model.Action
	TotalFound  int
	Steps       []model.Step
}

// NormalizeRaw decodes a raw payload and normalizes it. Undecodable input
// takes the fallback path rather than surfacing an error.
func NormalizeRaw(raw []byte) ProcessedResponse {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Warn().Err(err).Msg("Undecodable assistant payload, using fallback")
		return fallbackResponse()
	}
	return Normalize(payload)
}

// Normalize converts an arbitrary decoded payload into a ProcessedResponse.
// Extraction order, first match wins:
//  1. bare string
//  2. wrapped form {success, result}
//  3. bare object with message/text/content
//  4. anything else falls back to a fixed apologetic message
func Normalize(payload any) ProcessedResponse {
	switch v := payload.(type) {
	case string:
		return ProcessedResponse{Message: v, DisplayMode: model.DisplayChatOnly}
	case []any:
		// A bare product array is a valid, if terse, response.
		products := model.ProductsFromAny(v)
		return ProcessedResponse{
			Message:     fmt.Sprintf("Found %d products", len(products)),
			DisplayMode: model.DisplayChatOnly,
			Products:    products,
			TotalFound:  len(products),
		}
	case map[string]any:
		if truthy(v["success"]) {
			if result, ok := v["result"].(map[string]any); ok {
				return normalizeObject(result)
			}
		}
		return normalizeObject(v)
	default:
		return fallbackResponse()
	}
}

func normalizeObject(obj map[string]any) ProcessedResponse {
	pr := ProcessedResponse{DisplayMode: model.DisplayChatOnly}

	for _, key := range []string{"message", "text", "content"} {
		if s, ok := obj[key].(string); ok && s != "" {
			pr.Message = s
			break
		}
	}

	if mode, ok := obj["displayMode"].(string); ok {
		switch model.DisplayMode(mode) {
		case model.DisplayChatOnly, model.DisplayAutoNavigate, model.DisplayDualView:
			pr.DisplayMode = model.DisplayMode(mode)
		}
	}

	source := obj
	if data, ok := obj["data"].(map[string]any); ok {
		source = data
		if total, ok := data["totalFound"].(float64); ok {
			pr.TotalFound = int(total)
		}
	} else if data, ok := obj["data"].([]any); ok {
		pr.Products = model.ProductsFromAny(data)
		source = nil
	}

	if source != nil {
		pr.Products = extractProducts(source)
	}
	if pr.TotalFound == 0 && pr.Products != nil {
		pr.TotalFound = len(pr.Products)
	}

	if actions, ok := obj["actions"].([]any); ok {
		pr.Actions = extractActions(actions)
	}
	if steps, ok := obj["steps"].([]any); ok {
		pr.Steps = extractSteps(steps)
	}

	if pr.Message == "" && pr.Products == nil && len(pr.Actions) == 0 {
		return fallbackResponse()
	}
	if pr.Message == "" {
		pr.Message = FallbackMessage
	}

	return pr
}

// extractProducts accepts, in order, .products, .results, .items. A missing
// key yields nil, not an empty slice.
func extractProducts(obj map[string]any) []model.Product {
	for _, key := range []string{"products", "results", "items"} {
		if arr, ok := obj[key].([]any); ok {
			return model.ProductsFromAny(arr)
		}
	}
	return nil
}

func extractActions(raw []any) []model.Action {
	actions := make([]model.Action, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		actionType, ok := m["type"].(string)
		if !ok || actionType == "" {
			continue
		}
		action := model.Action{Type: actionType}
		if payload, ok := m["payload"].(map[string]any); ok {
			action.Payload = payload
		}
		actions = append(actions, action)
	}
	return actions
}

func extractSteps(raw []any) []model.Step {
	steps := make([]model.Step, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		step := model.Step{}
		if n, ok := m["step"].(float64); ok {
			step.Step = int(n)
		}
		if desc, ok := m["description"].(string); ok {
			step.Description = desc
		}
		if status, ok := m["status"].(string); ok {
			step.Status = status
		}
		steps = append(steps, step)
	}
	return steps
}

func fallbackResponse() ProcessedResponse {
	return ProcessedResponse{Message: FallbackMessage, DisplayMode: model.DisplayChatOnly}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "false"
	default:
		return false
	}
}

// navigationThreshold is the dual-view heuristic: more products than this
// forces navigation even without an explicit auto_navigate mode.
const navigationThreshold = 3

// ShouldNavigate reports whether a response should move the user to a
// product view.
func ShouldNavigate(pr ProcessedResponse) bool {
	return pr.DisplayMode == model.DisplayAutoNavigate || len(pr.Products) > navigationThreshold
}

// NavigationPayload extracts the first navigate action's payload, defaulting
// to the generic product listing.
func NavigationPayload(pr ProcessedResponse) map[string]any {
	for _, action := range pr.Actions {
		if action.Type == "navigate" && action.Payload != nil {
			return action.Payload
		}
	}
	return map[string]any{"path": "/products"}
}

// Decorate prefixes a message with a display indicator matched from its
// content. Purely cosmetic; stored text is never decorated.
func Decorate(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "found") && strings.Contains(lower, "product"):
		return "🔍 " + message
	case strings.Contains(lower, "cart"):
		return "🛒 " + message
	case strings.Contains(lower, "wishlist"):
		return "💝 " + message
	case strings.Contains(lower, "error"), strings.Contains(lower, "sorry"):
		return "⚠️ " + message
	case strings.Contains(lower, "help"), strings.Contains(lower, "assist"):
		return "💡 " + message
	default:
		return message
	}
}
