package prompts

import (
	"fmt"
	"strings"

	"github.com/timmy/hotelsense/internal/catalog"
)

// ============================================================================
// Shared vocabularies
// ============================================================================

func categoryLabels() []string {
	cats := catalog.Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// HotelWideAmenityLabels and RoomAmenityLabels make up the amenity vocabulary.
var HotelWideAmenityLabels = []string{
	"24-hour-front-desk", "free-parking", "swimming-pool", "fitness-center", "spa-services",
}

var RoomAmenityLabels = []string{
	"free-wi-fi", "air-conditioning", "flat-screen-tv", "complimentary-toiletries",
	"towels", "hairdryer", "mini-fridge", "coffee/tea-maker", "daily-housekeeping",
}

// ============================================================================
// Vision prompts
// ============================================================================

// SystemPrompt is shared by every vision call.
const SystemPrompt = `You annotate hotel listing photos. Follow the requested output format exactly and add nothing else.`

// CategorizePrompt asks for exactly one category label.
var CategorizePrompt = `Categorize this image strictly into ONE of these categories:
` + bulletList(categoryLabels()) + `

Return ONLY the category name (no quotes or explanations).`

// RoomPrompt asks for a creative name and a standardized type as JSON.
// The storage path is appended as a hint when known.
func RoomPrompt(pathHint string) string {
	var b strings.Builder
	b.WriteString(`Analyze this hotel room image and return JSON with:
- "name": creative name (max 3 words)
- "type": standardized from: `)
	b.WriteString(strings.Join(catalog.RoomTypes, ", "))
	b.WriteString(`

Return ONLY the JSON object, for example {"name": "Ocean Breeze", "type": "double_room"}.`)
	if pathHint != "" {
		fmt.Fprintf(&b, "\n\nThe image is stored at %q; directory names may hint at the room.", pathHint)
	}
	return b.String()
}

// AmenityPrompt asks for a comma-separated list of visible amenities.
var AmenityPrompt = `Analyze this hotel image and return ONLY a comma-separated list of these standardized amenity names that you can visibly identify in the image:

General Amenities (hotel-wide):
` + bulletList(HotelWideAmenityLabels) + `

Room Amenities:
` + bulletList(RoomAmenityLabels) + `

Example response: free-wi-fi,air-conditioning,swimming-pool`

// QualityPrompt asks for a 0-100 score with a short reason as JSON.
const QualityPrompt = `Analyze this hotel image and provide a quality score (0-100) considering:
1. Composition and framing (30%)
2. Technical quality (25%)
3. Aesthetic appeal (20%)
4. Representative value (25%)

Return ONLY JSON format:
{"score": 75, "reason": "Well composed but slightly dark"}`

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}
