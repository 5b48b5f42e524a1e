package prompts

import (
	"strings"
	"testing"

	"github.com/timmy/hotelsense/internal/catalog"
)

func TestRoomPromptIncludesHint(t *testing.T) {
	p := RoomPrompt("hotels/h1/r23/img.png")
	if !strings.Contains(p, `"hotels/h1/r23/img.png"`) {
		t.Errorf("hint missing from prompt: %s", p)
	}
	if strings.Contains(RoomPrompt(""), "stored at") {
		t.Error("empty hint should not be mentioned")
	}
	for _, rt := range catalog.RoomTypes {
		if !strings.Contains(p, rt) {
			t.Errorf("room type %q missing from prompt", rt)
		}
	}
}

func TestListPrompts(t *testing.T) {
	for _, c := range catalog.Categories() {
		if !strings.Contains(CategorizePrompt, "- "+string(c)) {
			t.Errorf("category %q missing from prompt", c)
		}
	}
	for _, a := range append(HotelWideAmenityLabels, RoomAmenityLabels...) {
		if !strings.Contains(AmenityPrompt, "- "+a) {
			t.Errorf("amenity %q missing from prompt", a)
		}
	}
}
