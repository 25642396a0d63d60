package prompt

import (
	"strings"

	"github.com/storyboarder/ai-service/internal/model"
)

// BuildRefinementPrompt builds the prompt for a refinement pass. The previous
// panel is not sent to the backend; the refinement is text guidance layered on
// a fresh generation.
func BuildRefinementPrompt(req model.RefinePanelRequest) string {
	var b strings.Builder
	b.WriteString("Refine this storyboard panel: ")
	b.WriteString(req.RefinementPrompt)
	b.WriteString(". ")
	b.WriteString("Maintain the same style, composition, and visual consistency as the original panel. ")
	b.WriteString("Only change what is specified in the refinement request. ")
	b.WriteString("Keep it as a professional storyboard sketch, draft quality.")
	return b.String()
}
