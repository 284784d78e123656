package assistant

import (
	"fmt"
	"strings"

	"scholarchat/internal/model"
	"scholarchat/internal/search"
)

// systemInstruction scopes the model to scholarship assistance.
const systemInstruction = "You are a scholarship assistant. Answer only questions about scholarships, grants, and financial aid for students."

// keywords gate which messages reach the model. The match is literal
// substring only; "funding for college" is rejected even though it is
// semantically on-topic.
var keywords = []string{"scholarship", "grant", "fellowship", "financial aid", "stipend", "bursary"}

// RefusalMessage is returned for off-topic messages, without touching the
// model or search.
const RefusalMessage = "This assistant only searches about scholarships.\n" +
	"Please ask something like:\n" +
	"- Scholarship for engineering students\n" +
	"- Merit scholarship\n" +
	"- OBC scholarship"

// UnavailableMessage is returned when no model credentials are configured.
const UnavailableMessage = "The scholarship assistant is not available right now. Please try again later."

// FallbackMessage is returned when the model call fails for any reason.
const FallbackMessage = "The assistant could not process your question. Please try again."

// OnTopic reports whether the message passes the scholarship keyword gate.
func OnTopic(message string) bool {
	lower := strings.ToLower(message)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// buildResultPrompt embeds the student's profile and the top search result
// and asks for a structured breakdown.
func buildResultPrompt(student *model.Student, result *search.Result) string {
	var b strings.Builder
	b.WriteString("You are a scholarship assistant.\n\n")
	b.WriteString("### Student Info\n")
	fmt.Fprintf(&b, "Name: %s\n", student.Name)
	fmt.Fprintf(&b, "Gender: %s\n", student.Gender)
	fmt.Fprintf(&b, "DOB: %s\n", student.DOB)
	fmt.Fprintf(&b, "Income: %s\n", student.TotalIncome)
	fmt.Fprintf(&b, "Caste: %s\n", student.Caste)
	fmt.Fprintf(&b, "Father: %s\n", student.FatherOccupation)
	fmt.Fprintf(&b, "Mother: %s\n", student.MotherOccupation)
	b.WriteString("\n### Scholarship Found\n")
	fmt.Fprintf(&b, "**%s**\n%s\nLink: %s\n", result.Title, result.Snippet, result.Link)
	b.WriteString("\n### Task:\n")
	b.WriteString("Explain in clear sections:\n")
	b.WriteString("- Summary\n")
	b.WriteString("- Eligibility\n")
	b.WriteString("- Student Eligibility (Yes/No)\n")
	b.WriteString("- Documents Needed\n")
	b.WriteString("- Benefits\n")
	b.WriteString("- Application Link\n")
	return b.String()
}

// buildGenericPrompt asks for matching scholarships when no specific result
// is available.
func buildGenericPrompt(message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "No specific scholarship found for: %s\n\n", message)
	b.WriteString("Provide:\n")
	b.WriteString("- 5 matching scholarships\n")
	b.WriteString("- Eligibility\n")
	b.WriteString("- Benefits\n")
	b.WriteString("- Apply links\n")
	return b.String()
}
