package results

import (
	"fmt"
	"strings"
	"time"
)

// ExportReviewSheet renders a plain-text review sheet of the incorrect
// answers in a summary, suitable for download.
func ExportReviewSheet(s Summary, now time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Quiz Review Sheet\n")
	fmt.Fprintf(&sb, "Score: %d/%d (%d%%)\n", s.Correct, s.Total, s.Percent)
	fmt.Fprintf(&sb, "Incorrect Answers: %d\n", len(s.Wrong))
	fmt.Fprintf(&sb, "Date: %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&sb, "\n%s\n\n", strings.Repeat("=", 80))

	for i, entry := range s.Wrong {
		fmt.Fprintf(&sb, "Question %d:\n", i+1)
		fmt.Fprintf(&sb, "%s\n\n", entry.QuestionText)
		fmt.Fprintf(&sb, "Your Answer (%s): %s\n", entry.SelectedKey, entry.Options[entry.SelectedKey])
		fmt.Fprintf(&sb, "Correct Answer (%s): %s\n\n", entry.CorrectKey, entry.Options[entry.CorrectKey])
		fmt.Fprintf(&sb, "Explanation:\n%s\n", entry.Explanation)
		fmt.Fprintf(&sb, "\n%s\n\n", strings.Repeat("-", 80))
	}

	return sb.String()
}

// ExportFilename returns the dated filename for a review-sheet download.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("quiz-review-%s.txt", now.Format("2006-01-02"))
}
