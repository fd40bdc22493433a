package resolve

import "fmt"

// Advisory renders a resolution failure as a sentence suitable for speaking
// or displaying back to the user. It is a pure formatter; the interesting
// decisions were already made by Resolve.
func Advisory(target string, result Result) string {
	if result.Resolved {
		return ""
	}
	if result.Suggestion != "" {
		return fmt.Sprintf("No device called %q. Did you mean %q?", target, result.Suggestion)
	}
	return fmt.Sprintf("No device called %q.", target)
}
