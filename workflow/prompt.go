package workflow

import "strings"

// DiffPlaceholder marks where the staged diff is substituted into the user
// prompt template.
const DiffPlaceholder = "{}"

// BuildUserPrompt substitutes the diff into the template. Templates without
// a placeholder get the diff appended as a fenced block so a miswritten
// custom prompt still produces a usable request.
func BuildUserPrompt(template, diff string) string {
	if strings.Contains(template, DiffPlaceholder) {
		return strings.Replace(template, DiffPlaceholder, diff, 1)
	}
	return template + "\n\n```diff\n" + diff + "\n```"
}
