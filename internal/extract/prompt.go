// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"text/template"
)

// extractionPromptTmpl asks the classifier for the seed record of one
// message: whether it carries URLs and brand names, and which.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`Extract any URLs and brand names from the following SMS message.
Your output should be in JSON format and should not have any other output:
- is_URL: true or false
- URLs: if there is no URL in the SMS, answer "none". If there are URLs, answer a list where each element is a URL exactly as it appears in the SMS, in order of appearance.
- is_brand: true or false
- brands: if there is no brand name in the SMS, answer "none". If there are brand names, answer a list where each element is a brand name, in order of appearance. Brand names may be taken from the SMS text and from the URLs.

SMS message:
{{.Message}}
`))

// renderPrompt executes the extraction prompt template with the given message.
func renderPrompt(message string) (string, error) {
	var buf bytes.Buffer
	if err := extractionPromptTmpl.Execute(&buf, struct{ Message string }{Message: message}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
