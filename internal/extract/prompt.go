package extract

import "fmt"

// extractionPrompt embeds the raw job-offer text in the extraction
// instructions. The field list and the sentinel wording must stay aligned
// with the contract in the schema package.
func extractionPrompt(text string) string {
	return fmt.Sprintf(
		`Extract the following information from the job offer text and return it as a JSON object: `+
			`jobTitle, company, location, jobType, responsibilities (as an array of strings), `+
			`requirements (as an array of strings), benefits (as an array of strings), and `+
			`applicationDeadline. If a field is not found, use a short, descriptive string like `+
			`"Not specified". Here is the job offer text: %s%s`,
		"\n\n", text)
}
