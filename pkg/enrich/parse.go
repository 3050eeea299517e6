package enrich

import "strings"

const disclaimer = "The following text is AI generated and should be treated as a suggestion."

// parseCompletion renders the raw model response into guidance lines.
// Fenced code regions pass through verbatim; prose lines are split into
// sentences, each terminated with "." or ":". The result starts with the
// disclaimer and a blank line.
func parseCompletion(content string) []string {
	if content == "" {
		return nil
	}

	result := []string{disclaimer, ""}

	inCodeBlock := false
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		switch {
		case strings.Contains(line, "```"):
			inCodeBlock = !inCodeBlock
		case inCodeBlock:
			result = append(result, line)
		case line == "":
			result = append(result, line)
		default:
			for _, sentence := range strings.Split(strings.TrimSpace(line), ". ") {
				if !strings.HasSuffix(sentence, ".") && !strings.HasSuffix(sentence, ":") {
					sentence += "."
				}
				result = append(result, sentence)
			}
		}
	}

	return result
}
