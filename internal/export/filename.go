package export

import "strings"

const DefaultMaxTitleLen = 50

var separatorReplacer = strings.NewReplacer("/", "_", `\`, "_")

// SanitizeTitle replaces path separators so a title can never name a
// subdirectory, then truncates it to maxLen characters.
func SanitizeTitle(title string, maxLen int) string {
	s := separatorReplacer.Replace(title)
	if maxLen > 0 {
		runes := []rune(s)
		if len(runes) > maxLen {
			s = string(runes[:maxLen])
		}
	}
	return s
}

// FileName returns the CSV file name for a conversation title.
func FileName(title string, maxLen int) string {
	return SanitizeTitle(title, maxLen) + ".csv"
}
