package osf

import (
	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/openaccess/exchange/util"
	"strings"
)

// CreateTags turns the comma-separated tags of the metadata form
// into a list, dropping blanks.
func CreateTags(tags string) []string {
	return util.SplitAndTrim(tags, ",")
}

// KillHTML returns the text of an HTML abstract. Markup that has
// a plain-text equivalent, like emphasis or links, comes out as
// Markdown. Input that cannot be parsed is returned trimmed.
func KillHTML(html string) string {
	converter := md.NewConverter("", true, nil)
	text, err := converter.ConvertString(html)
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(text)
}
