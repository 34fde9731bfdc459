package prompt

import "strings"

var quotes = strings.NewReplacer(
	`"`, "", "'", "", "`", "",
	"“", "", "”", "", "‘", "", "’", "",
	"「", "", "」", "", "『", "", "』", "",
	"《", "", "》", "", "〈", "", "〉", "",
)

// Sanitize strips quotation marks and collapses whitespace.
func Sanitize(text string) string {
	return strings.Join(strings.Fields(quotes.Replace(text)), " ")
}
