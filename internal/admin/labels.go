package admin

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var minorWords = map[string]bool{"or": true, "of": true, "and": true, "to": true}

// Label is an enumeration value with a display string
type Label struct {
	Value int    `json:"value"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Humanize turns an identifier such as "LessThanOrEqual" or "PKPoints" into
// "Less Than or Equal" / "PK Points"
func Humanize(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return ""
	}
	title := cases.Title(language.English, cases.NoLower)
	lower := cases.Lower(language.English)
	for i, w := range words {
		if i > 0 && minorWords[strings.ToLower(w)] {
			words[i] = lower.String(w)
			continue
		}
		words[i] = title.String(w)
	}
	return strings.Join(words, " ")
}

// splitWords breaks on spaces, underscores and camel-case boundaries, keeping
// acronyms together
func splitWords(s string) []string {
	var words []string
	var cur []rune
	rs := []rune(s)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range rs {
		if r == ' ' || r == '_' || r == '-' {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

func labels(values []dialogue.EnumValue) []Label {
	out := make([]Label, len(values))
	for i, v := range values {
		out[i] = Label{Value: v.Value, Name: v.Name, Label: Humanize(v.Name)}
	}
	return out
}

// refLabel renders a cross-referenced record as "[id] name", or "" for no reference
func refLabel(id int, name string) string {
	if id == 0 {
		return ""
	}
	if name == "" {
		return fmt.Sprintf("[%d]", id)
	}
	return fmt.Sprintf("[%d] %s", id, name)
}
