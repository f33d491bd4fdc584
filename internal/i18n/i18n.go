// Package i18n holds the few user-visible strings the client generates
// itself: the default title of a freshly created todo and the label shown
// for todos without a title.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Makepad-fr/tada/internal/model"
)

const (
	keyPlaceholder = "New todo"
	keyUntitled    = "Untitled #%s"
)

var supported = []language.Tag{language.English, language.Korean}

func init() {
	message.SetString(language.English, keyPlaceholder, "New todo")
	message.SetString(language.English, keyUntitled, "Untitled #%s")
	message.SetString(language.Korean, keyPlaceholder, "새할일")
	message.SetString(language.Korean, keyUntitled, "할 일 #%s")
}

// Locale renders client-generated labels in one language.
type Locale struct {
	tag language.Tag
	p   *message.Printer
}

// New picks the closest supported language for a BCP 47 name such as
// "ko", "ko-KR" or "en_US". Unknown or empty names fall back to English.
func New(name string) Locale {
	tag := language.English
	if name != "" {
		if t, err := language.Parse(name); err == nil {
			tag = t
		}
	}
	matched, _, _ := language.NewMatcher(supported).Match(tag)
	base, _ := matched.Base()
	tag = language.Make(base.String())
	return Locale{tag: tag, p: message.NewPrinter(tag)}
}

func (l Locale) Tag() language.Tag { return l.tag }

// Placeholder is the title submitted by the default create flow.
func (l Locale) Placeholder() string { return l.printer().Sprintf(keyPlaceholder) }

// Label returns the title to display for t. Stored data is never touched.
func (l Locale) Label(t model.Todo) string {
	if t.Title != "" {
		return t.Title
	}
	return l.printer().Sprintf(keyUntitled, t.ID.String())
}

func (l Locale) printer() *message.Printer {
	if l.p == nil {
		return message.NewPrinter(language.English)
	}
	return l.p
}
