// Package i18n holds the localized labels shown in the logical view. Messages
// are registered in the golang.org/x/text message catalog under their English
// text, so an unknown locale falls back to English.
package i18n

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys.
const (
	EmbeddableContainer = "Embeddable EJB Container"
	ServerMissing       = "<Missing J2EE Server>"
	DefaultPackage      = "<default package>"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		EmbeddableContainer: EmbeddableContainer,
		ServerMissing:       ServerMissing,
		DefaultPackage:      DefaultPackage,
	},
	language.German: {
		EmbeddableContainer: "Einbettbarer EJB-Container",
		ServerMissing:       "<Fehlender J2EE-Server>",
		DefaultPackage:      "<Standardpaket>",
	},
}

// Supported lists the locales with translations.
var Supported = []language.Tag{language.English, language.German}

var matcher = language.NewMatcher(Supported)

func init() {
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := message.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

var (
	mu      sync.RWMutex
	current = message.NewPrinter(language.English)
)

// Printer returns a printer for the best supported match of lang, e.g. "de",
// "de-AT" or "en_US". Unparseable input yields English.
func Printer(lang string) *message.Printer {
	return message.NewPrinter(Match(lang))
}

// Match returns the supported locale closest to lang.
func Match(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	_, idx, _ := matcher.Match(tag)
	return Supported[idx]
}

// SetLanguage changes the process-wide default printer.
func SetLanguage(lang string) {
	p := Printer(lang)
	mu.Lock()
	current = p
	mu.Unlock()
}

// Default returns the process-wide printer.
func Default() *message.Printer {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Text translates key with the process-wide printer.
func Text(key string) string {
	return Default().Sprintf(key)
}
