package ui

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Locales the UI is translated into. The first one is the fallback.
var locales = []language.Tag{
	language.BrazilianPortuguese,
	language.AmericanEnglish,
}

var localeMatcher = language.NewMatcher(locales)

var ptMonths = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// Labels are the fixed UI strings of one locale.
type Labels struct {
	LoadMore     string
	Loading      string
	NotFound     string
	NotFoundText string
	BackHome     string
	UpdatedOn    string
}

var labels = []Labels{
	{
		LoadMore:     "Carregar mais posts",
		Loading:      "Carregando...",
		NotFound:     "Post não encontrado",
		NotFoundText: "O conteúdo que você procura não existe ou foi removido.",
		BackHome:     "Voltar para a página inicial",
		UpdatedOn:    "Atualizado em",
	},
	{
		LoadMore:     "Load more posts",
		Loading:      "Loading...",
		NotFound:     "Post not found",
		NotFoundText: "The content you are looking for does not exist or was removed.",
		BackHome:     "Back to the home page",
		UpdatedOn:    "Updated on",
	},
}

// Locale resolves a configured locale such as "pt-BR" or "en" to the closest
// supported one.
func Locale(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return locales[0]
	}
	_, index, _ := localeMatcher.Match(tag)
	return locales[index]
}

func LabelsFor(locale string) Labels {
	if Locale(locale) == language.AmericanEnglish {
		return labels[1]
	}
	return labels[0]
}

// FormatDate renders a publication date for display: "15 mar 2021" in
// Portuguese, "March 15, 2021" in English. Dates are shown in UTC. A nil date
// renders empty.
func FormatDate(locale string, t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	d := t.UTC()
	if Locale(locale) == language.AmericanEnglish {
		return d.Format("January 02, 2006")
	}
	return fmt.Sprintf("%d %s %d", d.Day(), ptMonths[d.Month()-1], d.Year())
}

// ISODate renders t for datetime attributes.
func ISODate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
