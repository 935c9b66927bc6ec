package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestFormatDate(t *testing.T) {
	date := time.Date(2021, 3, 15, 19, 25, 28, 0, time.UTC)
	june := time.Date(2021, 6, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		locale string
		date   *time.Time
		want   string
	}{
		{locale: "pt-BR", date: &date, want: "15 mar 2021"},
		{locale: "pt-BR", date: &june, want: "5 jun 2021"},
		{locale: "en-US", date: &date, want: "March 15, 2021"},
		{locale: "en-US", date: &june, want: "June 05, 2021"},
		{locale: "en", date: &date, want: "March 15, 2021"},
		{locale: "not a locale", date: &date, want: "15 mar 2021"},
		{locale: "pt-BR", date: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.locale+"/"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.locale, tt.date))
		})
	}
}

func TestFormatDate_UsesUTC(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	late := time.Date(2021, 3, 15, 22, 0, 0, 0, saoPaulo)

	assert.Equal(t, "16 mar 2021", FormatDate("pt-BR", &late))
}

func TestLocale(t *testing.T) {
	assert.Equal(t, language.BrazilianPortuguese, Locale("pt-BR"))
	assert.Equal(t, language.BrazilianPortuguese, Locale("pt"))
	assert.Equal(t, language.AmericanEnglish, Locale("en-US"))
	assert.Equal(t, language.BrazilianPortuguese, Locale("de-DE"))
}

func TestLabelsFor(t *testing.T) {
	assert.Equal(t, "Carregar mais posts", LabelsFor("pt-BR").LoadMore)
	assert.Equal(t, "Load more posts", LabelsFor("en-US").LoadMore)
}
