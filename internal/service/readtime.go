package service

import (
	"math"
	"regexp"

	"github.com/templui/spacetraveling/internal/model"
	"github.com/templui/spacetraveling/internal/richtext"
)

const wordsPerMinute = 200

var nonWord = regexp.MustCompile(`\W+`)

// WordCount counts the words in the body of every content block. Headings are
// not counted.
func WordCount(content []model.ContentBlock) int {
	words := 0
	for _, block := range content {
		for _, token := range nonWord.Split(richtext.AsText(block.Body), -1) {
			if token != "" {
				words++
			}
		}
	}
	return words
}

// ReadingTime estimates minutes to read the content, rounded up.
func ReadingTime(content []model.ContentBlock) int {
	return int(math.Ceil(float64(WordCount(content)) / wordsPerMinute))
}
