// Copyright (c) 2026 Vitrine. All rights reserved.

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitrineapp/vitrine/pkg/slug"
)

/*
TestFrom covers diacritic folding, case normalization, and separator handling.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Notion", "notion"},
		{"spaces", "Spotify Web Player", "spotify-web-player"},
		{"diacritics", "Café Notes", "cafe-notes"},
		{"punctuation", "What's App?!", "what-s-app"},
		{"multiple_separators", "a  --  b", "a-b"},
		{"trims_edges", "  Figma  ", "figma"},
		{"digits", "Wordle 2", "wordle-2"},
		{"only_symbols", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
