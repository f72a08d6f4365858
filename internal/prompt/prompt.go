// Package prompt holds the fixed generation templates for the three bingo
// asset kinds. A template is filled by plain string replacement of its theme
// placeholder; nothing is escaped or validated.
package prompt

import "strings"

// Kind selects a template.
type Kind string

const (
	KindBackgroundVideo Kind = "background_video"
	KindBingoCard       Kind = "bingo_card"
	KindBallCaller      Kind = "ball_caller"
)

const (
	videoPlaceholder = "{THEME}"
	imagePlaceholder = "{theme}"

	defaultImageTheme = "classic"
)

type template struct {
	text         string
	placeholder  string
	defaultTheme string
}

var templates = map[Kind]template{
	KindBackgroundVideo: {text: backgroundVideoTemplate, placeholder: videoPlaceholder},
	KindBingoCard:       {text: bingoCardTemplate, placeholder: imagePlaceholder, defaultTheme: defaultImageTheme},
	KindBallCaller:      {text: ballCallerTemplate, placeholder: imagePlaceholder, defaultTheme: defaultImageTheme},
}

// Build returns the prompt for kind with theme substituted. An empty theme
// uses the kind's default; unknown kinds use the background video template.
func Build(kind Kind, theme string) string {
	tpl, ok := templates[kind]
	if !ok {
		tpl = templates[KindBackgroundVideo]
	}
	if theme == "" {
		theme = tpl.defaultTheme
	}
	return strings.ReplaceAll(tpl.text, tpl.placeholder, theme)
}
