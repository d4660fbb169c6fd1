// Package prompts embeds the chat completion prompt templates.
package prompts

import "embed"

//go:embed *.txt
var FS embed.FS
