package site

import (
	"bytes"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	mdp "github.com/gomarkdown/markdown/parser"
)

// AboutHTML renders the about page markdown as an HTML fragment for
// the ABOUT marker of the index template. Raw HTML in the source is
// dropped and links open in a new tab.
func AboutHTML(md []byte) string {
	md = bytes.TrimSpace(markdown.NormalizeNewlines(md))
	if len(md) == 0 {
		return ""
	}
	p := mdp.NewWithExtensions(mdp.CommonExtensions | mdp.AutoHeadingIDs | mdp.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML,
	})
	return string(markdown.ToHTML(md, p, renderer))
}
