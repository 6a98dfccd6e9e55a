package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/synthesizer.txt
	synthesizerRaw string

	//go:embed template/cypher.txt
	cypherRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Router      string
	Synthesizer string
	Cypher      string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:      strings.TrimSpace(routerRaw),
		Synthesizer: strings.TrimSpace(synthesizerRaw),
		Cypher:      strings.TrimSpace(cypherRaw),
	}
}
