package prompts

import (
	_ "embed"
)

//go:embed page_analysis.txt
var PageAnalysisPrompt string
