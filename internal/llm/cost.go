package llm

// pricing is USD per 1K tokens, [input, output].
var pricing = map[string][2]float64{
	"gemini-flash-latest": {0.0003, 0.0025},
	"gemini-2.5-flash":    {0.0003, 0.0025},
	"gemini-2.5-pro":      {0.00125, 0.01},

	"gpt-4o":      {0.0025, 0.01},
	"gpt-4o-mini": {0.00015, 0.0006},

	"claude-3-5-haiku-latest":  {0.0008, 0.004},
	"claude-sonnet-4-20250514": {0.003, 0.015},
}

func estimateCost(model string, u Usage) float64 {
	p, ok := pricing[model]
	if !ok {
		return 0
	}
	return float64(u.InputTokens)/1000*p[0] + float64(u.OutputTokens)/1000*p[1]
}
