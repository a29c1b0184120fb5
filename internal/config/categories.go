package config

const (
	CategoryInformation = "🕯️ Information"
	CategoryUtilities   = "📢 Utilities"
	CategoryGameplay    = "🎲 Gameplay"
	CategoryModeration  = "🛡️ Moderation"
	CategoryCleanup     = "🧹 Cleanup"
)

// CategoryWeights orders command categories in help listings. Unknown
// categories sort last.
var CategoryWeights = map[string]int{
	CategoryInformation: 0,
	CategoryUtilities:   10,
	CategoryGameplay:    20,
	CategoryModeration:  40,
	CategoryCleanup:     45,
}

// CategoryWeight returns the sort weight of category.
func CategoryWeight(category string) int {
	if w, ok := CategoryWeights[category]; ok {
		return w
	}
	return 1000
}
