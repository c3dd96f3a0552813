package finance

// Scenario multipliers and probabilities are fixed by the methodology, not
// configurable.
const (
	optimisticMultiplier  = 1.3
	pessimisticMultiplier = 0.7

	optimisticProbability  = 0.25
	pessimisticProbability = 0.25
	realisticProbability   = 0.50
)

// GenerateScenarios projects a base monthly sales volume into the three
// fixed planning scenarios.
func GenerateScenarios(baseVolume float64) ScenarioSet {
	return ScenarioSet{
		Optimistic:  Scenario{Label: "optimistic", Volume: Round2(baseVolume * optimisticMultiplier), Probability: optimisticProbability},
		Pessimistic: Scenario{Label: "pessimistic", Volume: Round2(baseVolume * pessimisticMultiplier), Probability: pessimisticProbability},
		Realistic:   Scenario{Label: "realistic", Volume: Round2(baseVolume), Probability: realisticProbability},
	}
}
