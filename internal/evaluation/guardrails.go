package evaluation

type GuardrailConfig struct {
	MinIntentConfidence float64
	MaxEntitiesPerQuery int
	MaxQueryLength      int
}

type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MaxEntitiesPerQuery <= 0 {
		config.MaxEntitiesPerQuery = 10
	}
	if config.MaxQueryLength <= 0 {
		config.MaxQueryLength = 512
	}
	if config.MinIntentConfidence <= 0 {
		config.MinIntentConfidence = 0.4
	}
	return &Guardrails{config: config}
}

func (g *Guardrails) ShouldProcess(confidence float64) bool {
	return confidence >= g.config.MinIntentConfidence
}

func (g *Guardrails) MaxEntities() int {
	return g.config.MaxEntitiesPerQuery
}

func (g *Guardrails) WithinLength(query string) bool {
	return len(query) <= g.config.MaxQueryLength
}
