package moderation

// Category names follow the moderation provider's taxonomy.
const (
	CategoryHarassment            = "harassment"
	CategoryHarassmentThreatening = "harassment/threatening"
	CategoryHate                  = "hate"
	CategoryHateThreatening       = "hate/threatening"
	CategorySelfHarm              = "self-harm"
	CategorySelfHarmIntent        = "self-harm/intent"
	CategorySelfHarmInstructions  = "self-harm/instructions"
	CategorySexual                = "sexual"
	CategorySexualMinors          = "sexual/minors"
	CategoryViolence              = "violence"
	CategoryViolenceGraphic       = "violence/graphic"
)

// CategoryComposite marks a violation carried entirely by compound bonuses,
// with no single category elevated on its own.
const CategoryComposite = "composite"

// FastPathRule rejects immediately when a high-signal category meets its
// threshold, bypassing the weighted composite entirely.
type FastPathRule struct {
	Category  string
	Threshold float64
}

// CategoryRule configures one category in the weighted composite pass.
// Confidence selects how strong the raw signal must be before the category
// counts as elevated: low-confidence categories need a larger multiple of
// their threshold.
type CategoryRule struct {
	Threshold  float64
	Weight     float64
	Confidence float64
}

// CompoundRule adds severity when two related categories are simultaneously
// raised, each at the given fraction of its own threshold.
type CompoundRule struct {
	First          string
	FirstFraction  float64
	Second         string
	SecondFraction float64
	Bonus          float64
	Reason         string
}

// Config is the complete, immutable threshold table for the engine. It is
// passed by value at construction; nothing in the engine mutates it.
type Config struct {
	FastPath          []FastPathRule
	Categories        map[string]CategoryRule
	Compound          []CompoundRule
	ParentOf          map[string]string
	ParentChildBonus  float64
	SeverityThreshold float64

	// ReauditHarassment is the stricter bar applied when historical ratings
	// are re-scored during a batch audit.
	ReauditHarassment float64
}

// DefaultConfig returns the production threshold table.
func DefaultConfig() Config {
	return Config{
		FastPath: []FastPathRule{
			{Category: CategorySexualMinors, Threshold: 0.25},
			{Category: CategorySelfHarmIntent, Threshold: 0.60},
			{Category: CategoryViolenceGraphic, Threshold: 0.70},
		},
		Categories: map[string]CategoryRule{
			CategoryHarassment:            {Threshold: 0.70, Weight: 1.0, Confidence: 0.80},
			CategoryHarassmentThreatening: {Threshold: 0.55, Weight: 1.3, Confidence: 0.65},
			CategoryHate:                  {Threshold: 0.65, Weight: 1.0, Confidence: 0.75},
			CategoryHateThreatening:       {Threshold: 0.50, Weight: 1.4, Confidence: 0.60},
			CategorySelfHarm:              {Threshold: 0.65, Weight: 1.2, Confidence: 0.45},
			CategorySelfHarmIntent:        {Threshold: 0.55, Weight: 1.5, Confidence: 0.50},
			CategorySelfHarmInstructions:  {Threshold: 0.50, Weight: 1.5, Confidence: 0.40},
			CategorySexual:                {Threshold: 0.75, Weight: 0.8, Confidence: 0.85},
			CategoryViolence:              {Threshold: 0.70, Weight: 0.9, Confidence: 0.80},
		},
		Compound: []CompoundRule{
			{
				First:          CategoryHarassmentThreatening,
				FirstFraction:  0.50,
				Second:         CategoryHateThreatening,
				SecondFraction: 0.50,
				Bonus:          0.60,
				Reason:         "simultaneous threatening harassment and threatening hate signals",
			},
			{
				First:          CategorySelfHarmIntent,
				FirstFraction:  0.35,
				Second:         CategorySelfHarmInstructions,
				SecondFraction: 0.33,
				Bonus:          1.00,
				Reason:         "self-harm intent combined with self-harm instructions",
			},
		},
		ParentOf: map[string]string{
			CategoryHarassmentThreatening: CategoryHarassment,
			CategoryHateThreatening:       CategoryHate,
			CategorySelfHarmIntent:        CategorySelfHarm,
			CategorySelfHarmInstructions:  CategorySelfHarm,
			CategorySexualMinors:          CategorySexual,
			CategoryViolenceGraphic:       CategoryViolence,
		},
		ParentChildBonus:  0.25,
		SeverityThreshold: 2.0,
		ReauditHarassment: 0.40,
	}
}
