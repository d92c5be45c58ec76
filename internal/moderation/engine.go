// Package moderation scores provider category signals into accept/reject
// decisions. The engine is deterministic and side-effect free: identical
// input scores always produce an identical decision and reason string.
package moderation

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Violation describes a rejected submission. Reason is the internal
// breakdown retained for auditing; it is never shown to the submitter.
type Violation struct {
	Category  string  `json:"category"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
	Reason    string  `json:"reason"`
}

// Engine evaluates category scores against an immutable threshold table.
type Engine struct {
	cfg Config
}

// NewEngine builds an engine around the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the threshold table the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Evaluate maps provider scores (category name to value in [0,1]; absent
// categories count as zero) to either nil (pass) or a Violation. The fast
// path rejects on any high-signal category at its threshold; otherwise a
// weighted composite accumulates severity across categories and compound
// category-pair bonuses, rejecting once the total crosses the configured
// severity threshold.
func (e *Engine) Evaluate(scores map[string]float64) *Violation {
	for _, rule := range e.cfg.FastPath {
		if score := scores[rule.Category]; score >= rule.Threshold {
			return &Violation{
				Category:  rule.Category,
				Score:     score,
				Threshold: rule.Threshold,
				Reason: fmt.Sprintf("category %s scored %.3f at or above threshold %.3f",
					rule.Category, score, rule.Threshold),
			}
		}
	}

	var (
		totalSeverity   float64
		elevated        []string
		primary         string
		primaryScore    float64
		maxContribution float64
		compoundReasons []string
	)

	for _, category := range sortedCategories(e.cfg.Categories) {
		rule := e.cfg.Categories[category]
		score := scores[category]
		if score == 0 {
			continue
		}

		normalized := math.Min(score/rule.Threshold, 2.0)
		multiplier := confidenceMultiplier(rule.Confidence)

		switch {
		case normalized >= multiplier:
			contribution := normalized * rule.Weight
			totalSeverity += contribution
			elevated = append(elevated, category)
			if contribution > maxContribution {
				maxContribution = contribution
				primary = category
				primaryScore = score
			}
		case normalized >= 1.0:
			// Past the raw threshold but under the confidence bar: let the
			// signal nudge the composite at half weight without elevating.
			totalSeverity += (normalized / multiplier) * rule.Weight * 0.5
		}
	}

	for _, rule := range e.cfg.Compound {
		firstThreshold, firstOK := e.thresholdFor(rule.First)
		secondThreshold, secondOK := e.thresholdFor(rule.Second)
		if !firstOK || !secondOK {
			continue
		}
		if scores[rule.First] >= rule.FirstFraction*firstThreshold &&
			scores[rule.Second] >= rule.SecondFraction*secondThreshold {
			totalSeverity += rule.Bonus
			compoundReasons = append(compoundReasons, rule.Reason)
		}
	}

	for _, child := range sortedCategories(e.cfg.ParentOf) {
		parent := e.cfg.ParentOf[child]
		childThreshold, childOK := e.thresholdFor(child)
		parentThreshold, parentOK := e.thresholdFor(parent)
		if !childOK || !parentOK {
			continue
		}
		if scores[child] >= 0.5*childThreshold && scores[parent] >= 0.5*parentThreshold {
			totalSeverity += e.cfg.ParentChildBonus
			compoundReasons = append(compoundReasons,
				fmt.Sprintf("related categories %s and %s raised together", child, parent))
		}
	}

	if totalSeverity < e.cfg.SeverityThreshold {
		return nil
	}

	violation := &Violation{
		Category:  CategoryComposite,
		Score:     totalSeverity,
		Threshold: e.cfg.SeverityThreshold,
	}
	if primary != "" {
		violation.Category = primary
		violation.Score = primaryScore
		violation.Threshold = e.cfg.Categories[primary].Threshold
	}

	parts := []string{fmt.Sprintf("composite severity %.2f at or above threshold %.2f",
		totalSeverity, e.cfg.SeverityThreshold)}
	if primary != "" {
		parts = append(parts, "primary category "+primary)
	} else {
		parts = append(parts, "no single category elevated, compound signals only")
	}
	parts = append(parts, compoundReasons...)
	if len(elevated) > 1 {
		parts = append(parts, "elevated categories: "+strings.Join(elevated, ", "))
	}
	violation.Reason = strings.Join(parts, "; ")

	return violation
}

// thresholdFor resolves a category's own threshold from the weighted table
// first, falling back to the fast-path list for categories that only appear
// there (compound and parent/child rules may reference either kind).
func (e *Engine) thresholdFor(category string) (float64, bool) {
	if rule, ok := e.cfg.Categories[category]; ok {
		return rule.Threshold, true
	}
	for _, rule := range e.cfg.FastPath {
		if rule.Category == category {
			return rule.Threshold, true
		}
	}
	return 0, false
}

func confidenceMultiplier(confidence float64) float64 {
	switch {
	case confidence < 0.5:
		return 3.0
	case confidence <= 0.7:
		return 2.0
	default:
		return 1.5
	}
}

func sortedCategories[V any](m map[string]V) []string {
	categories := make([]string, 0, len(m))
	for category := range m {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}
