package services

import (
	"log"
	"strings"
)

// ConstructionStage is one of the canonical, totally ordered construction
// project stages.
type ConstructionStage string

const (
	StagePlanning        ConstructionStage = "planning"
	StageSitePreparation ConstructionStage = "site_preparation"
	StageFoundation      ConstructionStage = "foundation"
	StageWalls           ConstructionStage = "walls"
	StageRoofing         ConstructionStage = "roofing"
	StageElectrical      ConstructionStage = "electrical"
	StagePlumbing        ConstructionStage = "plumbing"
	StageFinishing       ConstructionStage = "finishing"
	StageCompleted       ConstructionStage = "completed"
)

// stageOrder is the single source of truth for stage ordering.
var stageOrder = []ConstructionStage{
	StagePlanning,
	StageSitePreparation,
	StageFoundation,
	StageWalls,
	StageRoofing,
	StageElectrical,
	StagePlumbing,
	StageFinishing,
	StageCompleted,
}

// stageRank assigns each stage its integer rank once; every ordering
// comparison goes through this table.
var stageRank = func() map[ConstructionStage]int {
	ranks := make(map[ConstructionStage]int, len(stageOrder))
	for i, stage := range stageOrder {
		ranks[stage] = i
	}
	return ranks
}()

// StageRank returns the rank of a stage in the canonical order. The
// second return is false for unknown stage values.
func StageRank(stage ConstructionStage) (int, bool) {
	rank, ok := stageRank[stage]
	return rank, ok
}

// stageCompletion maps each stage to an estimated overall completion
// percentage. Hand-tuned lookup, no failure mode.
var stageCompletion = map[ConstructionStage]float64{
	StagePlanning:        5,
	StageSitePreparation: 10,
	StageFoundation:      20,
	StageWalls:           40,
	StageRoofing:         60,
	StageElectrical:      75,
	StagePlumbing:        80,
	StageFinishing:       90,
	StageCompleted:       100,
}

// CompletionPercent estimates project completion for a stage.
func CompletionPercent(stage ConstructionStage) float64 {
	return stageCompletion[stage]
}

// stageIndicator associates a stage with the keywords whose presence in
// detected labels votes for that stage. Declaration order matters: on a
// tied match count the first listed stage wins.
type stageIndicator struct {
	Stage    ConstructionStage
	Keywords []string
}

var stageIndicators = []stageIndicator{
	{StageFoundation, []string{"foundation", "excavation", "concrete base", "concrete"}},
	{StageWalls, []string{"brick", "walls", "steel reinforcement", "concrete blocks", "masonry"}},
	{StageRoofing, []string{"roofing", "roof structure", "tiles", "metal sheets", "roof"}},
	{StageElectrical, []string{"wiring", "electrical", "conduits", "cables", "wires"}},
	{StageFinishing, []string{"paint", "finishing", "windows", "doors", "tiles", "flooring"}},
	{StageCompleted, []string{"completed", "final", "handover"}},
}

// StageOutcome records why a classification produced its result, so
// callers and tests can distinguish a real match from a fallback.
type StageOutcome int

const (
	// StageMatched means at least one indicator keyword matched.
	StageMatched StageOutcome = iota
	// StageDefaultNoDetections means no detections were supplied or no
	// stage accumulated a match; the conservative early-stage default
	// applies.
	StageDefaultNoDetections
	// StageDefaultError means an internal error was recovered; the same
	// default applies with zero confidence.
	StageDefaultError
)

// StageClassification is the result of classifying detection labels.
type StageClassification struct {
	Stage           ConstructionStage `json:"stage"`
	Confidence      float64           `json:"confidence"`
	MatchedElements []string          `json:"matched_elements,omitempty"`
	Outcome         StageOutcome      `json:"-"`
}

// ClassifyStage maps detected labels to a construction stage. Each stage
// scores one point per indicator keyword appearing as a substring of any
// detected label; the stage with the strictly highest score wins, ties
// going to the first declared stage. Confidence saturates at four
// matches. Without detections or matches the result is the conservative
// SITE_PREPARATION default at confidence 0.5.
//
// Classification must never block the fraud pipeline: an internal panic
// is recovered into the same default at confidence 0.0.
func ClassifyStage(detections []Detection) (result StageClassification) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Stage classification error: %v", r)
			result = StageClassification{
				Stage:      StageSitePreparation,
				Confidence: 0.0,
				Outcome:    StageDefaultError,
			}
		}
	}()

	if len(detections) == 0 {
		return StageClassification{
			Stage:      StageSitePreparation,
			Confidence: 0.5,
			Outcome:    StageDefaultNoDetections,
		}
	}

	labels := make([]string, 0, len(detections))
	for _, d := range detections {
		labels = append(labels, strings.ToLower(d.Label))
	}

	bestScore := 0
	var best stageIndicator
	var bestMatched []string

	for _, indicator := range stageIndicators {
		score := 0
		var matched []string
		for _, keyword := range indicator.Keywords {
			for _, label := range labels {
				if strings.Contains(label, keyword) {
					score++
					matched = append(matched, keyword)
					break
				}
			}
		}
		if score > bestScore {
			bestScore = score
			best = indicator
			bestMatched = matched
		}
	}

	if bestScore == 0 {
		return StageClassification{
			Stage:      StageSitePreparation,
			Confidence: 0.5,
			Outcome:    StageDefaultNoDetections,
		}
	}

	confidence := float64(bestScore) * 0.25
	if confidence > 1.0 {
		confidence = 1.0
	}

	return StageClassification{
		Stage:           best.Stage,
		Confidence:      confidence,
		MatchedElements: bestMatched,
		Outcome:         StageMatched,
	}
}
