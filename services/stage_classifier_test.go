package services

import (
	"reflect"
	"testing"
)

func TestStageOrderIsStrictlyMonotonic(t *testing.T) {
	previous := -1
	for _, stage := range stageOrder {
		rank, ok := StageRank(stage)
		if !ok {
			t.Fatalf("stage %s has no rank", stage)
		}
		if rank <= previous {
			t.Fatalf("stage %s rank %d not greater than previous %d", stage, rank, previous)
		}
		previous = rank
	}

	if _, ok := StageRank("demolition"); ok {
		t.Fatal("unknown stage should have no rank")
	}
}

func TestClassifyStagePicksHighestMatchCount(t *testing.T) {
	detections := []Detection{
		{Label: "Brick Wall", Confidence: 0.9},
		{Label: "steel reinforcement beam", Confidence: 0.8},
	}

	result := ClassifyStage(detections)

	if result.Stage != StageWalls {
		t.Fatalf("expected walls, got %s", result.Stage)
	}
	if result.Confidence != 0.5 {
		t.Fatalf("expected confidence 0.5 for 2 matches, got %f", result.Confidence)
	}
	if result.Outcome != StageMatched {
		t.Fatalf("expected matched outcome, got %v", result.Outcome)
	}
	if len(result.MatchedElements) != 2 {
		t.Fatalf("expected 2 matched elements, got %v", result.MatchedElements)
	}
}

func TestClassifyStageTieGoesToFirstDeclared(t *testing.T) {
	// One keyword each for foundation and walls; foundation is declared
	// first and must win the tie.
	detections := []Detection{
		{Label: "excavation trench"},
		{Label: "masonry pile"},
	}

	result := ClassifyStage(detections)

	if result.Stage != StageFoundation {
		t.Fatalf("expected foundation on tie, got %s", result.Stage)
	}
	if result.Confidence != 0.25 {
		t.Fatalf("expected confidence 0.25 for 1 match, got %f", result.Confidence)
	}
}

func TestClassifyStageConfidenceSaturates(t *testing.T) {
	detections := []Detection{
		{Label: "brick"},
		{Label: "walls"},
		{Label: "steel reinforcement"},
		{Label: "concrete blocks"},
		{Label: "masonry"},
	}

	result := ClassifyStage(detections)

	if result.Stage != StageWalls {
		t.Fatalf("expected walls, got %s", result.Stage)
	}
	if result.Confidence != 1.0 {
		t.Fatalf("expected saturated confidence 1.0, got %f", result.Confidence)
	}
}

func TestClassifyStageDefaultsWithoutDetections(t *testing.T) {
	result := ClassifyStage(nil)

	if result.Stage != StageSitePreparation {
		t.Fatalf("expected site_preparation default, got %s", result.Stage)
	}
	if result.Confidence != 0.5 {
		t.Fatalf("expected confidence 0.5, got %f", result.Confidence)
	}
	if result.Outcome != StageDefaultNoDetections {
		t.Fatalf("expected no-detections outcome, got %v", result.Outcome)
	}
}

func TestClassifyStageDefaultsWithoutMatches(t *testing.T) {
	detections := []Detection{
		{Label: "sky"},
		{Label: "grass"},
	}

	result := ClassifyStage(detections)

	if result.Stage != StageSitePreparation || result.Confidence != 0.5 {
		t.Fatalf("expected default site_preparation@0.5, got %s@%f", result.Stage, result.Confidence)
	}
	if result.Outcome != StageDefaultNoDetections {
		t.Fatalf("expected no-detections outcome, got %v", result.Outcome)
	}
}

func TestClassifyStageIdempotent(t *testing.T) {
	detections := []Detection{
		{Label: "roofing tiles"},
		{Label: "metal sheets"},
	}

	first := ClassifyStage(detections)
	second := ClassifyStage(detections)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("classification not idempotent: %+v vs %+v", first, second)
	}
}

func TestCompletionPercent(t *testing.T) {
	cases := map[ConstructionStage]float64{
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

	for stage, want := range cases {
		if got := CompletionPercent(stage); got != want {
			t.Fatalf("CompletionPercent(%s) = %f, want %f", stage, got, want)
		}
	}
}
