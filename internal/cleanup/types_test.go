package cleanup

import (
	"slices"
	"testing"
)

func TestParseStageStatus(t *testing.T) {
	tests := []struct {
		in   string
		want StageStatus
	}{
		{in: "active", want: StageStatusActive},
		{in: "ACTIVE", want: StageStatusActive},
		{in: " Active ", want: StageStatusActive},
		{in: "success", want: StageStatusSuccess},
		{in: "failure", want: StageStatusFailure},
		{in: "idle", want: StageStatusIdle},
		{in: "canceled", want: StageStatusCanceled},
		{in: "skipped", want: StageStatusSkipped},
		{in: "", want: StageStatusUnknown},
		{in: "something-new", want: StageStatusUnknown},
	}

	for _, tt := range tests {
		if got := ParseStageStatus(tt.in); got != tt.want {
			t.Fatalf("ParseStageStatus(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTriggerType(t *testing.T) {
	tests := []struct {
		in   string
		want TriggerType
	}{
		{in: "ad_hoc", want: TriggerTypeManual},
		{in: "github:push", want: TriggerTypePush},
		{in: "gitlab:push", want: TriggerTypePush},
		{in: "deploy_hook", want: TriggerTypeDeployHook},
		{in: "production", want: TriggerTypeProduction},
		{in: "Production", want: TriggerTypeProduction},
		{in: "", want: TriggerTypeUnknown},
		{in: "bitbucket:push", want: TriggerTypeUnknown},
	}

	for _, tt := range tests {
		if got := ParseTriggerType(tt.in); got != tt.want {
			t.Fatalf("ParseTriggerType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSortNewestFirst(t *testing.T) {
	a := dep("a", 5)
	b := dep("b", 1)
	c := dep("c", 3)
	tie := dep("tie", 3)
	input := []Deployment{a, b, c, tie}

	got := ids(SortNewestFirst(input))
	want := []string{"b", "c", "tie", "a"}
	if !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if input[0].ID != "a" {
		t.Fatal("input slice was reordered")
	}
}

func TestShortID(t *testing.T) {
	if got := (Deployment{ID: "0123456789abcdef"}).ShortID(); got != "01234567" {
		t.Fatalf("ShortID = %q", got)
	}
	if got := (Deployment{ID: "abc"}).ShortID(); got != "abc" {
		t.Fatalf("ShortID = %q", got)
	}
}
