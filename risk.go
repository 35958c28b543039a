package sdkdrift

import (
	"errors"
	"fmt"
	"strings"
)

// RiskLevel is the terminal classification of a change set.
type RiskLevel string

// Risk levels. RiskBreaking is reserved for escalation by reviewers or
// downstream tooling; ScoreRisk never produces it.
const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskBreaking RiskLevel = "BREAKING"
)

var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskBreaking: 3,
}

// ParseRiskLevel parses a level name, ignoring case.
func ParseRiskLevel(s string) (RiskLevel, error) {
	l := RiskLevel(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := riskRank[l]; !ok {
		return "", fmt.Errorf("unknown risk level %q", s)
	}
	return l, nil
}

// AtLeast reports whether l is as severe as other or more.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return riskRank[l] >= riskRank[other]
}

// Threshold awards Points when a count is strictly greater than Above.
type Threshold struct {
	Above  int `json:"above" mapstructure:"above"`
	Points int `json:"points" mapstructure:"points"`
}

// RiskConfig is the scoring table. Each factor's thresholds are ordered by
// descending Above; the first match wins.
type RiskConfig struct {
	Files    []Threshold `json:"files" mapstructure:"files"`
	Wrappers []Threshold `json:"wrappers" mapstructure:"wrappers"`
	APIFiles []Threshold `json:"api_files" mapstructure:"api_files"`
	High     int         `json:"high" mapstructure:"high"`
	Medium   int         `json:"medium" mapstructure:"medium"`
}

// DefaultRiskConfig returns the standard scoring table.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		Files: []Threshold{
			{Above: 20, Points: 3},
			{Above: 10, Points: 2},
			{Above: 5, Points: 1},
		},
		Wrappers: []Threshold{
			{Above: 3, Points: 3},
			{Above: 1, Points: 2},
			{Above: 0, Points: 1},
		},
		APIFiles: []Threshold{
			{Above: 10, Points: 2},
			{Above: 5, Points: 1},
		},
		High:   6,
		Medium: 3,
	}
}

// Validate checks that every factor is ordered and monotonic.
func (c RiskConfig) Validate() error {
	var errs []error
	factors := []struct {
		name string
		ts   []Threshold
	}{
		{"files", c.Files},
		{"wrappers", c.Wrappers},
		{"api_files", c.APIFiles},
	}
	for _, f := range factors {
		for i := 1; i < len(f.ts); i++ {
			if f.ts[i].Above >= f.ts[i-1].Above || f.ts[i].Points > f.ts[i-1].Points {
				errs = append(errs, fmt.Errorf("risk.%s: threshold %d must have lower above and no more points than threshold %d", f.name, i, i-1))
			}
		}
	}
	if c.Medium <= 0 || c.High <= c.Medium {
		errs = append(errs, fmt.Errorf("risk: levels must satisfy 0 < medium < high, got medium=%d high=%d", c.Medium, c.High))
	}
	return errors.Join(errs...)
}

// RiskFactors records the raw counts and the points each contributed.
type RiskFactors struct {
	ChangedFiles       int `json:"changed_files"`
	FileCountScore     int `json:"file_count_score"`
	AffectedWrappers   int `json:"affected_wrappers"`
	WrapperImpactScore int `json:"wrapper_impact_score"`
	ChangedAPIFiles    int `json:"changed_api_files"`
	APIChangeScore     int `json:"api_change_score"`
}

// RiskAssessment is the scored outcome for one change set.
type RiskAssessment struct {
	Level   RiskLevel   `json:"level"`
	Score   int         `json:"score"`
	Factors RiskFactors `json:"factors"`
}

// ScoreRisk classifies a change set from its changed-file count, the number
// of affected wrapper files and the number of changed generated API files.
// It is pure: identical inputs always yield identical assessments.
func ScoreRisk(cfg RiskConfig, changedFiles, affectedWrappers, changedAPIFiles int) RiskAssessment {
	f := RiskFactors{
		ChangedFiles:       changedFiles,
		FileCountScore:     points(cfg.Files, changedFiles),
		AffectedWrappers:   affectedWrappers,
		WrapperImpactScore: points(cfg.Wrappers, affectedWrappers),
		ChangedAPIFiles:    changedAPIFiles,
		APIChangeScore:     points(cfg.APIFiles, changedAPIFiles),
	}
	score := f.FileCountScore + f.WrapperImpactScore + f.APIChangeScore

	level := RiskLow
	switch {
	case score >= cfg.High:
		level = RiskHigh
	case score >= cfg.Medium:
		level = RiskMedium
	}

	return RiskAssessment{
		Level:   level,
		Score:   score,
		Factors: f,
	}
}

func points(ts []Threshold, n int) int {
	for _, t := range ts {
		if n > t.Above {
			return t.Points
		}
	}
	return 0
}
