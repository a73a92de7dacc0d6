// Package scoring reduces a professional application to a competency score
// and tier. Score is a pure function: no clock, no randomness, no I/O, and
// every category reads disjoint input fields, so identical inputs always
// produce identical output.
package scoring

import "strings"

// Level is one of four ordered competency tiers.
type Level string

const (
	LevelJunior        Level = "JUNIOR"
	LevelSenior        Level = "SENIOR"
	LevelExpert        Level = "EXPERT"
	LevelDistinguished Level = "DISTINGUISHED"
)

// ClinicalTrials describes trial involvement. The description is free text;
// leadership is detected by substring, not parsed.
type ClinicalTrials struct {
	Involved    bool
	Description string
}

// Application holds the scoring inputs. Missing optional fields score their
// zero default; the function is total and never errors.
type Application struct {
	YearsPractice        int
	Subspecialties       []string
	Publications         int
	ClinicalTrials       ClinicalTrials
	ConferencePresenting bool
	Teaching             bool
	SocietyMemberships   []string
	LeadershipRoles      string
	PeerReview           string
}

// Score is the immutable result: per-category sub-scores, their sum, and the
// tier the sum falls into. Total is always exactly the sum of the categories.
type Score struct {
	YearsPractice      int `json:"years_practice"`
	BoardCertification int `json:"board_certification"`
	Subspecialty       int `json:"subspecialty"`
	Publications       int `json:"publications"`
	ClinicalTrials     int `json:"clinical_trials"`
	ConferenceTeaching int `json:"conference_teaching"`
	SocietyMembership  int `json:"society_membership"`
	Leadership         int `json:"leadership"`
	PeerReview         int `json:"peer_review"`

	Total int   `json:"total"`
	Level Level `json:"level"`
}

// trialLeadershipKeywords mark a trial description as a leadership role.
var trialLeadershipKeywords = []string{"principal investigator", "lead", "chair"}

// Compute scores one application against the rubric.
func Compute(app Application) Score {
	s := Score{
		YearsPractice:      scoreYears(app.YearsPractice),
		BoardCertification: 10,
		Subspecialty:       scoreNonEmptyList(app.Subspecialties, 5),
		Publications:       scorePublications(app.Publications),
		ClinicalTrials:     scoreTrials(app.ClinicalTrials),
		ConferenceTeaching: scoreConferenceTeaching(app.ConferencePresenting, app.Teaching),
		SocietyMembership:  scoreNonEmptyList(app.SocietyMemberships, 5),
		Leadership:         scoreLeadership(app.LeadershipRoles),
		PeerReview:         scorePeerReview(app.PeerReview),
	}
	s.Total = s.YearsPractice + s.BoardCertification + s.Subspecialty +
		s.Publications + s.ClinicalTrials + s.ConferenceTeaching +
		s.SocietyMembership + s.Leadership + s.PeerReview
	s.Level = levelFor(s.Total)
	return s
}

func scoreYears(years int) int {
	switch {
	case years >= 20:
		return 20
	case years >= 10:
		return 15
	case years >= 5:
		return 10
	default:
		return 5
	}
}

func scoreNonEmptyList(items []string, full int) int {
	if len(items) > 0 {
		return full
	}
	return 0
}

func scorePublications(count int) int {
	switch {
	case count > 20:
		return 15
	case count >= 6:
		return 10
	case count >= 1:
		return 5
	default:
		return 0
	}
}

func scoreTrials(trials ClinicalTrials) int {
	if !trials.Involved {
		return 0
	}
	desc := strings.ToLower(trials.Description)
	for _, kw := range trialLeadershipKeywords {
		if strings.Contains(desc, kw) {
			return 10
		}
	}
	return 5
}

func scoreConferenceTeaching(conference, teaching bool) int {
	score := 0
	if conference {
		score += 5
	}
	if teaching {
		score += 5
	}
	return score
}

func scoreLeadership(roles string) int {
	text := strings.ToLower(strings.TrimSpace(roles))
	if text == "" {
		return 0
	}
	for _, kw := range []string{"national", "board", "committee"} {
		if strings.Contains(text, kw) {
			return 10
		}
	}
	for _, kw := range []string{"hospital", "department", "chief"} {
		if strings.Contains(text, kw) {
			return 5
		}
	}
	return 2
}

func scorePeerReview(text string) int {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "guideline"):
		return 15
	case strings.Contains(lower, "review"):
		return 10
	default:
		return 0
	}
}

// levelFor maps a total to its tier. Boundary values belong to the higher
// tier.
func levelFor(total int) Level {
	switch {
	case total >= 80:
		return LevelDistinguished
	case total >= 60:
		return LevelExpert
	case total >= 40:
		return LevelSenior
	default:
		return LevelJunior
	}
}
