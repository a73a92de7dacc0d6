package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_EmptyApplication(t *testing.T) {
	score := Compute(Application{})

	assert.Equal(t, 5, score.YearsPractice)
	assert.Equal(t, 10, score.BoardCertification)
	assert.Equal(t, 15, score.Total, "empty application scores years floor plus board certification")
	assert.Equal(t, LevelJunior, score.Level)
}

func TestCompute_TotalIsSumOfCategories(t *testing.T) {
	score := Compute(Application{
		YearsPractice:        12,
		Subspecialties:       []string{"oncology"},
		Publications:         8,
		ClinicalTrials:       ClinicalTrials{Involved: true},
		ConferencePresenting: true,
		Teaching:             true,
		SocietyMemberships:   []string{"ASCO"},
		LeadershipRoles:      "department head",
		PeerReview:           "journal reviewer",
	})

	sum := score.YearsPractice + score.BoardCertification + score.Subspecialty +
		score.Publications + score.ClinicalTrials + score.ConferenceTeaching +
		score.SocietyMembership + score.Leadership + score.PeerReview
	assert.Equal(t, sum, score.Total)
}

func TestCompute_Categories(t *testing.T) {
	tests := []struct {
		name     string
		app      Application
		category func(Score) int
		want     int
	}{
		{"years 20 is top band", Application{YearsPractice: 20}, func(s Score) int { return s.YearsPractice }, 20},
		{"years 19 is second band", Application{YearsPractice: 19}, func(s Score) int { return s.YearsPractice }, 15},
		{"years 10 is second band", Application{YearsPractice: 10}, func(s Score) int { return s.YearsPractice }, 15},
		{"years 5 is third band", Application{YearsPractice: 5}, func(s Score) int { return s.YearsPractice }, 10},
		{"years 4 is floor", Application{YearsPractice: 4}, func(s Score) int { return s.YearsPractice }, 5},

		{"publications 21 is top band", Application{Publications: 21}, func(s Score) int { return s.Publications }, 15},
		{"publications 20 is second band", Application{Publications: 20}, func(s Score) int { return s.Publications }, 10},
		{"publications 6 is second band", Application{Publications: 6}, func(s Score) int { return s.Publications }, 10},
		{"publications 1 is third band", Application{Publications: 1}, func(s Score) int { return s.Publications }, 5},
		{"publications 0 scores nothing", Application{}, func(s Score) int { return s.Publications }, 0},

		{"trials with leadership", Application{ClinicalTrials: ClinicalTrials{Involved: true, Description: "Principal Investigator, phase II"}}, func(s Score) int { return s.ClinicalTrials }, 10},
		{"trials involved only", Application{ClinicalTrials: ClinicalTrials{Involved: true, Description: "site coordinator"}}, func(s Score) int { return s.ClinicalTrials }, 5},
		{"trial description without involvement", Application{ClinicalTrials: ClinicalTrials{Description: "principal investigator"}}, func(s Score) int { return s.ClinicalTrials }, 0},

		{"conference and teaching cap at 10", Application{ConferencePresenting: true, Teaching: true}, func(s Score) int { return s.ConferenceTeaching }, 10},
		{"teaching alone", Application{Teaching: true}, func(s Score) int { return s.ConferenceTeaching }, 5},

		{"subspecialty list", Application{Subspecialties: []string{"cardiology"}}, func(s Score) int { return s.Subspecialty }, 5},
		{"society list", Application{SocietyMemberships: []string{"AMA", "ASCO"}}, func(s Score) int { return s.SocietyMembership }, 5},

		{"national leadership", Application{LeadershipRoles: "National Board Member"}, func(s Score) int { return s.Leadership }, 10},
		{"committee leadership", Application{LeadershipRoles: "ethics committee chair"}, func(s Score) int { return s.Leadership }, 10},
		{"hospital leadership", Application{LeadershipRoles: "chief of surgery"}, func(s Score) int { return s.Leadership }, 5},
		{"other leadership text", Application{LeadershipRoles: "clinic lead"}, func(s Score) int { return s.Leadership }, 2},
		{"no leadership", Application{LeadershipRoles: "   "}, func(s Score) int { return s.Leadership }, 0},

		{"guideline work", Application{PeerReview: "WHO guideline author"}, func(s Score) int { return s.PeerReview }, 15},
		{"review work", Application{PeerReview: "peer reviewer for JAMA"}, func(s Score) int { return s.PeerReview }, 10},
		{"unrelated text", Application{PeerReview: "editorial assistant"}, func(s Score) int { return s.PeerReview }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.category(Compute(tt.app)))
		})
	}
}

func TestCompute_TierBoundariesBelongToHigherTier(t *testing.T) {
	tests := []struct {
		total int
		want  Level
	}{
		{80, LevelDistinguished},
		{79, LevelExpert},
		{60, LevelExpert},
		{59, LevelSenior},
		{40, LevelSenior},
		{39, LevelJunior},
		{0, LevelJunior},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levelFor(tt.total), "total %d", tt.total)
	}
}

// A seasoned-oncologist profile: top years band, top publications band,
// trial leadership, national-tier leadership and a society membership.
func TestCompute_SeasonedProfile(t *testing.T) {
	app := Application{
		YearsPractice:      20,
		Publications:       21,
		ClinicalTrials:     ClinicalTrials{Involved: true, Description: "principal investigator on two phase III trials"},
		LeadershipRoles:    "national board member",
		SocietyMemberships: []string{"ASCO"},
	}

	score := Compute(app)
	assert.Equal(t, 70, score.Total, "20 years + 10 board + 15 pubs + 10 trials + 5 societies + 10 leadership")
	assert.Equal(t, LevelExpert, score.Level)

	// Adding guideline work pushes the same profile over the top boundary.
	app.PeerReview = "clinical guideline committee"
	score = Compute(app)
	assert.Equal(t, 85, score.Total)
	assert.Equal(t, LevelDistinguished, score.Level)
}

func TestCompute_Idempotent(t *testing.T) {
	app := Application{
		YearsPractice:      15,
		Publications:       7,
		ClinicalTrials:     ClinicalTrials{Involved: true, Description: "lead"},
		SocietyMemberships: []string{"AMA"},
		LeadershipRoles:    "department head",
		PeerReview:         "systematic review co-author",
	}
	assert.Equal(t, Compute(app), Compute(app))
}
