package roadmap

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/abhisek/skilltrack/internal/catalog"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) IntN(n int) int {
	v := r.vals[r.i%len(r.vals)] % n
	r.i++
	return v
}

func testEngine() *Engine {
	return NewEngine(
		WithClock(func() time.Time { return fixedNow }),
		WithRand(&seqRand{vals: []int{42, 7, 9999}}),
	)
}

func newTestTracker(goal catalog.Goal) *Tracker {
	return NewTracker("user-1", Profile{
		CareerGoal:        goal,
		CareerGoalLabel:   goal.DisplayName(),
		CurrentSkillLevel: "beginner",
	}, fixedNow)
}

func TestInitializeRoadmap_AllGoals(t *testing.T) {
	for _, g := range catalog.AllGoals() {
		skills := InitializeRoadmap(g)
		tmpl := catalog.Template(g)
		if len(skills) != len(tmpl) {
			t.Fatalf("%s: len = %d, want %d", g, len(skills), len(tmpl))
		}
		for i, s := range skills {
			if s.Name != tmpl[i].Name {
				t.Errorf("%s[%d] name = %q, want %q", g, i, s.Name, tmpl[i].Name)
			}
			if s.Status != StatusUnlocked || s.Progress != 0 {
				t.Errorf("%s[%d] = %s/%d, want unlocked/0", g, i, s.Status, s.Progress)
			}
		}
	}
}

func TestInitializeRoadmap_CustomAndUnknownEmpty(t *testing.T) {
	if got := InitializeRoadmap(catalog.GoalCustom); len(got) != 0 {
		t.Errorf("custom roadmap len = %d, want 0", len(got))
	}
	if got := InitializeRoadmap(catalog.Goal("astronaut")); len(got) != 0 {
		t.Errorf("unknown goal roadmap len = %d, want 0", len(got))
	}
}

func TestUpdateProgress_PartialKeepsUnlocked(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)

	if !e.UpdateProgress(tr, "CSS", 40) {
		t.Fatal("UpdateProgress returned false for existing skill")
	}
	s := tr.Roadmap[1]
	if s.Status != StatusUnlocked || s.Progress != 40 {
		t.Errorf("CSS = %s/%d, want unlocked/40", s.Status, s.Progress)
	}
	if tr.OverallProgress != 0 {
		t.Errorf("OverallProgress = %d, want 0", tr.OverallProgress)
	}
}

func TestUpdateProgress_HundredCompletesAndUnlocksNext(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)
	tr.Roadmap[1].Status = StatusLocked

	e.UpdateProgress(tr, "HTML", 100)

	if tr.Roadmap[0].Status != StatusCompleted {
		t.Errorf("HTML status = %s, want completed", tr.Roadmap[0].Status)
	}
	if tr.Roadmap[1].Status != StatusUnlocked {
		t.Errorf("CSS status = %s, want unlocked", tr.Roadmap[1].Status)
	}
	if tr.OverallProgress != 17 {
		t.Errorf("OverallProgress = %d, want 17", tr.OverallProgress)
	}
	if len(tr.CompletedSkills) != 0 {
		t.Errorf("CompletedSkills len = %d, want 0", len(tr.CompletedSkills))
	}
}

func TestUpdateProgress_UnknownSkillNoop(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)
	before := Clone(tr)

	if e.UpdateProgress(tr, "html", 100) {
		t.Fatal("UpdateProgress matched case-insensitively")
	}
	if tr.Roadmap[0] != before.Roadmap[0] {
		t.Errorf("roadmap changed: %+v", tr.Roadmap[0])
	}
}

func TestUpdateProgress_Clamps(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalBackend)

	e.UpdateProgress(tr, "Redis", -20)
	if got := tr.Roadmap[5].Progress; got != 0 {
		t.Errorf("progress = %d, want 0", got)
	}
	e.UpdateProgress(tr, "Redis", 250)
	if tr.Roadmap[5].Status != StatusCompleted || tr.Roadmap[5].Progress != 100 {
		t.Errorf("Redis = %s/%d, want completed/100", tr.Roadmap[5].Status, tr.Roadmap[5].Progress)
	}
}

func TestUpdateProgress_CompletedSkillStaysComplete(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)
	e.UpdateProgress(tr, "HTML", 100)
	e.UpdateProgress(tr, "HTML", 30)

	s := tr.Roadmap[0]
	if s.Status != StatusCompleted || s.Progress != 100 {
		t.Errorf("HTML = %s/%d, want completed/100", s.Status, s.Progress)
	}
}

func TestUnlockNext_LeavesCompletedNeighbour(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)
	e.UpdateProgress(tr, "CSS", 100)
	e.UpdateProgress(tr, "HTML", 100)

	if tr.Roadmap[1].Status != StatusCompleted {
		t.Errorf("CSS status = %s, want completed", tr.Roadmap[1].Status)
	}
}

func TestMarkSkillComplete_Success(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)

	err := e.MarkSkillComplete(tr, CompleteRequest{
		SkillName:     "React",
		Source:        SourcePlatform,
		ProofImageURL: "proofs/user-1/react.png",
		BadgeID:       "badge-9",
	})
	if err != nil {
		t.Fatalf("MarkSkillComplete: %v", err)
	}
	if len(tr.CompletedSkills) != 1 {
		t.Fatalf("CompletedSkills len = %d, want 1", len(tr.CompletedSkills))
	}
	c := tr.CompletedSkills[0]
	if c.SkillName != "React" || c.Source != SourcePlatform || c.VerifiedBadgeID != "badge-9" {
		t.Errorf("completion = %+v", c)
	}
	if !c.CompletedAt.Equal(fixedNow) {
		t.Errorf("CompletedAt = %v, want %v", c.CompletedAt, fixedNow)
	}
	if tr.Roadmap[3].Progress != 100 {
		t.Errorf("React progress = %d, want 100", tr.Roadmap[3].Progress)
	}
}

func TestMarkSkillComplete_Errors(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)
	tr.Roadmap[2].Status = StatusLocked

	tests := []struct {
		name  string
		skill string
		want  error
	}{
		{"missing skill", "Go", ErrNotFound},
		{"locked skill", "JavaScript", ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.MarkSkillComplete(tr, CompleteRequest{SkillName: tt.skill, Source: SourceExternal})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if len(tr.CompletedSkills) != 0 {
		t.Errorf("failed calls appended completions: %d", len(tr.CompletedSkills))
	}
}

func TestMarkSkillComplete_SecondCallConflicts(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)
	req := CompleteRequest{SkillName: "HTML", Source: SourceExternal, SourceDescription: "freeCodeCamp"}

	if err := e.MarkSkillComplete(tr, req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	req.SourceDescription = "MDN"
	err := e.MarkSkillComplete(tr, req)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second call err = %v, want ErrConflict", err)
	}
	if len(tr.CompletedSkills) != 1 {
		t.Errorf("CompletedSkills len = %d, want 1", len(tr.CompletedSkills))
	}
	if tr.CompletedSkills[0].SourceDescription != "freeCodeCamp" {
		t.Errorf("first completion overwritten: %+v", tr.CompletedSkills[0])
	}
}

func TestMarkSkillComplete_UnlocksNext(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)
	tr.Roadmap[4].Status = StatusLocked

	if err := e.MarkSkillComplete(tr, CompleteRequest{SkillName: "React", Source: SourceExternal}); err != nil {
		t.Fatalf("MarkSkillComplete: %v", err)
	}
	if tr.Roadmap[4].Status != StatusUnlocked {
		t.Errorf("TypeScript status = %s, want unlocked", tr.Roadmap[4].Status)
	}
}

func TestAutoCompleteSkill_KeywordMatch(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)

	if !e.AutoCompleteSkill(tr, "React Badge", "b1") {
		t.Fatal("React Badge did not match React")
	}
	if tr.Roadmap[3].Status != StatusCompleted {
		t.Errorf("React status = %s, want completed", tr.Roadmap[3].Status)
	}
	c := tr.CompletedSkills[0]
	if c.Source != SourcePlatform || c.VerifiedBadgeID != "b1" {
		t.Errorf("completion = %+v", c)
	}
	if c.SourceDescription != "Completed via Skillion course: React Badge" {
		t.Errorf("SourceDescription = %q", c.SourceDescription)
	}
}

func TestAutoCompleteSkill_SubstringMatch(t *testing.T) {
	e := testEngine()
	tr := &Tracker{Roadmap: []Skill{
		{Name: "Node.js", Status: StatusUnlocked},
		{Name: "ReactJS Fundamentals", Status: StatusUnlocked},
	}}

	if !e.AutoCompleteSkill(tr, "React Badge", "b1") {
		t.Fatal("React Badge did not match ReactJS Fundamentals")
	}
	if tr.Roadmap[0].Status == StatusCompleted {
		t.Error("React Badge matched Node.js")
	}
	if tr.Roadmap[1].Status != StatusCompleted {
		t.Errorf("ReactJS Fundamentals status = %s, want completed", tr.Roadmap[1].Status)
	}
}

func TestAutoCompleteSkill_NoMatch(t *testing.T) {
	e := testEngine()
	tr := &Tracker{Roadmap: []Skill{{Name: "Node.js", Status: StatusUnlocked}}}

	if e.AutoCompleteSkill(tr, "React Badge", "b1") {
		t.Fatal("React Badge matched Node.js")
	}
	if len(tr.CompletedSkills) != 0 {
		t.Errorf("CompletedSkills len = %d, want 0", len(tr.CompletedSkills))
	}
}

func TestAutoCompleteSkill_Idempotent(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)

	if !e.AutoCompleteSkill(tr, "HTML-Basics", "b1") {
		t.Fatal("first call returned false")
	}
	if e.AutoCompleteSkill(tr, "HTML-Basics", "b1") {
		t.Fatal("second call returned true")
	}
	if len(tr.CompletedSkills) != 1 {
		t.Errorf("CompletedSkills len = %d, want 1", len(tr.CompletedSkills))
	}
}

func TestAutoCompleteSkill_DoesNotUnlockNext(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)
	tr.Roadmap[1].Status = StatusLocked

	e.AutoCompleteSkill(tr, "HTML", "b1")
	if tr.Roadmap[1].Status != StatusLocked {
		t.Errorf("CSS status = %s, want locked", tr.Roadmap[1].Status)
	}
}

func TestAutoCompleteSkill_CustomKeywords(t *testing.T) {
	e := NewEngine(WithKeywords([]string{"redis"}))
	tr := &Tracker{Roadmap: []Skill{{Name: "Redis Caching", Status: StatusUnlocked}}}

	if !e.AutoCompleteSkill(tr, "Redis Pro", "b1") {
		t.Fatal("custom keyword did not match")
	}
}

var verificationPattern = regexp.MustCompile(`^SKL-FRONTEND-\d{4}-\d{4}$`)

func TestCompletionStamping_AllPaths(t *testing.T) {
	complete := map[string]func(e *Engine, tr *Tracker, name string){
		"progress": func(e *Engine, tr *Tracker, name string) {
			e.UpdateProgress(tr, name, 100)
		},
		"mark": func(e *Engine, tr *Tracker, name string) {
			_ = e.MarkSkillComplete(tr, CompleteRequest{SkillName: name, Source: SourceExternal})
		},
		"auto": func(e *Engine, tr *Tracker, name string) {
			e.AutoCompleteSkill(tr, name, "b-"+name)
		},
	}

	for path, fn := range complete {
		t.Run(path, func(t *testing.T) {
			e := testEngine()
			tr := newTestTracker(catalog.GoalFrontend)
			for _, s := range tr.Roadmap[1:] {
				e.UpdateProgress(tr, s.Name, 100)
			}
			if tr.IsCompleted || tr.VerificationID != "" {
				t.Fatal("stamped before last skill")
			}

			fn(e, tr, "HTML")

			if tr.OverallProgress != 100 {
				t.Fatalf("OverallProgress = %d, want 100", tr.OverallProgress)
			}
			if !tr.IsCompleted {
				t.Fatal("IsCompleted = false")
			}
			if tr.CompletedAt == nil || !tr.CompletedAt.Equal(fixedNow) {
				t.Errorf("CompletedAt = %v, want %v", tr.CompletedAt, fixedNow)
			}
			if !verificationPattern.MatchString(tr.VerificationID) {
				t.Errorf("VerificationID = %q, want SKL-FRONTEND-YYYY-NNNN", tr.VerificationID)
			}

			id := tr.VerificationID
			e.UpdateProgress(tr, "CSS", 100)
			e.AutoCompleteSkill(tr, "React", "b")
			if tr.VerificationID != id {
				t.Errorf("VerificationID churned: %q -> %q", id, tr.VerificationID)
			}
		})
	}
}

func TestVerificationID_Format(t *testing.T) {
	e := NewEngine(
		WithClock(func() time.Time { return fixedNow }),
		WithRand(&seqRand{vals: []int{7}}),
	)
	if got := e.verificationID(catalog.GoalDataAnalyst, fixedNow); got != "SKL-DATAANALYST-2025-0007" {
		t.Errorf("verificationID = %q, want SKL-DATAANALYST-2025-0007", got)
	}
}

func TestOverallProgress(t *testing.T) {
	mk := func(done, total int) []Skill {
		s := make([]Skill, total)
		for i := range done {
			s[i].Status = StatusCompleted
		}
		return s
	}
	tests := []struct {
		done, total, want int
	}{
		{0, 0, 0},
		{0, 6, 0},
		{1, 6, 17},
		{2, 6, 33},
		{3, 6, 50},
		{5, 6, 83},
		{6, 6, 100},
		{2, 3, 67},
	}
	for _, tt := range tests {
		if got := OverallProgress(mk(tt.done, tt.total)); got != tt.want {
			t.Errorf("OverallProgress(%d/%d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestUnlockAll(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalBackend)
	tr.Roadmap[2].Status = StatusLocked
	tr.Roadmap[4].Status = StatusLocked

	if n := e.UnlockAll(tr); n != 2 {
		t.Errorf("UnlockAll = %d, want 2", n)
	}
	if n := e.UnlockAll(tr); n != 0 {
		t.Errorf("second UnlockAll = %d, want 0", n)
	}
}

func TestReinitialize_DiscardsProgressKeepsLog(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)
	e.AutoCompleteSkill(tr, "HTML", "b1")

	e.Reinitialize(tr, catalog.GoalDataAnalyst)

	if tr.CareerGoal != catalog.GoalDataAnalyst {
		t.Errorf("CareerGoal = %s", tr.CareerGoal)
	}
	if tr.Roadmap[0].Name != "Python" || tr.OverallProgress != 0 || tr.CompletedCount() != 0 {
		t.Errorf("not reinitialized: %+v", tr)
	}
	if len(tr.CompletedSkills) != 1 || tr.CompletedSkills[0].SkillName != "HTML" || tr.CompletedSkills[0].VerifiedBadgeID != "b1" {
		t.Errorf("completion log = %+v, want the HTML entry kept", tr.CompletedSkills)
	}
}
