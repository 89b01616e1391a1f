package roadmap

import (
	"reflect"
	"testing"

	"github.com/abhisek/skilltrack/internal/catalog"
)

func TestCodec_RoundTripMidRoadmap(t *testing.T) {
	e := testEngine()
	tr := newTestTracker(catalog.GoalFrontend)
	tr.ExistingKnowledge = []string{"HTML", "Git & GitHub"}
	e.AutoCompleteSkill(tr, "HTML Basics", "badge-1")
	if err := e.MarkSkillComplete(tr, CompleteRequest{
		SkillName:     "CSS",
		Source:        SourcePlatform,
		ProofImageURL: "proofs/u/css.png",
	}); err != nil {
		t.Fatal(err)
	}
	if err := e.MarkSkillComplete(tr, CompleteRequest{
		SkillName:         "JavaScript",
		Source:            SourceExternal,
		SourceDescription: "Udemy",
	}); err != nil {
		t.Fatal(err)
	}
	e.UpdateProgress(tr, "React", 35)
	tr.Version = 4

	b, err := Encode(tr)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !reflect.DeepEqual(got.Roadmap, tr.Roadmap) {
		t.Errorf("roadmap differs:\n got %+v\nwant %+v", got.Roadmap, tr.Roadmap)
	}
	if len(got.CompletedSkills) != 3 {
		t.Fatalf("CompletedSkills len = %d, want 3", len(got.CompletedSkills))
	}
	for i := range tr.CompletedSkills {
		w, g := tr.CompletedSkills[i], got.CompletedSkills[i]
		if !g.CompletedAt.Equal(w.CompletedAt) {
			t.Errorf("[%d] CompletedAt = %v, want %v", i, g.CompletedAt, w.CompletedAt)
		}
		g.CompletedAt, w.CompletedAt = w.CompletedAt, w.CompletedAt
		if g != w {
			t.Errorf("[%d] completion = %+v, want %+v", i, g, w)
		}
	}
	if got.OverallProgress != 50 || got.Version != 4 || got.IsCompleted {
		t.Errorf("scalars = %d/%d/%v", got.OverallProgress, got.Version, got.IsCompleted)
	}
	if !reflect.DeepEqual(got.Profile, tr.Profile) {
		t.Errorf("profile = %+v, want %+v", got.Profile, tr.Profile)
	}
}

func TestDecode_NormalizesNilSlices(t *testing.T) {
	got, err := Decode([]byte(`{"userId":"u1","careerGoal":"custom"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Roadmap == nil || got.CompletedSkills == nil || got.ExistingKnowledge == nil {
		t.Errorf("nil slices after decode: %+v", got)
	}
}

func TestClone_IsDeep(t *testing.T) {
	tr := newTestTracker(catalog.GoalBackend)
	c := Clone(tr)
	c.Roadmap[0].Status = StatusCompleted
	c.ExistingKnowledge = append(c.ExistingKnowledge, "Git")

	if tr.Roadmap[0].Status != StatusUnlocked {
		t.Error("clone shares roadmap backing array")
	}
	if len(tr.ExistingKnowledge) != 0 {
		t.Error("clone shares knowledge slice")
	}
}
