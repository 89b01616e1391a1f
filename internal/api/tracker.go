package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skilltrack/internal/catalog"
	"github.com/abhisek/skilltrack/internal/roadmap"
)

type profileRequest struct {
	CareerGoal        string   `json:"careerGoal" validate:"required"`
	CareerGoalLabel   string   `json:"careerGoalLabel" validate:"required,max=100"`
	CurrentSkillLevel string   `json:"currentSkillLevel" validate:"required,oneof=beginner intermediate advanced"`
	LearningIntensity string   `json:"learningIntensity" validate:"omitempty,oneof=3-5 6-10 10+"`
	GoalTimeline      string   `json:"goalTimeline" validate:"omitempty,oneof=1-2 3-4 no-deadline"`
	ExistingKnowledge []string `json:"existingKnowledge" validate:"max=20,dive,max=60"`
}

type progressRequest struct {
	SkillName string `json:"skillName" validate:"required"`
	Progress  *int   `json:"progress" validate:"required,min=0,max=100"`
}

type completeRequest struct {
	SkillName         string `json:"skillName" validate:"required"`
	Source            string `json:"source" validate:"required,oneof=skillion other"`
	SourceDescription string `json:"sourceDescription" validate:"required_if=Source other,max=500"`
	ProofImageURL     string `json:"proofImageUrl" validate:"required_if=Source skillion"`
	BadgeID           string `json:"badgeId"`
}

func (s *Server) checkEnrollment(c *gin.Context) {
	ok, err := s.roadmap.CheckEnrollment(c.Request.Context(), identity(c).Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"hasEnrollment": ok})
}

func (s *Server) knowledgeOptions(c *gin.Context) {
	goal := c.Param("goal")
	s.respond(c, http.StatusOK, gin.H{"goal": goal, "options": s.roadmap.KnowledgeOptions(goal)})
}

func (s *Server) template(c *gin.Context) {
	goal, ok := catalog.ParseGoal(c.Param("goal"))
	if !ok {
		abortError(c, http.StatusNotFound, "not_found", "unknown career goal")
		return
	}
	s.respond(c, http.StatusOK, gin.H{"goal": goal, "roadmap": roadmap.InitializeRoadmap(goal)})
}

func (s *Server) upsertTracker(c *gin.Context) {
	var req profileRequest
	if err := s.validation.bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	goal, ok := catalog.ParseGoal(req.CareerGoal)
	if !ok {
		goal = catalog.Goal(req.CareerGoal)
	}
	claims := identity(c)
	t, created, err := s.roadmap.Upsert(c.Request.Context(), claims.Subject, roadmap.Profile{
		CareerGoal:        goal,
		CareerGoalLabel:   req.CareerGoalLabel,
		CurrentSkillLevel: req.CurrentSkillLevel,
		LearningIntensity: req.LearningIntensity,
		GoalTimeline:      req.GoalTimeline,
		ExistingKnowledge: req.ExistingKnowledge,
		ContactEmail:      claims.Email,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.respond(c, status, t)
}

func (s *Server) getTracker(c *gin.Context) {
	t, err := s.roadmap.Get(c.Request.Context(), identity(c).Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, t)
}

func (s *Server) updateProgress(c *gin.Context) {
	var req progressRequest
	if err := s.validation.bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	t, err := s.roadmap.UpdateProgress(c.Request.Context(), identity(c).Subject, req.SkillName, *req.Progress)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, t)
}

func (s *Server) completeSkill(c *gin.Context) {
	var req completeRequest
	if err := s.validation.bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	t, err := s.roadmap.MarkSkillComplete(c.Request.Context(), identity(c).Subject, roadmap.CompleteRequest{
		SkillName:         req.SkillName,
		Source:            roadmap.Source(req.Source),
		SourceDescription: req.SourceDescription,
		ProofImageURL:     req.ProofImageURL,
		BadgeID:           req.BadgeID,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, t)
}

func (s *Server) uploadProof(c *gin.Context) {
	if s.proofs == nil {
		abortError(c, http.StatusServiceUnavailable, "proofs_unavailable", "proof uploads are not configured")
		return
	}
	// Leave room for the multipart envelope around the image.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, proofLimit+64<<10)

	fh, err := c.FormFile("proofImage")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortError(c, http.StatusRequestEntityTooLarge, "too_large", "proof image exceeds 5 MiB")
			return
		}
		abortError(c, http.StatusBadRequest, "bad_request", "proofImage file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	url, err := s.proofs.Upload(c.Request.Context(), identity(c).Subject, fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusCreated, gin.H{"url": url})
}

func (s *Server) dashboard(c *gin.Context) {
	d, err := s.roadmap.Dashboard(c.Request.Context(), identity(c).Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, d)
}

func (s *Server) syncBadges(c *gin.Context) {
	results, err := s.roadmap.SyncBadges(c.Request.Context(), identity(c).Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"results": results})
}

func (s *Server) refresh(c *gin.Context) {
	t, results, err := s.roadmap.Refresh(c.Request.Context(), identity(c).Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"tracker": t, "results": results})
}

func (s *Server) resetTracker(c *gin.Context) {
	if err := s.roadmap.Reset(c.Request.Context(), identity(c).Subject); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) advise(c *gin.Context) {
	if s.coach == nil {
		abortError(c, http.StatusServiceUnavailable, "llm_unavailable", "no LLM provider configured")
		return
	}
	t, err := s.roadmap.Get(c.Request.Context(), identity(c).Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	advice, err := s.coach.Advise(c.Request.Context(), t)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, advice)
}
