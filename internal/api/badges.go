package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skilltrack/internal/proofs"
)

const proofLimit = proofs.MaxImageBytes

type enrollmentRequest struct {
	CourseID   string `json:"courseId" validate:"required,max=100"`
	CourseName string `json:"courseName" validate:"required,max=200"`
}

func (s *Server) listBadges(c *gin.Context) {
	bs, err := s.badges.List(c.Request.Context(), identity(c).Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, bs)
}

func (s *Server) generateMissingBadges(c *gin.Context) {
	s.generateMissing(c, identity(c).Subject)
}

func (s *Server) generateMissing(c *gin.Context, userID string) {
	created, err := s.badges.GenerateMissing(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"generated": len(created), "badges": created})
}

func (s *Server) updateBadgeLogos(c *gin.Context) {
	n, err := s.badges.RefreshStyles(c.Request.Context(), identity(c).Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"updated": n})
}

// completeCourse marks an enrolled course finished for the caller and
// issues its badge, which in turn auto-completes the matching roadmap skill.
func (s *Server) completeCourse(c *gin.Context) {
	courseID := strings.TrimSpace(c.Param("courseId"))
	b, issued, err := s.badges.CompleteCourse(c.Request.Context(), identity(c).Subject, courseID)
	if err != nil {
		s.fail(c, err)
		return
	}
	status := http.StatusOK
	if issued {
		status = http.StatusCreated
	}
	s.respond(c, status, gin.H{"badge": b, "issued": issued})
}

func (s *Server) adminForceBadges(c *gin.Context) {
	s.generateMissing(c, c.Param("userId"))
}

func (s *Server) adminDeleteTracker(c *gin.Context) {
	if err := s.roadmap.Reset(c.Request.Context(), c.Param("userId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) adminEnroll(c *gin.Context) {
	if s.enrollments == nil {
		abortError(c, http.StatusServiceUnavailable, "unavailable", "enrollments are not configured")
		return
	}
	var req enrollmentRequest
	if err := s.validation.bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	userID := c.Param("userId")
	if err := s.enrollments.Enroll(c.Request.Context(), userID, req.CourseID, req.CourseName); err != nil {
		s.fail(c, err)
		return
	}
	s.log.Info("enrollment recorded", "user_id", userID, "course_id", req.CourseID)
	s.respond(c, http.StatusCreated, gin.H{"userId": userID, "courseId": req.CourseID})
}
