// Package api serves the skill tracker over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/skilltrack/internal/authz"
	"github.com/abhisek/skilltrack/internal/badges"
	"github.com/abhisek/skilltrack/internal/coach"
	"github.com/abhisek/skilltrack/internal/logger"
	"github.com/abhisek/skilltrack/internal/proofs"
	"github.com/abhisek/skilltrack/internal/roadmap"
)

// Enroller records paid course enrollments.
type Enroller interface {
	Enroll(ctx context.Context, userID, courseID, courseName string) error
}

// Deps are the services behind the API. Coach and Proofs may be nil; their
// routes then answer 503.
type Deps struct {
	Roadmap     *roadmap.Service
	Badges      *badges.Service
	Enrollments Enroller
	Proofs      *proofs.Uploader
	Coach       *coach.Coach
	Authz       *authz.Enforcer
	Tokens      *Tokens
	Log         *logger.Logger
}

type Options struct {
	RateLimit float64
	RateBurst int
	// ProofsDir, when set, is served read-only under ProofsURLPrefix.
	ProofsDir       string
	ProofsURLPrefix string
}

type Server struct {
	roadmap     *roadmap.Service
	badges      *badges.Service
	enrollments Enroller
	proofs      *proofs.Uploader
	coach       *coach.Coach
	authz       *authz.Enforcer
	tokens      *Tokens
	log         *logger.Logger
	validation  *validation
	engine      *gin.Engine
}

func New(d Deps, opts Options) (*Server, error) {
	if d.Roadmap == nil || d.Badges == nil || d.Authz == nil || d.Tokens == nil {
		return nil, errors.New("api: roadmap, badges, authz and tokens are required")
	}
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		roadmap:     d.Roadmap,
		badges:      d.Badges,
		enrollments: d.Enrollments,
		proofs:      d.Proofs,
		coach:       d.Coach,
		authz:       d.Authz,
		tokens:      d.Tokens,
		log:         log.With("service", "API"),
		validation:  newValidation(),
	}
	s.engine = s.routes(opts)
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), instrument(), requestLogger(s.log))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.ProofsDir != "" {
		prefix := opts.ProofsURLPrefix
		if prefix == "" {
			prefix = "/uploads"
		}
		r.Static(prefix, opts.ProofsDir)
	}

	api := r.Group("/api", s.requireAuth(), rateLimit(newClientLimiter(opts.RateLimit, opts.RateBurst)), s.authorize())

	st := api.Group("/skill-tracker")
	st.GET("/check-enrollment", s.checkEnrollment)
	st.GET("/knowledge-options/:goal", s.knowledgeOptions)
	st.GET("/templates/:goal", s.template)
	st.POST("", s.upsertTracker)
	st.GET("", s.getTracker)
	st.PUT("/progress", s.updateProgress)
	st.POST("/complete", s.completeSkill)
	st.POST("/proof", s.uploadProof)
	st.GET("/badges", s.listBadges)
	st.GET("/dashboard", s.dashboard)
	st.POST("/sync-badges", s.syncBadges)
	st.POST("/refresh", s.refresh)
	st.POST("/generate-missing-badges", s.generateMissingBadges)
	st.POST("/update-badge-logos", s.updateBadgeLogos)
	st.DELETE("/reset", s.resetTracker)
	st.POST("/coach", s.advise)

	api.POST("/courses/:courseId/complete", s.completeCourse)

	admin := api.Group("/admin/users/:userId")
	admin.POST("/force-create-badges", s.adminForceBadges)
	admin.DELETE("/tracker", s.adminDeleteTracker)
	admin.POST("/enrollments", s.adminEnroll)

	return r
}

// respond writes v as JSON.
func (s *Server) respond(c *gin.Context, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(status, "application/json; charset=utf-8", b)
}
