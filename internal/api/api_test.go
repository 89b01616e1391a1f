package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skilltrack/internal/authz"
	"github.com/abhisek/skilltrack/internal/badges"
	"github.com/abhisek/skilltrack/internal/coach"
	"github.com/abhisek/skilltrack/internal/llm"
	"github.com/abhisek/skilltrack/internal/lock"
	"github.com/abhisek/skilltrack/internal/proofs"
	"github.com/abhisek/skilltrack/internal/roadmap"
	"github.com/abhisek/skilltrack/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type harness struct {
	t      *testing.T
	srv    *Server
	store  *store.Store
	tokens *Tokens
	llm    *llm.MockProvider
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	st, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	badgeSvc := badges.NewService(st.Badges(), st.Courses(), st.Enrollments(), nil, nil)
	roadmapSvc := roadmap.NewService(roadmap.Deps{
		Repo:        st.Trackers(),
		Locker:      lock.NewLocal(),
		Engine:      roadmap.NewEngine(),
		Badges:      badgeSvc,
		Enrollments: st.Enrollments(),
	})
	enforcer, err := authz.NewEnforcer("")
	require.NoError(t, err)
	tokens, err := NewTokens("test-secret-0123456789", "skilltrack", time.Hour)
	require.NoError(t, err)
	local, err := proofs.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	mock := llm.NewMockProvider()

	if opts.RateLimit == 0 {
		opts.RateLimit, opts.RateBurst = 1000, 1000
	}
	srv, err := New(Deps{
		Roadmap:     roadmapSvc,
		Badges:      badgeSvc,
		Enrollments: st.Enrollments(),
		Proofs:      proofs.NewUploader(local, nil),
		Coach:       coach.New(mock, coach.DefaultConfig(), nil),
		Authz:       enforcer,
		Tokens:      tokens,
	}, opts)
	require.NoError(t, err)
	return &harness{t: t, srv: srv, store: st, tokens: tokens, llm: mock}
}

func (h *harness) token(userID, role string) string {
	tok, err := h.tokens.Issue(userID, role, userID+"@example.com")
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var r *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(b)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	e, ok := env["error"].(map[string]any)
	require.True(t, ok, "no error envelope: %s", w.Body.String())
	return e["code"].(string)
}

// enroll records a paid enrollment through the admin route.
func (h *harness) enroll(userID, courseID, courseName string) {
	h.t.Helper()
	admin := h.token("admin-1", authz.RoleAdmin)
	w := h.do(http.MethodPost, "/api/admin/users/"+userID+"/enrollments", admin,
		map[string]string{"courseId": courseID, "courseName": courseName})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
}

// enrolled creates an enrolled learner with a frontend tracker.
func (h *harness) enrolled(userID string) string {
	h.t.Helper()
	h.enroll(userID, "c-1", "Web Foundations")

	tok := h.token(userID, authz.RoleLearner)
	w := h.do(http.MethodPost, "/api/skill-tracker", tok, map[string]any{
		"careerGoal":        "frontend",
		"careerGoalLabel":   "Frontend Developer",
		"currentSkillLevel": "beginner",
		"existingKnowledge": []string{"HTML"},
	})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return tok
}

func TestUnauthenticatedRoutes(t *testing.T) {
	h := newHarness(t, Options{})

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/healthz", "", nil).Code)
	w := h.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "skilltrack_http_requests_total")
}

func TestAuthentication(t *testing.T) {
	h := newHarness(t, Options{})

	w := h.do(http.MethodGet, "/api/skill-tracker", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", errorCode(t, w))

	w = h.do(http.MethodGet, "/api/skill-tracker", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other, err := NewTokens("another-secret-987654321", "skilltrack", time.Hour)
	require.NoError(t, err)
	forged, err := other.Issue("u1", authz.RoleAdmin, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/skill-tracker", forged, nil).Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	h := newHarness(t, Options{})
	learner := h.token("u1", authz.RoleLearner)

	w := h.do(http.MethodPost, "/api/admin/users/u2/enrollments", learner,
		map[string]string{"courseId": "c-1", "courseName": "HTML"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", errorCode(t, w))

	w = h.do(http.MethodGet, "/api/skill-tracker/check-enrollment", learner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["hasEnrollment"])
}

func TestUpsertRequiresEnrollment(t *testing.T) {
	h := newHarness(t, Options{})
	w := h.do(http.MethodPost, "/api/skill-tracker", h.token("u1", authz.RoleLearner), map[string]any{
		"careerGoal":        "backend",
		"careerGoalLabel":   "Backend Developer",
		"currentSkillLevel": "beginner",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not_enrolled", errorCode(t, w))
}

func TestUpsertValidation(t *testing.T) {
	h := newHarness(t, Options{})
	w := h.do(http.MethodPost, "/api/skill-tracker", h.token("u1", authz.RoleLearner), map[string]any{
		"careerGoal":        "frontend",
		"currentSkillLevel": "wizard",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields := decode(t, w)["error"].(map[string]any)["fields"].(map[string]any)
	assert.Contains(t, fields, "careerGoalLabel")
	assert.Contains(t, fields, "currentSkillLevel")
}

func TestTrackerLifecycle(t *testing.T) {
	h := newHarness(t, Options{})
	tok := h.enrolled("u1")

	w := h.do(http.MethodGet, "/api/skill-tracker", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tracker := decode(t, w)
	assert.Len(t, tracker["roadmap"], 6)
	assert.Equal(t, "u1@example.com", tracker["contactEmail"])

	w = h.do(http.MethodPut, "/api/skill-tracker/progress", tok, map[string]any{"skillName": "HTML", "progress": 150})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"].(map[string]any)["fields"], "progress")

	w = h.do(http.MethodPut, "/api/skill-tracker/progress", tok, map[string]any{"skillName": "HTML", "progress": 40})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 40, decode(t, w)["roadmap"].([]any)[0].(map[string]any)["progress"])

	w = h.do(http.MethodPost, "/api/skill-tracker/complete", tok, map[string]any{"skillName": "CSS", "source": "skillion"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"].(map[string]any)["fields"], "proofImageUrl")

	w = h.do(http.MethodPost, "/api/skill-tracker/complete", tok, map[string]any{
		"skillName": "CSS", "source": "other", "sourceDescription": "Online bootcamp",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(http.MethodPost, "/api/skill-tracker/complete", tok, map[string]any{
		"skillName": "CSS", "source": "other", "sourceDescription": "Again",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodPost, "/api/skill-tracker/complete", tok, map[string]any{
		"skillName": "Rust", "source": "other", "sourceDescription": "Book",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodDelete, "/api/skill-tracker/reset", tok, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/skill-tracker", tok, nil).Code)
}

func TestCourseCompletionAndBadgeSync(t *testing.T) {
	h := newHarness(t, Options{})
	tok := h.enrolled("u1")
	h.enroll("u1", "html-101", "HTML Basics")

	w := h.do(http.MethodPost, "/api/courses/html-101/complete", tok, map[string]string{"courseName": "Forged"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	badge := decode(t, w)["badge"].(map[string]any)
	assert.Equal(t, "Skillion HTML Basics Badge", badge["badgeName"])

	w = h.do(http.MethodPost, "/api/courses/html-101/complete", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["issued"])

	w = h.do(http.MethodPost, "/api/skill-tracker/sync-badges", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	results := decode(t, w)["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, true, results[0].(map[string]any)["skillCompleted"])

	w = h.do(http.MethodGet, "/api/skill-tracker/dashboard", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode(t, w)
	assert.EqualValues(t, 1, dash["completedSkills"])
	assert.EqualValues(t, 1, dash["badgesEarned"])
	assert.EqualValues(t, 2, dash["enrolledCourses"])
	assert.Equal(t, "Frontend Developer", dash["careerGoal"])

	w = h.do(http.MethodGet, "/api/skill-tracker/badges", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestCourseCompletionRequiresEnrollment(t *testing.T) {
	h := newHarness(t, Options{})
	tok := h.enrolled("u1")

	w := h.do(http.MethodPost, "/api/courses/react-201/complete", tok, map[string]string{"courseName": "React"})
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	assert.Equal(t, "not_enrolled", errorCode(t, w))

	stranger := h.token("u2", authz.RoleLearner)
	w = h.do(http.MethodPost, "/api/courses/c-1/complete", stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodGet, "/api/skill-tracker/badges", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list)
}

func TestCatalogRoutes(t *testing.T) {
	h := newHarness(t, Options{})
	tok := h.token("u1", authz.RoleLearner)

	w := h.do(http.MethodGet, "/api/skill-tracker/knowledge-options/data-analyst", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["options"], 5)

	w = h.do(http.MethodGet, "/api/skill-tracker/knowledge-options/astronaut", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["options"])

	w = h.do(http.MethodGet, "/api/skill-tracker/templates/backend", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["roadmap"])

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/skill-tracker/templates/astronaut", tok, nil).Code)
}

func multipartProof(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="proofImage"; filename="proof.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestProofUpload(t *testing.T) {
	h := newHarness(t, Options{})
	tok := h.token("u1", authz.RoleLearner)

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	tests := []struct {
		name        string
		contentType string
		data        []byte
		want        int
	}{
		{"png", "image/png", png, http.StatusCreated},
		{"text disguised as image", "image/png", []byte("hello, not an image"), http.StatusBadRequest},
		{"declared non-image", "text/plain", png, http.StatusBadRequest},
		{"too large", "image/png", append(png, bytes.Repeat([]byte{1}, proofLimit)...), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartProof(t, tt.contentType, tt.data)
			req := httptest.NewRequest(http.MethodPost, "/api/skill-tracker/proof", body)
			req.Header.Set("Content-Type", ct)
			req.Header.Set("Authorization", "Bearer "+tok)
			w := httptest.NewRecorder()
			h.srv.Handler().ServeHTTP(w, req)

			require.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.want == http.StatusCreated {
				assert.True(t, strings.HasPrefix(decode(t, w)["url"].(string), "/uploads/proofs/u1/"))
			}
		})
	}
}

func TestCoach(t *testing.T) {
	h := newHarness(t, Options{})
	tok := h.enrolled("u1")
	h.llm.AddResponse(llm.MockResponse{
		Content: json.RawMessage(`{"summary":"Solid start","nextSkill":"html","steps":["Finish the forms chapter"]}`),
	})

	w := h.do(http.MethodPost, "/api/skill-tracker/coach", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "HTML", decode(t, w)["nextSkill"])

	// The mock has no responses left and reports itself unavailable.
	w = h.do(http.MethodPost, "/api/skill-tracker/coach", tok, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, Options{RateLimit: 0.001, RateBurst: 1})
	tok := h.token("u1", authz.RoleLearner)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/skill-tracker/check-enrollment", tok, nil).Code)
	w := h.do(http.MethodGet, "/api/skill-tracker/check-enrollment", tok, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", errorCode(t, w))

	// Limits are per learner.
	other := h.token("u2", authz.RoleLearner)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/skill-tracker/check-enrollment", other, nil).Code)
}

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("test-secret-0123456789", "skilltrack", time.Minute)
	require.NoError(t, err)

	raw, err := tokens.Issue("u1", authz.RoleAdmin, "a@example.com")
	require.NoError(t, err)
	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, authz.RoleAdmin, claims.Role)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tokens.Parse(raw)
	assert.Error(t, err)

	_, err = NewTokens("short", "skilltrack", time.Minute)
	assert.Error(t, err)
}
