package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"portfolio/models"
	"portfolio/pkg/mailer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMailer records messages; fail, when set, decides per call whether to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail func(n int, msg mailer.Message) error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.sent)
	f.sent = append(f.sent, msg)
	if f.fail != nil {
		return f.fail(n, msg)
	}
	return nil
}

func (f *fakeMailer) messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.sent...)
}

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func performJSON(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	return performRequest(r, method, path, bytes.NewReader(b), token, "application/json")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var testToday = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// setupTestServer points the package globals at a fresh SQLite database
// and a recording mailer.
func setupTestServer(t *testing.T) (*gin.Engine, *fakeMailer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	cfg = Config{
		DBDriver:         "sqlite",
		DBDSN:            filepath.Join(dir, "test.db"),
		DBAutoMigrate:    true,
		JWTSecret:        []byte("test-secret"),
		DefaultFromEmail: "noreply@example.com",
		AdminEmail:       "owner@example.com",
		EmailBackend:     "console",
		TemplatesDir:     "templates",
		StaticDir:        "static",
		MediaDir:         filepath.Join(dir, "media"),
	}
	require.NoError(t, initDB())
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	var err error
	pages, err = newHTMLRenderer(cfg.TemplatesDir)
	require.NoError(t, err)

	fm := &fakeMailer{}
	prevMail := mail
	mail = fm
	now = func() time.Time { return testToday }
	t.Cleanup(func() {
		mail = prevMail
		now = time.Now
	})
	return newRouter(), fm
}

func followWithCookies(r http.Handler, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, rec.Header().Get("Location"), nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	out := httptest.NewRecorder()
	r.ServeHTTP(out, req)
	return out
}

func createProjects(t *testing.T, n int) []models.Project {
	t.Helper()
	out := make([]models.Project, n)
	for i := range out {
		out[i] = models.Project{
			Title:        "Project " + string(rune('A'+i)),
			Description:  "description",
			ProjectType:  models.ProjectWeb,
			Technologies: "Go, PostgreSQL",
			Order:        i + 1,
		}
		require.NoError(t, db.Create(&out[i]).Error)
	}
	return out
}

func TestHomeWithoutPersonalInfo(t *testing.T) {
	r, _ := setupTestServer(t)

	rec := performRequest(r, http.MethodGet, "/", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Portfolio</h1>")

	rec = performRequest(r, http.MethodGet, "/api/home", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Nil(t, body["personal_info"])
	assert.Equal(t, 0.0, body["years_of_experience"])
}

func TestHomeContext(t *testing.T) {
	r, _ := setupTestServer(t)
	require.NoError(t, db.Create(&models.PersonalInfo{Name: "Alex Example", Title: "Backend Developer", About: "about", Email: "alex@example.com"}).Error)
	for i := 0; i < 10; i++ {
		require.NoError(t, db.Create(&models.Skill{Name: "skill" + string(rune('a'+i)), Category: models.SkillBackend, Proficiency: 10 * i, Order: 10 - i}).Error)
	}
	end := models.MustDate("2024-02-01")
	exps := []models.Experience{
		{Title: "Python Developer", Company: "A", StartDate: models.MustDate("2022-07-01"), EndDate: &end, Description: "d"},
		{Title: "Intern", Company: "B", StartDate: models.MustDate("2021-01-01"), Description: "open ended, skipped"},
		{Title: "Go Developer", Company: "C", StartDate: models.MustDate("2024-03-01"), Current: true, Description: "d"},
	}
	for i := range exps {
		require.NoError(t, db.Create(&exps[i]).Error)
	}
	require.NoError(t, db.Create(&models.Technology{Name: "Go", Slug: "go", Category: models.TechLanguage, Level: 4, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Technology{Name: "Perl", Slug: "perl", Category: models.TechLanguage, Level: 2, IsActive: false}).Error)

	rec := performRequest(r, http.MethodGet, "/api/home", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ctx homeContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ctx))

	require.NotNil(t, ctx.PersonalInfo)
	assert.Equal(t, "Alex Example", ctx.PersonalInfo.Name)
	assert.Len(t, ctx.Skills, homeSkillLimit)
	assert.Equal(t, 1, ctx.Skills[0].Order)
	require.Len(t, ctx.Experiences, homeExperienceLimit)
	assert.Equal(t, "Go Developer", ctx.Experiences[0].Title)
	assert.Equal(t, "Python Developer", ctx.Experiences[1].Title)
	// 580 days ended + 306 days current, over 365.25
	assert.InDelta(t, 2.4, ctx.YearsOfExperience, 1e-9)
	require.Len(t, ctx.TechnologiesByCategory[models.TechLanguage], 1)
	assert.Equal(t, "Go", ctx.TechnologiesByCategory[models.TechLanguage][0].Name)

	rec = performRequest(r, http.MethodGet, "/", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alex Example")
	assert.Contains(t, rec.Body.String(), "2024 – present")
}

func TestHomeOrdering(t *testing.T) {
	r, _ := setupTestServer(t)
	for _, tc := range []struct {
		name  string
		order int
	}{{"Zig", 1}, {"Go", 2}, {"C", 1}} {
		require.NoError(t, db.Create(&models.Technology{Name: tc.name, Slug: strings.ToLower(tc.name), Category: models.TechLanguage, Level: 3, IsActive: true, Order: tc.order}).Error)
	}
	require.NoError(t, db.Create(&models.Skill{Name: "React", Category: models.SkillFrontend, Proficiency: 60, Order: 0}).Error)
	require.NoError(t, db.Create(&models.Skill{Name: "Postgres", Category: models.SkillDatabase, Proficiency: 70, Order: 1}).Error)
	require.NoError(t, db.Create(&models.Skill{Name: "Go", Category: models.SkillBackend, Proficiency: 90, Order: 9}).Error)
	require.NoError(t, db.Create(&models.Skill{Name: "Gin", Category: models.SkillBackend, Proficiency: 80, Order: 3}).Error)

	rec := performRequest(r, http.MethodGet, "/api/home", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ctx homeContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ctx))

	var techs []string
	for _, tech := range ctx.TechnologiesByCategory[models.TechLanguage] {
		techs = append(techs, tech.Name)
	}
	assert.Equal(t, []string{"C", "Zig", "Go"}, techs)

	var skills []string
	for _, s := range ctx.Skills {
		skills = append(skills, s.Name)
	}
	assert.Equal(t, []string{"Gin", "Go", "Postgres", "React"}, skills)
}

func TestAboutPage(t *testing.T) {
	r, _ := setupTestServer(t)
	require.NoError(t, db.Create(&models.Education{Institution: "Old School", Faculty: "CS", StartYear: 2005, EndYear: 2009}).Error)
	require.NoError(t, db.Create(&models.Education{Institution: "University", Faculty: "IT", StartYear: 2010, EndYear: 2014}).Error)
	require.NoError(t, db.Create(&models.Skill{Name: "Docker", Category: models.SkillDevOps, Proficiency: 75}).Error)

	rec := performRequest(r, http.MethodGet, "/api/about", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ctx aboutContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ctx))
	require.Len(t, ctx.Educations, 2)
	assert.Equal(t, "University", ctx.Educations[0].Institution)
	require.Len(t, ctx.SkillGroups, 1)
	assert.Equal(t, "DevOps", ctx.SkillGroups[0].Label)

	rec = performRequest(r, http.MethodGet, "/about/", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2010 - 2014")
	assert.Contains(t, rec.Body.String(), "Advanced")
}

func TestProjectListPagination(t *testing.T) {
	r, _ := setupTestServer(t)
	createProjects(t, 7)

	rec := performRequest(r, http.MethodGet, "/api/projects", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page projectPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.NumPages)
	assert.EqualValues(t, 7, page.Total)
	require.Len(t, page.Projects, projectsPerPage)
	assert.Equal(t, "Project A", page.Projects[0].Title)
	assert.True(t, page.HasNext)

	rec = performRequest(r, http.MethodGet, "/api/projects?page=2", nil, "", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Projects, 1)
	assert.Equal(t, "Project G", page.Projects[0].Title)

	rec = performRequest(r, http.MethodGet, "/api/projects?page=9", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Projects)

	rec = performRequest(r, http.MethodGet, "/api/projects?page=abc", nil, "", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)

	rec = performRequest(r, http.MethodGet, "/projects/?page=2", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Project G")
}

func TestProjectListPageTwoEmptyWithSixProjects(t *testing.T) {
	r, _ := setupTestServer(t)
	createProjects(t, 6)

	rec := performRequest(r, http.MethodGet, "/projects/?page=2", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No projects on this page.")
}

func TestProjectOrderTiesNewestFirst(t *testing.T) {
	r, _ := setupTestServer(t)
	older := models.Project{Title: "Older", Description: "d", ProjectType: models.ProjectWeb, Order: 1}
	require.NoError(t, db.Create(&older).Error)
	newer := models.Project{Title: "Newer", Description: "d", ProjectType: models.ProjectWeb, Order: 1}
	require.NoError(t, db.Create(&newer).Error)
	first := models.Project{Title: "First", Description: "d", ProjectType: models.ProjectWeb, Order: 0}
	require.NoError(t, db.Create(&first).Error)

	rec := performRequest(r, http.MethodGet, "/api/projects", nil, "", "")
	var page projectPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Projects, 3)
	assert.Equal(t, []string{"First", "Newer", "Older"},
		[]string{page.Projects[0].Title, page.Projects[1].Title, page.Projects[2].Title})
}

func TestProjectDetail(t *testing.T) {
	r, _ := setupTestServer(t)
	p := createProjects(t, 1)[0]

	rec := performRequest(r, http.MethodGet, "/projects/"+itoa(p.ID)+"/", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), p.Title)

	for _, path := range []string{"/projects/999/", "/projects/abc/", "/nowhere"} {
		rec = performRequest(r, http.MethodGet, path, nil, "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Page not found", path)
	}

	rec = performRequest(r, http.MethodGet, "/api/projects/999", nil, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode(t, rec)["error"])
}

func contactValues() url.Values {
	return url.Values{
		"name":         {"Jane"},
		"email":        {"jane@example.com"},
		"subject":      {"A website"},
		"project_type": {"web"},
		"budget":       {"1k_5k"},
		"message":      {"Hello there"},
		"privacy":      {"on"},
	}
}

func postContact(r http.Handler, v url.Values) *httptest.ResponseRecorder {
	return performRequest(r, http.MethodPost, "/contact/", strings.NewReader(v.Encode()), "", "application/x-www-form-urlencoded")
}

func TestContactFormRenders(t *testing.T) {
	r, _ := setupTestServer(t)
	rec := performRequest(r, http.MethodGet, "/contact/", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<form method="post" action="/contact/"`)
	assert.Contains(t, rec.Body.String(), "To be discussed")
}

func TestContactRequiresPrivacy(t *testing.T) {
	r, fm := setupTestServer(t)
	v := contactValues()
	v.Del("privacy")

	rec := postContact(r, v)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgContactInvalid)
	assert.Contains(t, rec.Body.String(), "You must agree to the processing of personal data.")
	assert.Empty(t, fm.messages())
}

func TestContactInvalidEmail(t *testing.T) {
	r, fm := setupTestServer(t)
	v := contactValues()
	v.Set("email", "not-an-email")

	rec := postContact(r, v)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Enter a valid email address.")
	// submitted values are kept
	assert.Contains(t, rec.Body.String(), `value="not-an-email"`)
	assert.Empty(t, fm.messages())
}

func TestContactSendsNotificationAndAutoReply(t *testing.T) {
	r, fm := setupTestServer(t)

	rec := postContact(r, contactValues())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/contact/", rec.Header().Get("Location"))

	sent := fm.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, []string{"owner@example.com"}, sent[0].To)
	assert.Equal(t, "noreply@example.com", sent[0].From)
	assert.Equal(t, "jane@example.com", sent[0].ReplyTo)
	assert.Equal(t, "Portfolio contact: A website", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Budget: $1,000 – $5,000")
	assert.Contains(t, sent[0].Body, "Hello there")
	assert.Equal(t, []string{"jane@example.com"}, sent[1].To)

	next := followWithCookies(r, rec)
	require.Equal(t, http.StatusOK, next.Code)
	assert.Contains(t, next.Body.String(), msgContactSent)
}

func TestContactNotificationFailureShowsError(t *testing.T) {
	r, fm := setupTestServer(t)
	fm.fail = func(int, mailer.Message) error { return errors.New("smtp unavailable") }

	rec := postContact(r, contactValues())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, fm.messages(), 1, "no auto-reply after a failed notification")

	next := followWithCookies(r, rec)
	assert.Contains(t, next.Body.String(), "Error sending message: smtp unavailable")
	assert.NotContains(t, next.Body.String(), msgContactSent)
}

func TestContactAutoReplyFailureIsSilent(t *testing.T) {
	r, fm := setupTestServer(t)
	fm.fail = func(n int, _ mailer.Message) error {
		if n == 1 {
			return errors.New("mailbox full")
		}
		return nil
	}

	rec := postContact(r, contactValues())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, fm.messages(), 2)

	next := followWithCookies(r, rec)
	assert.Contains(t, next.Body.String(), msgContactSent)
	assert.NotContains(t, next.Body.String(), "mailbox full")
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := setupTestServer(t)
	postContact(r, contactValues())
	rec := performRequest(r, http.MethodGet, "/metrics", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portfolio_contact_submissions_total")
}
