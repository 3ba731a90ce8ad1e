package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"portfolio/pkg/flash"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pages   *htmlRenderer
	flashes = flash.NewStore(5 * time.Minute)
)

// now is replaced in tests.
var now = time.Now

func newRouter() *gin.Engine {
	r := gin.New()
	if gin.Mode() != gin.TestMode {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery(), metricsMiddleware())
	if pages != nil {
		r.HTMLRender = pages
	}
	setupRoutes(r)
	return r
}

func setupRoutes(r *gin.Engine) {
	r.Static("/static", cfg.StaticDir)
	r.Static("/media", cfg.MediaDir)

	r.GET("/", homeHandler)
	r.GET("/projects/", projectListHandler)
	r.GET("/projects/:id/", projectDetailHandler)
	r.GET("/about/", aboutHandler)
	r.GET("/contact/", contactFormHandler)
	r.POST("/contact/", contactSubmitHandler)

	api := r.Group("/api")
	api.GET("/home", apiHomeHandler)
	api.GET("/about", apiAboutHandler)
	api.GET("/projects", apiProjectListHandler)
	api.GET("/projects/:id", apiProjectDetailHandler)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupAdminRoutes(r)

	r.NoRoute(func(c *gin.Context) {
		notFound(c)
	})
}

// renderPage renders an HTML page with the fields every template expects.
func renderPage(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	msgs := flashes.Pop(c)
	if extra, ok := data["messages"].([]flash.Message); ok {
		msgs = append(msgs, extra...)
	}
	data["messages"] = msgs
	data["path"] = c.Request.URL.Path
	c.HTML(status, name, data)
}

func notFound(c *gin.Context) {
	if isAPIPath(c.Request.URL.Path) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	renderPage(c, http.StatusNotFound, "404.html", nil)
}

func serverError(c *gin.Context, err error) {
	slog.Error("request failed", "path", c.Request.URL.Path, "err", err)
	if isAPIPath(c.Request.URL.Path) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.String(http.StatusInternalServerError, "internal server error")
}

func isAPIPath(p string) bool {
	return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/admin/")
}

// pageParam reads ?page=, anything unparsable or below one is page 1.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func homeHandler(c *gin.Context) {
	ctx, err := loadHome(db, now())
	if err != nil {
		serverError(c, err)
		return
	}
	renderPage(c, http.StatusOK, "index.html", gin.H{"ctx": ctx})
}

func aboutHandler(c *gin.Context) {
	ctx, err := loadAbout(db, now())
	if err != nil {
		serverError(c, err)
		return
	}
	renderPage(c, http.StatusOK, "about.html", gin.H{"ctx": ctx})
}

func projectListHandler(c *gin.Context) {
	page, err := loadProjectPage(db, pageParam(c))
	if err != nil {
		serverError(c, err)
		return
	}
	renderPage(c, http.StatusOK, "projects.html", gin.H{"page": page})
}

func projectDetailHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		notFound(c)
		return
	}
	p, err := loadProject(db, id)
	if err != nil {
		if isNotFound(err) {
			notFound(c)
			return
		}
		serverError(c, err)
		return
	}
	renderPage(c, http.StatusOK, "project_detail.html", gin.H{"project": p})
}

func apiHomeHandler(c *gin.Context) {
	ctx, err := loadHome(db, now())
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctx)
}

func apiAboutHandler(c *gin.Context) {
	ctx, err := loadAbout(db, now())
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctx)
}

func apiProjectListHandler(c *gin.Context) {
	page, err := loadProjectPage(db, pageParam(c))
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func apiProjectDetailHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		notFound(c)
		return
	}
	p, err := loadProject(db, id)
	if err != nil {
		if isNotFound(err) {
			notFound(c)
			return
		}
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p, "project_type_display": p.ProjectTypeDisplay()})
}
