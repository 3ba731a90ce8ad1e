package main

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"portfolio/models"
	"portfolio/pkg/media"
	"portfolio/pkg/portfolio"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin/render"
)

// htmlRenderer is a gin HTMLRender over one template set parsed from a
// directory. The set can be swapped at runtime by watch.
type htmlRenderer struct {
	dir   string
	funcs template.FuncMap

	mu   sync.RWMutex
	tmpl *template.Template
}

func newHTMLRenderer(dir string) (*htmlRenderer, error) {
	r := &htmlRenderer{dir: dir, funcs: templateFuncs()}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *htmlRenderer) load() error {
	t, err := template.New("").Funcs(r.funcs).ParseGlob(filepath.Join(r.dir, "*.html"))
	if err != nil {
		return fmt.Errorf("parse templates in %s: %w", r.dir, err)
	}
	r.mu.Lock()
	r.tmpl = t
	r.mu.Unlock()
	return nil
}

// Instance implements render.HTMLRender.
func (r *htmlRenderer) Instance(name string, data any) render.Render {
	r.mu.RLock()
	t := r.tmpl
	r.mu.RUnlock()
	return render.HTML{Template: t, Name: name, Data: data}
}

// watch reparses the templates after they change, until ctx is done.
// Bursts of events are debounced. A broken edit keeps the previous set.
func (r *htmlRenderer) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(r.dir); err != nil {
		w.Close()
		return err
	}
	slog.Info("watching templates", "dir", r.dir)

	go func() {
		defer w.Close()
		var pending time.Time
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if strings.HasSuffix(ev.Name, ".html") && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					pending = time.Now()
				}
			case <-ticker.C:
				if pending.IsZero() || time.Since(pending) < 300*time.Millisecond {
					continue
				}
				pending = time.Time{}
				if err := r.load(); err != nil {
					slog.Warn("template reload failed", "err", err)
				} else {
					slog.Info("templates reloaded")
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("template watch error", "err", err)
			}
		}
	}()
	return nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"split":            portfolio.SplitList,
		"stars":            models.Stars,
		"proficiencyLabel": models.ProficiencyLabel,
		"mediaURL":         mediaURL,
		"thumbURL":         thumbURL,
		"year":             func() int { return time.Now().Year() },
	}
}

func mediaURL(image string) string {
	if image == "" {
		return ""
	}
	return "/media/" + strings.TrimPrefix(filepath.ToSlash(image), "/")
}

// thumbURL prefers the generated thumbnail and falls back to the original image.
func thumbURL(image string) string {
	if image == "" {
		return ""
	}
	if media.Exists(cfg.MediaDir, image) {
		return "/media/" + media.ThumbPath(image)
	}
	return mediaURL(image)
}
