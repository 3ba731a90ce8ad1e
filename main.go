package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"portfolio/models"
	"portfolio/pkg/mailer"
	"portfolio/pkg/media"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "portfolio",
		Short:        "Portfolio website",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = loadConfig()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.DBAutoMigrate = true
			if err := initDB(); err != nil {
				return err
			}
			fmt.Println("migration completed")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Load the bundled portfolio data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return err
			}
			stats, err := seed(db)
			if err != nil {
				return err
			}
			fmt.Printf("seed completed: %d created, %d already present\n", stats.Created, stats.Skipped)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create-admin <username> <password>",
		Short: "Create an admin account or reset its password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return err
			}
			u, err := createAdmin(db, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("admin %s ready (id %d)\n", u.Username, u.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "thumbnails",
		Short: "Generate thumbnails for every project image",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return err
			}
			return generateThumbnails()
		},
	})

	return cmd
}

func generateThumbnails() error {
	var projects []models.Project
	if err := db.Where("image <> ?", "").Find(&projects).Error; err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	var failed int
	for _, p := range projects {
		rel, err := media.Thumbnail(cfg.MediaDir, p.Image, media.ThumbWidth)
		if err != nil {
			failed++
			slog.Warn("thumbnail failed", "project", p.ID, "err", err)
			continue
		}
		fmt.Println(rel)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d thumbnails failed", failed, len(projects))
	}
	return nil
}

func newMailer() (mailer.Mailer, error) {
	switch strings.ToLower(cfg.EmailBackend) {
	case "smtp":
		return mailer.SMTP{Host: cfg.SMTPHost, Port: cfg.SMTPPort, Username: cfg.SMTPUser, Password: cfg.SMTPPass}, nil
	case "console", "":
		return mailer.Console{Logger: slog.Default()}, nil
	default:
		return nil, fmt.Errorf("unsupported EMAIL_BACKEND %q", cfg.EmailBackend)
	}
}

// withCORS opens the JSON API to the configured origins.
func withCORS(h http.Handler) http.Handler {
	if len(cfg.AllowedOrigins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(h)
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if err := initDB(); err != nil {
		return err
	}
	m, err := newMailer()
	if err != nil {
		return err
	}
	mail = m

	if pages, err = newHTMLRenderer(cfg.TemplatesDir); err != nil {
		return err
	}
	if cfg.TemplateReload {
		if err := pages.watch(ctx); err != nil {
			slog.Warn("template reload disabled", "err", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           withCORS(newRouter()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr, "db", cfg.DBDriver, "email", cfg.EmailBackend)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
