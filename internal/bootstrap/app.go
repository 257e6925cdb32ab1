package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/GoSim-25-26J-441/diagram-studio/config"
	httpapi "github.com/GoSim-25-26J-441/diagram-studio/internal/api/http"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/editor"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/export"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/history"
	studiohttp "github.com/GoSim-25-26J-441/diagram-studio/internal/studio/http"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/service"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/versions"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceName = "diagram-studio"

// App is the fully wired service.
type App struct {
	Router   *gin.Engine
	Session  *service.Session
	Renderer *service.RenderOrchestrator

	store     *Store
	versionDB *pgxpool.Pool
	autosaver *versions.Autosaver
	editor    *editor.FileEditor
}

// NewApp opens every configured backend and builds the router.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	store, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	app.store = store

	checks := map[string]httpapi.Pinger{}
	if store.Pinger != nil {
		checks["store"] = store.Pinger
	}

	eng, probe, err := BuildEngine(cfg.Render)
	if err != nil {
		return nil, err
	}
	if probe != nil {
		checks["render_engine"] = probe
	}

	metrics := service.NewMetrics()
	app.Renderer = service.NewRenderOrchestrator(eng,
		service.WithRateLimit(cfg.Render.Rate, cfg.Render.Burst),
		service.WithRenderTimeout(cfg.Render.Timeout),
		service.WithMetrics(metrics),
	)

	projects, err := service.NewProjectStore(ctx, store.Persistence)
	if err != nil {
		return nil, fmt.Errorf("project store: %w", err)
	}

	opts := []service.SessionOption{
		service.WithLiveMode(cfg.Session.LiveMode),
		service.WithRasterizer(export.NewChromeRasterizer(cfg.Export.ChromeDebugURL, cfg.Render.Timeout)),
		service.WithSessionMetrics(metrics),
	}
	if cfg.Session.WatchFile != "" {
		fe, err := editor.NewFileEditor(cfg.Session.WatchFile, app.editFromFile)
		if err != nil {
			return nil, err
		}
		app.editor = fe
		opts = append(opts, service.WithEditor(fe))
	}
	app.Session = service.NewSession(projects, history.NewStack(history.DefaultCapacity), app.Renderer, opts...)

	if app.editor != nil {
		active, _ := app.Session.ActiveDocument()
		if err := app.editor.SetValue(active.SourceText); err != nil {
			return nil, err
		}
		if err := app.editor.Start(ctx); err != nil {
			return nil, err
		}
		log.Printf("editor: watching %s", app.editor.Path())
	}

	archiver, err := BuildArchiver(ctx, cfg.Export)
	if err != nil {
		return nil, fmt.Errorf("export archive: %w", err)
	}

	deps := RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Store:       store.Backend,
		Checks:      checks,
		Session:     app.Session,
		Archiver:    archiver,
	}

	if cfg.Versions.DSN != "" {
		pool, err := OpenDB(ctx, DBOptions{DSN: cfg.Versions.DSN})
		if err != nil {
			return nil, fmt.Errorf("versions db: %w", err)
		}
		app.versionDB = pool
		checks["versions"] = pool

		repo := versions.NewRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		deps.Versions = repo

		if cfg.Versions.AutosaveSchedule != "" {
			app.autosaver = versions.NewAutosaver(app.Session, repo)
			if err := app.autosaver.Start(cfg.Versions.AutosaveSchedule); err != nil {
				return nil, err
			}
		}
	}

	app.Router = BuildRouter(deps)
	ok = true
	return app, nil
}

func (a *App) editFromFile(text string) {
	if a.Session == nil {
		return
	}
	if err := a.Session.Edit(context.Background(), text); err != nil {
		log.Printf("[error] operation=editor.change error=%v", err)
	}
}

// Close stops background work and releases backends.
func (a *App) Close() error {
	if a.autosaver != nil {
		a.autosaver.Stop()
	}
	var errs []error
	if a.editor != nil {
		errs = append(errs, a.editor.Close())
	}
	if a.Renderer != nil {
		a.Renderer.Close()
	}
	if a.versionDB != nil {
		a.versionDB.Close()
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

var _ studiohttp.VersionStore = (*versions.Repo)(nil)
