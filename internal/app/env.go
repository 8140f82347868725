package app

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/justyntemme/thumbnav/internal/browser"
	"github.com/justyntemme/thumbnav/internal/config"
	"github.com/justyntemme/thumbnav/internal/debug"
	"github.com/justyntemme/thumbnav/internal/store"
	"github.com/justyntemme/thumbnav/internal/thumbnail"
)

// env is everything one command invocation works with.
type env struct {
	mgr     *config.Manager
	cfg     config.Config
	db      *store.DB
	cache   *thumbnail.Cache
	session *browser.Session
}

// loadConfig reads --config, or the default config file.
func (o *rootOptions) loadConfig() (*config.Manager, error) {
	mgr := config.NewManager()
	if o.configPath != "" {
		mgr = config.NewManagerAt(o.configPath)
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	if perr := mgr.ParseError(); perr != nil {
		logrus.WithError(perr).Warnf("config %s is invalid, using defaults", mgr.Path())
	}
	return mgr, nil
}

func (o *rootOptions) openEnv(cmd *cobra.Command) (*env, error) {
	mgr, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	debug.Log(debug.APP, "config %s, cache %s, store %s", mgr.Path(), cfg.Thumbnails.CacheDir, db.Path())

	cache, err := thumbnail.Open(thumbnail.Options{
		Dir:         cfg.Thumbnails.CacheDir,
		MaxWidth:    cfg.Thumbnails.MaxWidth,
		MaxHeight:   cfg.Thumbnails.MaxHeight,
		VideoOffset: cfg.Thumbnails.VideoOffset,
		Pdftoppm:    cfg.Thumbnails.Pdftoppm,
		Ffmpeg:      cfg.Thumbnails.Ffmpeg,
		JpegQuality: cfg.Thumbnails.JpegQuality,
		Index:       db,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	showHidden := cfg.Browser.ShowHidden
	if v, ok, _ := db.Setting(store.SettingShowHidden); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			showHidden = b
		}
	}
	if cmd.Flags().Changed("hidden") {
		showHidden = o.hidden
	}

	session, err := browser.NewSession(browser.Options{
		Dir:        o.startDir(cfg, db),
		ShowHidden: showHidden,
		Thumbnails: cache,
		Settings:   db,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &env{mgr: mgr, cfg: cfg, db: db, cache: cache, session: session}, nil
}

// startDir picks --dir, then the configured start path, then the last
// visited directory when it still exists. Empty means home.
func (o *rootOptions) startDir(cfg config.Config, db *store.DB) string {
	if o.dir != "" {
		return o.dir
	}
	if cfg.Browser.StartPath != "" {
		return cfg.Browser.StartPath
	}
	if !cfg.Browser.RestoreLastPath {
		return ""
	}
	last, ok, err := db.Setting(store.SettingLastPath)
	if err != nil || !ok {
		return ""
	}
	if info, err := os.Stat(last); err != nil || !info.IsDir() {
		debug.Log(debug.APP, "last path %s is gone, starting at home", last)
		return ""
	}
	debug.Log(debug.APP, "restoring last path %s", last)
	return last
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		logrus.WithError(err).Warn("closing store")
	}
}
