package handlers

import (
	"time"

	"media-fetcher/internal/database"
	"media-fetcher/internal/formats"
	"media-fetcher/internal/pipeline"
	"media-fetcher/internal/startup"
	"media-fetcher/internal/workspace"
)

type Handlers struct {
	db       *database.Database
	catalog  *formats.Catalog
	pipeline *pipeline.Pipeline
	ws       *workspace.Workspace
	config   *startup.Config
	started  time.Time
}

func New(db *database.Database, catalog *formats.Catalog, p *pipeline.Pipeline, ws *workspace.Workspace, config *startup.Config) *Handlers {
	return &Handlers{
		db:       db,
		catalog:  catalog,
		pipeline: p,
		ws:       ws,
		config:   config,
		started:  time.Now(),
	}
}
