package app

import (
	"context"
	"fmt"
	"time"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/careerbridge-backend/internal/data/db"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/platform/neo4jdb"
	"github.com/yungbote/careerbridge-backend/internal/platform/openai"
	"github.com/yungbote/careerbridge-backend/internal/platform/sendgrid"
	"github.com/yungbote/careerbridge-backend/internal/realtime/bus"
	"github.com/yungbote/careerbridge-backend/internal/temporalx"
)

// Clients holds external connections. Everything except Postgres is optional
// and left nil when its environment is not configured.
type Clients struct {
	Postgres *db.PostgresService
	Neo4j    *neo4jdb.Client
	OpenAI   openai.Client
	Planner  openai.Client
	SendGrid sendgrid.Client
	SSEBus   bus.Bus
	Temporal temporalsdkclient.Client
}

type clientOptions struct {
	temporal bool
}

func wireClients(log *logger.Logger, opts clientOptions) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	pg, err := db.NewPostgresService(log)
	if err != nil {
		return c, fmt.Errorf("init postgres: %w", err)
	}
	c.Postgres = pg

	if c.Neo4j, err = neo4jdb.NewFromEnv(log); err != nil {
		// graph mirror is best-effort
		log.Warn("Neo4j unavailable; graph mirror disabled", "error", err)
		c.Neo4j = nil
	}

	if ai, err := openai.NewClient(log); err != nil {
		log.Warn("OpenAI client disabled; advisor replies and plan generation unavailable", "error", err)
	} else {
		c.OpenAI = ai
		// plan generation owns its retry budget
		if c.Planner, err = openai.NewClient(log, openai.WithMaxRetries(0)); err != nil {
			c.Planner = nil
		}
	}

	if c.SendGrid, err = sendgrid.NewFromEnv(log); err != nil {
		c.Close()
		return Clients{}, fmt.Errorf("init sendgrid: %w", err)
	}
	if c.SendGrid == nil {
		log.Warn("SENDGRID_API_KEY not set; email deliveries will be logged as failed")
	}

	if c.SSEBus, err = bus.NewRedisBusFromEnv(log); err != nil {
		c.Close()
		return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
	}

	if opts.temporal {
		if c.Temporal, err = temporalx.NewClient(log, temporalx.LoadConfig()); err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init temporal: %w", err)
		}
	}
	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
		c.Temporal = nil
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
		c.SSEBus = nil
	}
	if c.Neo4j != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = c.Neo4j.Close(ctx)
		cancel()
		c.Neo4j = nil
	}
	if c.Postgres != nil {
		_ = c.Postgres.Close()
		c.Postgres = nil
	}
}
