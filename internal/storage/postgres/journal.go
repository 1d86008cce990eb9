// Package postgres journals committed trajectories so a restarted planner can rebuild
// its reservation table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pdatta1/PathRouting/internal/algo"
	"github.com/pdatta1/PathRouting/internal/core"
)

// Open connects to Postgres through the pgx stdlib driver and verifies the connection.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("verify journal connection: %w", err)
	}

	return db, nil
}

// Journal stores plans and their per-tick trajectories.
type Journal struct {
	db *sql.DB
}

// NewJournal wraps an open database.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

const schema = `
	CREATE TABLE IF NOT EXISTS route_plans (
		plan_id     UUID PRIMARY KEY,
		map_id      UUID NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		agents      INTEGER NOT NULL,
		failures    INTEGER NOT NULL,
		duration_us BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_route_plans_map_id ON route_plans(map_id);

	CREATE TABLE IF NOT EXISTS trajectories (
		plan_id UUID NOT NULL REFERENCES route_plans(plan_id) ON DELETE CASCADE,
		agent   TEXT NOT NULL,
		tick    INTEGER NOT NULL,
		x       INTEGER NOT NULL,
		y       INTEGER NOT NULL,
		z       INTEGER NOT NULL,
		node_id UUID NOT NULL,
		PRIMARY KEY (plan_id, agent, tick)
	);
`

// CreateSchema creates the journal tables if they do not exist.
func (j *Journal) CreateSchema(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create journal schema: %w", err)
	}
	return nil
}

type trajectoryRow struct {
	agent string
	tick  int
	c     core.Coords
	node  core.NodeID
}

// trajectoryRows flattens the committed paths of res in planning order.
func trajectoryRows(res *algo.PlanResult) []trajectoryRow {
	var rows []trajectoryRow
	for _, agent := range res.Order {
		p, ok := res.Paths[agent]
		if !ok {
			continue
		}
		for i, n := range p.Nodes {
			rows = append(rows, trajectoryRow{
				agent: agent,
				tick:  p.StartTick + i,
				c:     n.Coords,
				node:  n.ID,
			})
		}
	}
	return rows
}

// SavePlan stores res for mapID in one transaction and returns the new plan ID.
func (j *Journal) SavePlan(ctx context.Context, mapID uuid.UUID, res *algo.PlanResult) (uuid.UUID, error) {
	planID := uuid.New()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save plan: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO route_plans (plan_id, map_id, created_at, agents, failures, duration_us)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		planID, mapID, time.Now().UTC(), len(res.Order), len(res.Failures), res.Duration.Microseconds())
	if err != nil {
		return uuid.Nil, fmt.Errorf("save plan: insert plan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trajectories (plan_id, agent, tick, x, y, z, node_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save plan: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range trajectoryRows(res) {
		if _, err := stmt.ExecContext(ctx, planID, r.agent, r.tick, r.c.X, r.c.Y, r.c.Z, r.node.String()); err != nil {
			return uuid.Nil, fmt.Errorf("save plan: insert %s@%d: %w", r.agent, r.tick, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("save plan: commit: %w", err)
	}
	return planID, nil
}

// LoadReservations rebuilds a reservation table from every trajectory journaled for
// mapID.
func (j *Journal) LoadReservations(ctx context.Context, mapID uuid.UUID) (*algo.ReservationTable, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT t.tick, t.x, t.y, t.z
		 FROM trajectories t JOIN route_plans p ON p.plan_id = t.plan_id
		 WHERE p.map_id = $1`, mapID)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	defer rows.Close()

	table := algo.NewReservationTable()
	for rows.Next() {
		var tick, x, y, z int
		if err := rows.Scan(&tick, &x, &y, &z); err != nil {
			return nil, fmt.Errorf("load reservations: scan: %w", err)
		}
		table.Reserve(tick, x, y, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	return table, nil
}

// Trajectories returns the journaled cells of one plan, per agent in tick order.
func (j *Journal) Trajectories(ctx context.Context, planID uuid.UUID) (map[string][]core.Cell, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT agent, tick, x, y, z FROM trajectories WHERE plan_id = $1 ORDER BY agent, tick`, planID)
	if err != nil {
		return nil, fmt.Errorf("load trajectories: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]core.Cell)
	for rows.Next() {
		var agent string
		var c core.Cell
		if err := rows.Scan(&agent, &c.Tick, &c.X, &c.Y, &c.Z); err != nil {
			return nil, fmt.Errorf("load trajectories: scan: %w", err)
		}
		out[agent] = append(out[agent], c)
	}
	return out, rows.Err()
}
