package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/quadline/backend/internal/models"
)

// Hydrator rebuilds the cached summary document from the record store.
// It runs once at boot and again after every write to players or matches.
type Hydrator struct {
	db    *sqlx.DB
	cache Cache
	knobs Knobs
}

func NewHydrator(db *sqlx.DB, cache Cache, knobs Knobs) *Hydrator {
	return &Hydrator{db: db, cache: cache, knobs: knobs}
}

// Hydrate reads the full record store, tabulates the leaderboard, and
// replaces the cached document.
func (h *Hydrator) Hydrate(ctx context.Context) error {
	var players []models.Player
	if err := h.db.SelectContext(ctx, &players,
		`SELECT uuid, name, created_at FROM players`); err != nil {
		return fmt.Errorf("load players: %w", err)
	}

	var matches []models.MatchWithNames
	if err := h.db.SelectContext(ctx, &matches,
		`SELECT m.uuid, m.created_at, w.name AS winner_name, l.name AS loser_name
		 FROM matches m
		 JOIN players w ON w.uuid = m.winner_id
		 JOIN players l ON l.uuid = m.loser_id
		 ORDER BY m.created_at ASC`); err != nil {
		return fmt.Errorf("load matches: %w", err)
	}

	doc := h.knobs.Tabulate(players, matches)
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serialize summary: %w", err)
	}
	if err := h.cache.Set(ctx, string(payload)); err != nil {
		return fmt.Errorf("store summary: %w", err)
	}

	log.Printf("[SUMMARY] Hydrated cache: %d players, %d matches", len(players), len(matches))
	return nil
}
