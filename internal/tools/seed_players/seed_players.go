package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/fantabuilder/fantasta/internal/catalog"
	"github.com/fantabuilder/fantasta/internal/dbconfig"
	"github.com/fantabuilder/fantasta/internal/models"
)

// listEntry matches the JSON layout of an exported player list.
type listEntry struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Team      string `json:"team"`
	Role      string `json:"role"`
	Valuation int    `json:"valuation"`
}

func main() {
	path := flag.String("file", "assets/listone.json", "player list JSON file")
	flag.Parse()

	ctx := context.Background()

	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *path, err)
		os.Exit(1)
	}
	var entries []listEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal player list: %v\n", err)
		os.Exit(1)
	}

	players := make([]models.Player, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		role := models.Role(e.Role)
		if !role.Valid() {
			skipped++
			continue
		}
		players = append(players, models.Player{
			ID:        e.ID,
			Name:      e.Name,
			Team:      e.Team,
			Role:      role,
			Valuation: e.Valuation,
		})
	}

	cfg := dbconfig.NewConfigFromEnv()
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	app := catalog.NewApp(catalog.NewRepository(db))
	if err := app.SeedPlayers(ctx, players); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Players seed: total=%d seeded=%d skipped=%d\n", len(entries), len(players), skipped)
}
