package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/treloar/keepsake/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a demo patient profile",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	dbPath := os.Getenv("KEEPSAKE_DB")
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	existing, err := db.ListProfiles()
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	for _, p := range existing {
		if p.Name == "Eleanor Roosevelt" {
			fmt.Printf("demo profile already present (id %d)\n", p.ID)
			return nil
		}
	}

	p, err := db.CreateProfile("Eleanor Roosevelt", "ER")
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	fmt.Printf("seeded demo profile %q (id %d)\n", p.Name, p.ID)
	return nil
}
