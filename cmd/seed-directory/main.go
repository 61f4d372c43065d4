// Package main seeds a Supabase project with demo directory data. It
// upserts businesses and gallery rows with the service role key, bypassing
// row level security, so a fresh project has something to browse.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/localconnect/directory/infra/supabase"
	"github.com/localconnect/directory/internal/store"
)

type seedFile struct {
	Businesses []seedBusiness `json:"businesses"`
}

type seedBusiness struct {
	OwnerID     string   `json:"user_id"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	ImagePaths  []string `json:"image_paths,omitempty"`
}

func main() {
	var (
		envFile  = flag.String("env", ".env", "Path to .env with Supabase credentials")
		dataFile = flag.String("data", "seed.json", "Path to seed data file")
	)
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("no env file loaded (%s): %v", *envFile, err)
	}

	serviceKey := os.Getenv("SUPABASE_SERVICE_KEY")
	if serviceKey == "" {
		log.Fatalf("SUPABASE_SERVICE_KEY is required for seeding")
	}

	client, err := supabase.New(supabase.Config{
		ProjectURL: os.Getenv("SUPABASE_URL"),
		AnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		ServiceKey: serviceKey,
	})
	if err != nil {
		log.Fatalf("create client: %v", err)
	}

	raw, err := os.ReadFile(filepath.Clean(*dataFile))
	if err != nil {
		log.Fatalf("read seed data: %v", err)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("parse seed data: %v", err)
	}

	ctx := context.Background()
	db := client.Database()

	for _, sb := range seed.Businesses {
		var rows []store.Business
		err := db.From(store.TableBusinesses).
			Upsert(map[string]interface{}{
				"user_id":     sb.OwnerID,
				"name":        sb.Name,
				"category":    sb.Category,
				"description": sb.Description,
				"address":     sb.Address,
				"phone":       sb.Phone,
			}, "user_id").
			WithServiceKey().
			ExecuteInto(ctx, &rows)
		if err != nil {
			log.Fatalf("seed business %q: %v", sb.Name, err)
		}
		if len(rows) == 0 {
			log.Fatalf("seed business %q: no row returned", sb.Name)
		}
		log.Printf("seeded business %q as %s", sb.Name, rows[0].ID)

		for _, path := range sb.ImagePaths {
			var imgs []store.BusinessImage
			err := db.From(store.TableBusinessImages).
				Insert(map[string]interface{}{
					"business_id": rows[0].ID,
					"image_url":   path,
				}).
				WithServiceKey().
				ExecuteInto(ctx, &imgs)
			if err != nil {
				log.Fatalf("seed image %q: %v", path, err)
			}
			if len(imgs) == 0 {
				log.Fatalf("seed image %q: no row returned", path)
			}
			log.Printf("  image row %s -> %s", imgs[0].ID, path)
		}
	}
	log.Printf("seeded %d businesses", len(seed.Businesses))
}
