// Command seed populates the database with a demo social mesh.
package main

import (
	"flag"
	"log"

	"weave/internal/config"
	"weave/internal/database"
	"weave/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	numCommunities := flag.Int("communities", 8, "Number of communities to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	maxDays := flag.Int("max-days", 90, "Backdating window for generated content")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, %d communities, clean=%v\n",
		*numUsers, *numPosts, *numCommunities, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:       *numUsers,
		NumPosts:       *numPosts,
		NumCommunities: *numCommunities,
		ShouldClean:    *shouldClean,
		MaxDays:        *maxDays,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
