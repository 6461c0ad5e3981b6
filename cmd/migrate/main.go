package main

import (
	"context"
	"log"

	"github.com/igorgomez/ponto-seguro-1/internal/config"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/database"
	"github.com/igorgomez/ponto-seguro-1/internal/repository/mongodb"
	"github.com/igorgomez/ponto-seguro-1/internal/repository/postgresql"
)

// Applies the schema (PostgreSQL) or indexes (MongoDB) without starting the API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: 1})
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer db.Close()

		if err := postgresql.NewGateway(db).Migrate(ctx); err != nil {
			log.Fatalf("Error executing migration: %v", err)
		}
	case config.BackendMongo:
		db, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database, database.PoolOptions{MaxConns: 1})
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer db.Close(ctx)

		if err := mongodb.NewGateway(db).EnsureIndexes(ctx); err != nil {
			log.Fatalf("Error creating indexes: %v", err)
		}
	default:
		log.Printf("Nothing to migrate for %s storage", cfg.Storage.Backend)
		return
	}

	log.Println("Migration completed successfully")
}
