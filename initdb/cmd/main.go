// One-shot database bootstrap: grants the application user access and
// installs the pgvector extension. Runs with administrator credentials,
// before the first ingestion.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	log.Println("Running init-db job...")

	ctx := context.Background()
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	dbName := os.Getenv("PG_DB_NAME")
	appUser := os.Getenv("APP_USER")

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=require",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_ADMIN_USER"), os.Getenv("PG_ADMIN_PASS"), dbName)
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}
	defer conn.Close(ctx)

	log.Println("Granting privileges and creating extension...")
	_, err = conn.Exec(ctx, fmt.Sprintf(`
		GRANT ALL PRIVILEGES ON DATABASE %s TO %s;
		GRANT ALL ON SCHEMA public TO %s;
		CREATE EXTENSION IF NOT EXISTS vector;
	`, pgx.Identifier{dbName}.Sanitize(), pgx.Identifier{appUser}.Sanitize(), pgx.Identifier{appUser}.Sanitize()))
	if err != nil {
		log.Fatal("init-db failed: ", err)
	}
	log.Println("Done")
}
