package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"retailrag/chunker"
	"retailrag/loader/service"
	"retailrag/model"
	"retailrag/retry"
	"retailrag/store"

	"github.com/joho/godotenv"
)

const defaultDatasetFile = "retail_toy_dataset.csv"

func init() {
	mustLoadEnvVariables()
}

func main() {
	log.Println("Starting load-embeddings job...")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	pool, err := store.NewPostgresStore(ctx, store.Config{
		Host:        os.Getenv("PG_HOST"),
		Port:        port,
		User:        os.Getenv("PG_USER"),
		Database:    os.Getenv("PG_DB_NAME"),
		SSLMode:     os.Getenv("PG_SSL_MODE"),
		Credentials: store.StaticCredentials(os.Getenv("PG_PASS")),
	})
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}
	defer pool.Close()

	embedder := model.NewHTTPEmbedder(os.Getenv("EMBEDDING_URL"), os.Getenv("EMBEDDING_MODEL"))
	generator := model.NewGenerator(embedder, model.DefaultBatchSize, retry.DefaultPolicy())

	datasetPath := os.Getenv("DATASET_FILE")
	if datasetPath == "" {
		datasetPath = defaultDatasetFile
	}

	svc := service.New(pool, chunker.NewSplitter(chunker.DefaultMaxLen), generator)
	if err := svc.Run(ctx, datasetPath); err != nil {
		log.Fatal("ingestion failed: ", err)
	}
	log.Println("Done")
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}
}
