package server

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"retailrag/app/agent"
	"retailrag/app/api"
	"retailrag/model"
	"retailrag/retry"
	"retailrag/search"
	"retailrag/store"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
	app        *fiber.App
}

func NewServer(addr string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

// Stop drains in-flight requests before reporting the server stopped.
func (s *Server) Stop() {
	if s.app != nil {
		if err := s.app.ShutdownWithTimeout(10 * time.Second); err != nil {
			s.logger.Error("error during shutdown", "error", err.Error())
		}
	}
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()

	pool, err := store.NewPostgresStore(ctx, storeConfigFromEnv())
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}

	embedder := model.NewHTTPEmbedder(os.Getenv("EMBEDDING_URL"), os.Getenv("EMBEDDING_MODEL"))
	generator := model.NewGenerator(embedder, model.DefaultBatchSize, retry.DefaultPolicy())
	llm := model.NewHTTPGenerator(os.Getenv("LLM_URL"), os.Getenv("LLM_MODEL"))

	var (
		app            = fiber.New(config)
		checkHandler   = api.NewCheckHandler()
		requestHandler = api.NewRequestHandler(
			search.NewRetriever(pool, generator),
			agent.NewSynthesizer(llm),
			search.DefaultOptions(),
		)
		check = app.Group("/check")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	app.Get("/search", requestHandler.HandleSearch)
	app.Get("/chatbot", requestHandler.HandleChatbot)

	s.app = app
	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}

func storeConfigFromEnv() store.Config {
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	return store.Config{
		Host:        os.Getenv("PG_HOST"),
		Port:        port,
		User:        os.Getenv("PG_USER"),
		Database:    os.Getenv("PG_DB_NAME"),
		SSLMode:     os.Getenv("PG_SSL_MODE"),
		Credentials: store.StaticCredentials(os.Getenv("PG_PASS")),
	}
}
