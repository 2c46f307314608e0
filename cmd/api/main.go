// @title           Confluence RAG Chatbot API
// @version         1.0
// @description     This API ingests documents into a vector index and answers questions grounded on the retrieved chunks
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/internal/data/store"
	"github.com/farazfarid/rag-chatbot-confluence/internal/handlers"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/chunker"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/embedding"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/embedding/googleEmbedding"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/embedding/openaiEmbedding"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/ingest"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/llm/gemini"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/vectorDB/qdrantDB"
	"github.com/farazfarid/rag-chatbot-confluence/internal/server"
	"github.com/farazfarid/rag-chatbot-confluence/pkg/logger_i"
)

var listenAddr string

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//stores - fall back to in-process maps when redis is offline
	var registry store.DocumentRegistry
	var sessions store.SessionStore

	redisRegistry, err := store.NewRedisDocumentRegistry(serviceContext)
	if err != nil {
		logger.Error("Redis registry is offline, using in-memory fallback", "error", err)
		registry = store.InitInMemoryDocumentRegistry()
	} else {
		registry = redisRegistry
	}

	redisSessions, err := store.NewRedisSessionStore(serviceContext)
	if err != nil {
		logger.Error("Redis session store is offline, using in-memory fallback", "error", err)
		sessions = store.InitInMemorySessionStore()
	} else {
		sessions = redisSessions
	}

	//external providers - without these the service cannot run
	vectorDB, err := qdrantDB.NewQdrantClient(serviceContext, config.DocumentIndexName)
	if err != nil {
		logger.Error("Could not connect to the vector store. Shutting down.", "error", err)
		return
	}

	embedder, err := newEmbedder(serviceContext)
	if err != nil {
		logger.Error("Could not initialize the embedding provider. Shutting down.", "error", err)
		return
	}

	llmProvider, err := gemini.NewGeminiClient(serviceContext, config.GeminiModelName, config.GoogleAPIKey())
	if err != nil {
		logger.Error("Could not initialize the model provider. Shutting down.", "error", err)
		return
	}

	splitter, err := chunker.NewSplitter(config.DefaultChunkSize, config.DefaultOverlap)
	if err != nil {
		logger.Error("Invalid chunking configuration. Shutting down.", "error", err)
		return
	}

	pipeline := ingest.NewPipeline(ingest.NewFetcher(), splitter, embedder, vectorDB)
	ragService := rag.NewService(pipeline, embedder, vectorDB, llmProvider, registry, sessions)

	handlers.Init(ragService, registry, vectorDB)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func newEmbedder(ctx context.Context) (embedding.Embedder, error) {
	if config.GetEnv("EMBEDDING_PROVIDER", config.EmbeddingProvider) == "openai" {
		return openaiEmbedding.NewOpenAIEmbedder(config.OpenAIEmbeddingModel)
	}
	return googleEmbedding.NewGoogleEmbedder(ctx, config.GoogleEmbeddingModel, config.GoogleAPIKey())
}
