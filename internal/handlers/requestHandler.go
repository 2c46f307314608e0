package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/farazfarid/rag-chatbot-confluence/internal/adapter"
	"github.com/farazfarid/rag-chatbot-confluence/internal/adapter/utils"
	"github.com/farazfarid/rag-chatbot-confluence/internal/api"
	"github.com/farazfarid/rag-chatbot-confluence/internal/data/store"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/ingest"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/vectorDB"
	"github.com/farazfarid/rag-chatbot-confluence/pkg/logger_i"
)

var (
	handlerInstance *requestHandler //private singleton
	once            sync.Once
	logRH           *logger_i.Logger
)

type requestHandler struct {
	service  rag.Service
	registry store.DocumentRegistry
	vectorDB vectorDB.DataProcessor
}

func Init(service rag.Service, registry store.DocumentRegistry, dataProcessor vectorDB.DataProcessor) {
	once.Do(func() {
		handlerInstance = &requestHandler{
			service:  service,
			registry: registry,
			vectorDB: dataProcessor,
		}
		logRH = logger_i.NewLogger("RequestHandler")
		logRH.Info("Starting request handler")
	})
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// ChatHandler godoc
// @Summary      Ask a question
// @Description  Embeds the query, retrieves the most similar chunks, and returns a grounded answer with its sources. Pass session_id to keep conversation context across questions.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest   true  "Question, optional top_k and session_id"
// @Success      200      {object}  api.ChatResponse  "Answer with ranked sources"
// @Failure      400      {object}  api.ErrorResponse "Malformed request body"
// @Failure      500      {object}  api.ErrorResponse "Answer generation failed"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.ChatRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Chat handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
			logRH.Warn("Bad Chat Request: ", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
			return
		}

		result, err := handlerInstance.service.Answer(request.Context(), requestData.Query, requestData.TopK, requestData.SessionId)
		if err != nil {
			logRH.Error("Chat request failed", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "Could not generate an answer")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(result))
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// PostIngestHandler godoc
// @Summary      Ingest a document
// @Description  Fetches the document from a URL or object storage key, chunks it, embeds each chunk, and indexes them. Runs synchronously and reports how many chunks were persisted.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.IngestRequest   true  "Document source and optional metadata"
// @Success      200      {object}  api.IngestResponse  "Document indexed"
// @Failure      400      {object}  api.ErrorResponse   "No document source provided"
// @Failure      500      {object}  api.ErrorResponse   "Fetch, extraction or indexing failure"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		var requestData api.IngestRequest
		defer func(Body io.ReadCloser) {
			if err := Body.Close(); err != nil {
				logRH.Error("Couldn't close the Ingest handler reader :", err)
			}
		}(r.Body)
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
			logRH.Warn("Bad Ingest Request: ", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
			return
		}

		ref := ingest.DocumentRef{
			URL:    requestData.DocumentURL,
			S3Key:  requestData.S3Key,
			Source: requestData.Source,
			Title:  requestData.Title,
			Type:   requestData.Type,
		}

		result, err := handlerInstance.service.IngestDocument(r.Context(), ref)
		if err != nil {
			if errors.Is(err, ingest.ErrNoSource) {
				WriteErrorResponse(w, http.StatusBadRequest, "No document source provided")
				return
			}
			logRH.Error("Ingest request failed", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "Document processing failed")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToIngestResponse(result))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// GetDocumentHandler godoc
// @Summary      Look up an ingested document
// @Description  Returns the registry record of a previously ingested document.
// @Tags         Ingestion
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse  "Document metadata and chunk count"
// @Failure      404  {object}  api.ErrorResponse     "Unknown document"
// @Router       /documents/{id} [get]
func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		documentId := utils.GetChiURLParam(r, "id")
		if documentId == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "Document id is required")
			return
		}

		record, found := handlerInstance.registry.GetDocument(r.Context(), documentId)
		if !found {
			WriteErrorResponse(w, http.StatusNotFound, "Document not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(record))
	}
}

// DeleteDocumentHandler godoc
// @Summary      Delete an ingested document
// @Description  Removes the document's indexed chunks from the vector store and drops its registry record.
// @Tags         Ingestion
// @Produce      json
// @Param        id   path  string  true  "Document ID"
// @Success      204  "Document removed"
// @Failure      404  {object}  api.ErrorResponse  "Unknown document"
// @Failure      500  {object}  api.ErrorResponse  "Index cleanup failed"
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		documentId := utils.GetChiURLParam(r, "id")
		if documentId == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "Document id is required")
			return
		}

		found, err := handlerInstance.service.DeleteDocument(r.Context(), documentId)
		if err != nil {
			logRH.Error("Delete request failed", "documentId", documentId, "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "Could not delete document")
			return
		}
		if !found {
			WriteErrorResponse(w, http.StatusNotFound, "Document not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HealthHandler godoc
// @Summary      Health check
// @Description  Reports whether the service and its vector store are reachable.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Failure      503  {object}  api.HealthResponse
// @Router       /healthz [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	response := api.HealthResponse{Status: "ok", VectorDB: "ok"}
	code := http.StatusOK

	if err := handlerInstance.vectorDB.Health(r.Context()); err != nil {
		logRH.Warn("vector store unhealthy", "error", err)
		response.Status = "degraded"
		response.VectorDB = "unreachable"
		code = http.StatusServiceUnavailable
	}
	writeJsonResponse(w, code, response)
}
