package api

// IngestRequest accepts exactly one document source: a URL or an object
// storage key. The optional fields become chunk metadata.
type IngestRequest struct {
	DocumentURL string `json:"document_url,omitempty"`
	S3Key       string `json:"s3_key,omitempty"`
	Source      string `json:"source,omitempty"`
	Title       string `json:"title,omitempty"`
	Type        string `json:"type,omitempty"`
}

type IngestResponse struct {
	DocumentId      string `json:"document_id" example:"9e107d9d372bb6826bd81d3542a419d6"`
	ChunksProcessed int    `json:"chunks_processed" example:"3"`
	Message         string `json:"message" example:"Document processed successfully"`
}

type ChatRequest struct {
	Query     string `json:"query" validate:"required"`
	TopK      int    `json:"top_k,omitempty"`
	SessionId string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Answer    string       `json:"answer"`
	SessionId string       `json:"session_id,omitempty"`
	Sources   []ChatSource `json:"sources"`
}

type ChatSource struct {
	DocumentId string  `json:"document_id"`
	ChunkId    string  `json:"chunk_id"`
	Title      string  `json:"title,omitempty"`
	Score      float32 `json:"score"`
}

type DocumentResponse struct {
	DocumentId string `json:"document_id"`
	Source     string `json:"source"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Chunks     int    `json:"chunks"`
	IngestedAt string `json:"ingested_at"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"No document source provided"`
}

type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	VectorDB string `json:"vector_db" example:"ok"`
}
