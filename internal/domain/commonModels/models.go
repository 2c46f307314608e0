package commonModels

import "time"

// Document is a logical source unit. Its Id is derived from the full decoded
// text (md5 hex), so re-ingesting byte-identical content lands on the same
// document and overwrites its chunks instead of appending.
type Document struct {
	Id         string    `json:"document_id"`
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	IngestedAt time.Time `json:"ingested_at"`
}

// DocChunk is the unit of embedding and retrieval. ChunkId is positional:
// {document_id}_chunk_{index}.
type DocChunk struct {
	Doc     Document
	ChunkId string `json:"chunk_id"`
	Index   int    `json:"chunk_index"`
	Content string `json:"content"`
}

// SearchMatch is one ranked hit from the vector store. Score is cosine
// similarity, higher is more relevant.
type SearchMatch struct {
	DocumentId string  `json:"document_id"`
	ChunkId    string  `json:"chunk_id"`
	Content    string  `json:"content"`
	Title      string  `json:"title"`
	Source     string  `json:"source"`
	DocType    string  `json:"type"`
	Score      float32 `json:"score"`
}

// IngestResult reports a completed ingestion run. ChunksProcessed counts only
// chunks that were embedded and persisted - skipped chunks are excluded.
type IngestResult struct {
	DocumentId      string `json:"document_id"`
	ChunksProcessed int    `json:"chunks_processed"`
	ChunksSkipped   int    `json:"chunks_skipped"`
}

// ChatResult is the grounded answer plus the matches it was grounded on.
type ChatResult struct {
	Answer    string        `json:"answer"`
	SessionId string        `json:"session_id"`
	Sources   []SearchMatch `json:"sources"`
	FromCache bool          `json:"-"`
}

// RegistryRecord is what the document registry keeps per ingested document.
type RegistryRecord struct {
	Document Document `json:"document"`
	Chunks   int      `json:"chunks"`
}

