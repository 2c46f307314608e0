// Package mcp exposes the retrieval pipeline to MCP clients as tools.
package mcp

// SearchInput defines the input parameters for the search_chunks tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"required,description=The semantic search query"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Maximum number of chunks to return"`
}

type SearchOutput struct {
	Results []SearchHit `json:"results"`
	Message string      `json:"message,omitempty"`
}

// SearchHit is a single ranked chunk match.
type SearchHit struct {
	DocumentId string  `json:"document_id"`
	ChunkId    string  `json:"chunk_id"`
	Content    string  `json:"content"`
	Title      string  `json:"title,omitempty"`
	Score      float32 `json:"score"`
}

// AskInput defines the input parameters for the ask tool.
type AskInput struct {
	Query     string `json:"query" jsonschema:"required,description=The question to answer from the indexed documents"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=How many chunks ground the answer"`
	SessionId string `json:"session_id,omitempty" jsonschema:"description=Session id to keep conversation context across questions"`
}

type AskOutput struct {
	Answer    string      `json:"answer"`
	SessionId string      `json:"session_id"`
	Sources   []SearchHit `json:"sources"`
}

// GetDocumentInput defines the input parameters for the get_document tool.
type GetDocumentInput struct {
	DocumentId string `json:"document_id" jsonschema:"required,description=The id returned by ingestion"`
}

type GetDocumentOutput struct {
	DocumentId string `json:"document_id"`
	Source     string `json:"source,omitempty"`
	Title      string `json:"title,omitempty"`
	Type       string `json:"type,omitempty"`
	Chunks     int    `json:"chunks"`
	Found      bool   `json:"found"`
}
