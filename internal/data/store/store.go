package store

import (
	"context"
	"fmt"

	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
)

// DocumentRegistry records what has been ingested, keyed by document id.
type DocumentRegistry interface {
	SaveDocument(ctx context.Context, record commonModels.RegistryRecord) error
	GetDocument(ctx context.Context, documentId string) (commonModels.RegistryRecord, bool)
	DeleteDocument(ctx context.Context, documentId string)
}

// SessionStore keeps per-session chat history so follow-up questions
// can reference earlier answers.
type SessionStore interface {
	AppendExchange(ctx context.Context, sessionId string, exchange Exchange) error
	History(ctx context.Context, sessionId string) ([]string, error)
}

type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// formatExchange renders one stored exchange the way the prompt expects
// history lines.
func formatExchange(e Exchange) string {
	return fmt.Sprintf("User: %s\nAssistant: %s", e.Question, e.Answer)
}
