package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sara-kitchen/api/internal/ai"
	"github.com/sara-kitchen/api/internal/database"
)

// maxChatMessages bounds one conversation so a client cannot relay
// arbitrarily large payloads through our API key.
const maxChatMessages = 20

// Generator is satisfied by *ai.GeminiClient.
type Generator interface {
	Generate(ctx context.Context, system string, messages []ai.Message) (string, error)
}

// ChatMenuStore is the slice of the catalog the assistant needs.
// Satisfied by *database.Queries; narrow interface for testability.
type ChatMenuStore interface {
	ListAvailableProducts(ctx context.Context) ([]database.Product, error)
	ListAvailableOffers(ctx context.Context) ([]database.Offer, error)
}

// AIChatHandler proxies customer questions to the language model with
// the menu as context.
type AIChatHandler struct {
	gen  Generator
	menu ChatMenuStore
}

func NewAIChatHandler(gen Generator, menu ChatMenuStore) *AIChatHandler {
	return &AIChatHandler{gen: gen, menu: menu}
}

// RegisterRoutes registers the public chat endpoint.
func (h *AIChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/ai-chat", h.Chat)
}

type aiChatRequest struct {
	Messages []ai.Message `json:"messages"`
}

type aiChatResponse struct {
	Reply string `json:"reply"`
}

func (h *AIChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.gen == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "assistant is not configured"})
		return
	}

	var req aiChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "messages are required"})
		return
	}
	if len(req.Messages) > maxChatMessages {
		req.Messages = req.Messages[len(req.Messages)-maxChatMessages:]
	}
	for _, m := range req.Messages {
		if strings.TrimSpace(m.Text) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message text cannot be empty"})
			return
		}
	}

	system, err := h.systemPrompt(r.Context())
	if err != nil {
		log.Printf("ERROR: build assistant prompt: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	reply, err := h.gen.Generate(r.Context(), system, req.Messages)
	if err != nil {
		log.Printf("ERROR: generate assistant reply: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "assistant is unavailable, try again"})
		return
	}
	writeJSON(w, http.StatusOK, aiChatResponse{Reply: reply})
}

// systemPrompt grounds the assistant in the live menu so it answers
// about dishes we actually sell.
func (h *AIChatHandler) systemPrompt(ctx context.Context) (string, error) {
	products, err := h.menu.ListAvailableProducts(ctx)
	if err != nil {
		return "", err
	}
	offers, err := h.menu.ListAvailableOffers(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are the friendly assistant for a home kitchen. ")
	b.WriteString("Answer questions about the menu, help customers decide, and keep replies short. ")
	b.WriteString("If asked about anything unrelated to food or ordering, politely decline.\n\nMenu:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s (%s)", p.Name, formatNumeric(p.Price))
		if p.Description.Valid {
			fmt.Fprintf(&b, ": %s", p.Description.String)
		}
		b.WriteString("\n")
	}
	if len(offers) > 0 {
		b.WriteString("\nOffers:\n")
		for _, o := range offers {
			fmt.Fprintf(&b, "- %s (%s)", o.Name, formatNumeric(o.Price))
			if o.Description.Valid {
				fmt.Fprintf(&b, ": %s", o.Description.String)
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
