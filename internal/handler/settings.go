package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/enum"
	"github.com/sara-kitchen/api/internal/notify"
)

// SettingsStore defines the database methods needed by admin settings.
// Satisfied by *database.Queries; narrow interface for testability.
type SettingsStore interface {
	GetDeliverySettings(ctx context.Context) (database.DeliverySettings, error)
	UpsertDeliverySettings(ctx context.Context, arg database.UpsertDeliverySettingsParams) (database.DeliverySettings, error)
	GetSystemSetting(ctx context.Context, key string) ([]byte, error)
	UpsertSystemSetting(ctx context.Context, key string, value []byte) error
}

// UpdatesFetcher pulls recent bot updates so chats that messaged the
// bot can be registered as notification channels. Satisfied by
// *notify.TelegramClient.
type UpdatesFetcher interface {
	GetUpdates(ctx context.Context) ([]notify.TelegramUpdate, error)
}

// SettingsHandler serves delivery fee and notification channel admin.
type SettingsHandler struct {
	store    SettingsStore
	telegram UpdatesFetcher
}

func NewSettingsHandler(store SettingsStore, telegram UpdatesFetcher) *SettingsHandler {
	return &SettingsHandler{store: store, telegram: telegram}
}

// RegisterRoutes registers admin settings endpoints.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/settings/delivery", h.GetDelivery)
	r.Put("/settings/delivery", h.UpdateDelivery)
	r.Get("/settings/channels", h.GetChannels)
	r.Put("/settings/channels", h.UpdateChannels)
	r.Post("/settings/channels/discover", h.DiscoverChannels)
}

// --- Request / Response types ---

type deliverySettingsRequest struct {
	InsideCityFee  string `json:"inside_city_fee"`
	OutsideCityFee string `json:"outside_city_fee"`
}

type deliverySettingsResponse struct {
	InsideCityFee  string `json:"inside_city_fee"`
	OutsideCityFee string `json:"outside_city_fee"`
}

type channelRequest struct {
	ChatID int64  `json:"chat_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type discoveredChat struct {
	ChatID int64  `json:"chat_id"`
	Name   string `json:"name"`
}

// --- Delivery fees ---

// GetDelivery returns the current delivery fee configuration. Missing
// settings read as zero fees rather than an error.
func (h *SettingsHandler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetDeliverySettings(r.Context())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusOK, deliverySettingsResponse{
				InsideCityFee:  "0.00",
				OutsideCityFee: "0.00",
			})
			return
		}
		log.Printf("ERROR: get delivery settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, deliverySettingsResponse{
		InsideCityFee:  formatNumeric(settings.InsideCityFee),
		OutsideCityFee: formatNumeric(settings.OutsideCityFee),
	})
}

func (h *SettingsHandler) UpdateDelivery(w http.ResponseWriter, r *http.Request) {
	var req deliverySettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.InsideCityFee == "" || req.OutsideCityFee == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "inside_city_fee and outside_city_fee are required"})
		return
	}
	inside, err := parsePrice(req.InsideCityFee)
	if err != nil {
		writePriceError(w, err)
		return
	}
	outside, err := parsePrice(req.OutsideCityFee)
	if err != nil {
		writePriceError(w, err)
		return
	}

	settings, err := h.store.UpsertDeliverySettings(r.Context(), database.UpsertDeliverySettingsParams{
		InsideCityFee:  inside,
		OutsideCityFee: outside,
	})
	if err != nil {
		log.Printf("ERROR: upsert delivery settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, deliverySettingsResponse{
		InsideCityFee:  formatNumeric(settings.InsideCityFee),
		OutsideCityFee: formatNumeric(settings.OutsideCityFee),
	})
}

// --- Notification channels ---

func (h *SettingsHandler) GetChannels(w http.ResponseWriter, r *http.Request) {
	raw, err := h.store.GetSystemSetting(r.Context(), enum.SettingNotificationChannels)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusOK, []notify.Channel{})
			return
		}
		log.Printf("ERROR: get notification channels: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	var channels []notify.Channel
	if err := json.Unmarshal(raw, &channels); err != nil {
		log.Printf("ERROR: decode notification channels: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if channels == nil {
		channels = []notify.Channel{}
	}
	writeJSON(w, http.StatusOK, channels)
}

// UpdateChannels replaces the full channel list.
func (h *SettingsHandler) UpdateChannels(w http.ResponseWriter, r *http.Request) {
	var req []channelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	channels := make([]notify.Channel, len(req))
	for i, c := range req {
		if c.ChatID == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chat_id is required"})
			return
		}
		if c.Role != enum.RoleDriver && c.Role != enum.RoleAdmin && c.Role != enum.RoleCook {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be admin, cook or driver"})
			return
		}
		channels[i] = notify.Channel{ChatID: c.ChatID, Name: c.Name, Role: c.Role}
	}

	value, err := json.Marshal(channels)
	if err != nil {
		log.Printf("ERROR: encode notification channels: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if err := h.store.UpsertSystemSetting(r.Context(), enum.SettingNotificationChannels, value); err != nil {
		log.Printf("ERROR: save notification channels: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, channels)
}

// DiscoverChannels lists chats that recently messaged the bot, so the
// admin can pick chat IDs without digging through the Telegram API.
func (h *SettingsHandler) DiscoverChannels(w http.ResponseWriter, r *http.Request) {
	if h.telegram == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "telegram bot is not configured"})
		return
	}

	updates, err := h.telegram.GetUpdates(r.Context())
	if err != nil {
		log.Printf("ERROR: telegram getUpdates: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not reach telegram"})
		return
	}

	seen := make(map[int64]bool)
	chats := []discoveredChat{}
	for _, u := range updates {
		if u.Message == nil || seen[u.Message.Chat.ID] {
			continue
		}
		seen[u.Message.Chat.ID] = true
		name := u.Message.Chat.Title
		if name == "" {
			name = u.Message.Chat.FirstName
		}
		chats = append(chats, discoveredChat{ChatID: u.Message.Chat.ID, Name: name})
	}
	writeJSON(w, http.StatusOK, chats)
}
