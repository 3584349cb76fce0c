package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/enum"
	"github.com/sara-kitchen/api/internal/handler"
	"github.com/sara-kitchen/api/internal/notify"
)

// --- Mocks ---

type mockSettingsStore struct {
	delivery      *database.DeliverySettings
	upsertedFees  *database.UpsertDeliverySettingsParams
	systemValues  map[string][]byte
	savedChannels []byte
}

func newMockSettingsStore() *mockSettingsStore {
	return &mockSettingsStore{systemValues: make(map[string][]byte)}
}

func (m *mockSettingsStore) GetDeliverySettings(_ context.Context) (database.DeliverySettings, error) {
	if m.delivery == nil {
		return database.DeliverySettings{}, pgx.ErrNoRows
	}
	return *m.delivery, nil
}

func (m *mockSettingsStore) UpsertDeliverySettings(_ context.Context, arg database.UpsertDeliverySettingsParams) (database.DeliverySettings, error) {
	m.upsertedFees = &arg
	return database.DeliverySettings{InsideCityFee: arg.InsideCityFee, OutsideCityFee: arg.OutsideCityFee}, nil
}

func (m *mockSettingsStore) GetSystemSetting(_ context.Context, key string) ([]byte, error) {
	v, ok := m.systemValues[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return v, nil
}

func (m *mockSettingsStore) UpsertSystemSetting(_ context.Context, key string, value []byte) error {
	m.systemValues[key] = value
	m.savedChannels = value
	return nil
}

type mockUpdatesFetcher struct {
	updates []notify.TelegramUpdate
	err     error
}

func (m *mockUpdatesFetcher) GetUpdates(_ context.Context) ([]notify.TelegramUpdate, error) {
	return m.updates, m.err
}

func newSettingsRouter(store handler.SettingsStore, fetcher handler.UpdatesFetcher) http.Handler {
	h := handler.NewSettingsHandler(store, fetcher)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// --- Delivery settings tests ---

func TestGetDelivery_MissingRowReadsAsZeroFees(t *testing.T) {
	r := newSettingsRouter(newMockSettingsStore(), nil)

	req := httptest.NewRequest("GET", "/settings/delivery", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["inside_city_fee"] != "0.00" || resp["outside_city_fee"] != "0.00" {
		t.Errorf("expected zero fees, got %v", resp)
	}
}

func TestUpdateDelivery_PersistsFees(t *testing.T) {
	store := newMockSettingsStore()
	r := newSettingsRouter(store, nil)

	rr := putJSON(t, r, "/settings/delivery", map[string]string{
		"inside_city_fee":  "20.00",
		"outside_city_fee": "50.00",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if store.upsertedFees == nil {
		t.Fatal("expected upsert call")
	}
	resp := decodeResponse(t, rr)
	if resp["inside_city_fee"] != "20.00" || resp["outside_city_fee"] != "50.00" {
		t.Errorf("unexpected response fees: %v", resp)
	}
}

func TestUpdateDelivery_RejectsNegativeFee(t *testing.T) {
	r := newSettingsRouter(newMockSettingsStore(), nil)

	rr := putJSON(t, r, "/settings/delivery", map[string]string{
		"inside_city_fee":  "-5.00",
		"outside_city_fee": "50.00",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Channel tests ---

func TestGetChannels_EmptyWhenUnset(t *testing.T) {
	r := newSettingsRouter(newMockSettingsStore(), nil)

	req := httptest.NewRequest("GET", "/settings/channels", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	var channels []notify.Channel
	if err := json.NewDecoder(rr.Body).Decode(&channels); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(channels) != 0 {
		t.Errorf("expected empty channel list, got %v", channels)
	}
}

func TestUpdateChannels_SavesUnderSettingKey(t *testing.T) {
	store := newMockSettingsStore()
	r := newSettingsRouter(store, nil)

	rr := putJSON(t, r, "/settings/channels", []map[string]interface{}{
		{"chat_id": 12345, "name": "Driver chat", "role": enum.RoleDriver},
		{"chat_id": 67890, "name": "Admin chat", "role": enum.RoleAdmin},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	raw, ok := store.systemValues[enum.SettingNotificationChannels]
	if !ok {
		t.Fatal("channels were not saved under the notification setting key")
	}
	var saved []notify.Channel
	if err := json.Unmarshal(raw, &saved); err != nil {
		t.Fatalf("decode saved channels: %v", err)
	}
	if len(saved) != 2 || saved[0].ChatID != 12345 || saved[1].Role != enum.RoleAdmin {
		t.Errorf("unexpected saved channels: %+v", saved)
	}
}

func TestUpdateChannels_RejectsUnknownRole(t *testing.T) {
	r := newSettingsRouter(newMockSettingsStore(), nil)

	rr := putJSON(t, r, "/settings/channels", []map[string]interface{}{
		{"chat_id": 12345, "role": "courier"},
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Discover tests ---

func TestDiscoverChannels_DeduplicatesChats(t *testing.T) {
	chat := notify.TelegramChat{ID: 111, Title: "Kitchen staff"}
	fetcher := &mockUpdatesFetcher{updates: []notify.TelegramUpdate{
		makeUpdate(chat, "hello"),
		makeUpdate(chat, "again"),
		makeUpdate(notify.TelegramChat{ID: 222, FirstName: "Sara"}, "hi"),
	}}
	r := newSettingsRouter(newMockSettingsStore(), fetcher)

	rr := postJSON(t, r, "/settings/channels/discover", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var chats []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&chats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("expected 2 unique chats, got %d", len(chats))
	}
	if chats[0]["name"] != "Kitchen staff" {
		t.Errorf("group title should win, got %v", chats[0]["name"])
	}
	if chats[1]["name"] != "Sara" {
		t.Errorf("first name should back-fill missing title, got %v", chats[1]["name"])
	}
}

func TestDiscoverChannels_UnconfiguredBotIs503(t *testing.T) {
	r := newSettingsRouter(newMockSettingsStore(), nil)

	rr := postJSON(t, r, "/settings/channels/discover", nil)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

// --- Helpers ---

func makeUpdate(chat notify.TelegramChat, text string) notify.TelegramUpdate {
	u := notify.TelegramUpdate{UpdateID: 1}
	u.Message = &struct {
		Chat notify.TelegramChat `json:"chat"`
		Text string              `json:"text"`
	}{Chat: chat, Text: text}
	return u
}

func putJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("PUT", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
