package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"trading-journal-go/internal/models"
)

// JSONFileStore is the flat-file backend: the whole journal lives in one JSON
// document that is re-read and rewritten on every operation. Fine for a
// personal journal of a few thousand trades; zero external dependencies.
type JSONFileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*JSONFileStore)(nil)

type jsonFileData struct {
	Trades []models.Trade `json:"trades"`
	Videos []models.Video `json:"videos"`
}

// NewJSONFileStore uses the JSON file at path, creating it on first write.
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{path: path}
	// Fail fast on an unreadable or corrupt file.
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONFileStore) load() (*jsonFileData, error) {
	data := &jsonFileData{}
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return data, nil
}

func (s *JSONFileStore) save(data *jsonFileData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode journal data: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

func nextTradeID(trades []models.Trade) uint {
	var max uint
	for _, t := range trades {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

func nextVideoID(videos []models.Video) uint {
	var max uint
	for _, v := range videos {
		if v.ID > max {
			max = v.ID
		}
	}
	return max + 1
}

func (s *JSONFileStore) CreateTrade(_ context.Context, t *models.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	t.ID = nextTradeID(data.Trades)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	data.Trades = append(data.Trades, *t)
	return s.save(data)
}

func (s *JSONFileStore) GetTrade(_ context.Context, id uint) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range data.Trades {
		if data.Trades[i].ID == id {
			t := data.Trades[i]
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONFileStore) ListTrades(_ context.Context) ([]models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return data.Trades, nil
}

func (s *JSONFileStore) ListTradesByStatus(_ context.Context, status string) ([]models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []models.Trade
	for _, t := range data.Trades {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *JSONFileStore) UpdateTrade(_ context.Context, t *models.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	for i := range data.Trades {
		if data.Trades[i].ID == t.ID {
			data.Trades[i] = *t
			return s.save(data)
		}
	}
	return ErrNotFound
}

func (s *JSONFileStore) DeleteTrade(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	for i := range data.Trades {
		if data.Trades[i].ID == id {
			data.Trades = append(data.Trades[:i], data.Trades[i+1:]...)
			return s.save(data)
		}
	}
	return ErrNotFound
}

func (s *JSONFileStore) CreateVideo(_ context.Context, v *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	v.ID = nextVideoID(data.Videos)
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	data.Videos = append(data.Videos, *v)
	return s.save(data)
}

func (s *JSONFileStore) GetVideo(_ context.Context, id uint) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range data.Videos {
		if data.Videos[i].ID == id {
			v := data.Videos[i]
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONFileStore) ListVideos(_ context.Context, filter VideoFilter) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []models.Video
	for _, v := range data.Videos {
		if filter.Category != "" && v.Category != filter.Category {
			continue
		}
		if filter.Featured && !v.IsFeatured {
			continue
		}
		out = append(out, v)
	}
	// Newest first, matching the other backends.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *JSONFileStore) UpdateVideo(_ context.Context, v *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	for i := range data.Videos {
		if data.Videos[i].ID == v.ID {
			data.Videos[i] = *v
			return s.save(data)
		}
	}
	return ErrNotFound
}

func (s *JSONFileStore) DeleteVideo(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	for i := range data.Videos {
		if data.Videos[i].ID == id {
			data.Videos = append(data.Videos[:i], data.Videos[i+1:]...)
			return s.save(data)
		}
	}
	return ErrNotFound
}

func (s *JSONFileStore) Close() error {
	return nil
}
