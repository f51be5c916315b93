// Package testutil provides in-memory stand-ins for the stores and
// providers, shared by the engine, translation and handler tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"seogen/internal/models"
	"seogen/internal/provider"
)

// TemplateStore is an in-memory template store keyed by page type and language.
type TemplateStore struct {
	mu    sync.Mutex
	items map[string]models.Template
}

func NewTemplateStore(templates ...models.Template) *TemplateStore {
	s := &TemplateStore{items: make(map[string]models.Template)}
	for _, t := range templates {
		if _, err := s.Save(context.Background(), &t); err != nil {
			panic(err)
		}
	}
	return s
}

func templateKey(pt models.PageType, lang string) string { return string(pt) + "/" + lang }

func (s *TemplateStore) Find(_ context.Context, pageType models.PageType, language string) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[templateKey(pageType, language)]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *TemplateStore) List(_ context.Context) ([]models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Template, 0, len(s.items))
	for _, t := range s.items {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return templateKey(out[i].PageType, out[i].Language) < templateKey(out[j].PageType, out[j].Language)
	})
	return out, nil
}

func (s *TemplateStore) Save(_ context.Context, t *models.Template) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	key := templateKey(t.PageType, t.Language)
	saved := *t
	if prev, ok := s.items[key]; ok {
		saved.ID = prev.ID
		saved.CreatedAt = prev.CreatedAt
		saved.Version = prev.Version + 1
	} else {
		saved.ID = uuid.New()
		saved.CreatedAt = now
		saved.Version = 1
	}
	if saved.BodyFormat == "" {
		saved.BodyFormat = models.BodyFormatHTML
	}
	saved.UpdatedAt = now
	s.items[key] = saved
	return &saved, nil
}

// ContentStore is an in-memory content store. Setting UpsertErr or BatchErr
// makes the matching write fail.
type ContentStore struct {
	mu        sync.Mutex
	items     map[string]models.Content
	writes    int
	UpsertErr error
	BatchErr  error
}

func NewContentStore(items ...models.Content) *ContentStore {
	s := &ContentStore{items: make(map[string]models.Content)}
	for _, c := range items {
		s.put(c)
	}
	s.writes = 0
	return s
}

func contentKey(pt models.PageType, entityID, lang string) string {
	return string(pt) + "/" + entityID + "/" + lang
}

func (s *ContentStore) put(c models.Content) models.Content {
	now := time.Now().UTC()
	key := contentKey(c.PageType, c.EntityID, c.Language)
	if prev, ok := s.items[key]; ok {
		c.ID = prev.ID
		c.CreatedAt = prev.CreatedAt
	} else {
		c.ID = uuid.New()
		c.CreatedAt = now
	}
	if c.Status == "" {
		c.Status = models.ContentStatusOK
	}
	c.UpdatedAt = now
	s.items[key] = c
	s.writes++
	return c
}

func (s *ContentStore) Find(_ context.Context, pageType models.PageType, entityID, language string) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[contentKey(pageType, entityID, language)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *ContentStore) ListByEntity(_ context.Context, pageType models.PageType, entityID string) ([]models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Content
	for _, c := range s.items {
		if c.PageType == pageType && c.EntityID == entityID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out, nil
}

func (s *ContentStore) Upsert(_ context.Context, c *models.Content) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpsertErr != nil {
		return nil, s.UpsertErr
	}
	saved := s.put(*c)
	return &saved, nil
}

func (s *ContentStore) UpsertBatch(_ context.Context, items []models.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.BatchErr != nil {
		return s.BatchErr
	}
	for _, c := range items {
		s.put(c)
	}
	return nil
}

// Writes returns the number of rows written since construction.
func (s *ContentStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Len returns the number of stored rows.
func (s *ContentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// LanguageStore serves a fixed language list.
type LanguageStore struct {
	Languages []models.Language
	Err       error
}

func (s *LanguageStore) ListActive(_ context.Context) ([]models.Language, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Language
	for _, l := range s.Languages {
		if l.IsActive {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *LanguageStore) List(_ context.Context) ([]models.Language, error) {
	return s.Languages, s.Err
}

// DefaultLanguages returns English as the default plus Spanish and German.
func DefaultLanguages() []models.Language {
	return []models.Language{
		{Code: "en", Name: "English", NativeName: "English", IsActive: true, IsDefault: true, Position: 1},
		{Code: "es", Name: "Spanish", NativeName: "Español", IsActive: true, Position: 2},
		{Code: "de", Name: "German", NativeName: "Deutsch", IsActive: true, Position: 3},
	}
}

// Provider serves fixed entities and payloads. Payloads are wrapped under
// "apiResponse" like the real providers do. FetchErrs fails individual ids.
type Provider struct {
	Type      models.PageType
	Entities  []models.Entity
	Payloads  map[string]string
	FetchErrs map[string]error
	ListErr   error

	mu      sync.Mutex
	fetched []string
}

func (p *Provider) PageType() models.PageType { return p.Type }

func (p *Provider) ListEntities(_ context.Context) ([]models.Entity, error) {
	if p.ListErr != nil {
		return nil, p.ListErr
	}
	return p.Entities, nil
}

func (p *Provider) FetchContext(ctx context.Context, entity models.Entity) (provider.Context, error) {
	p.mu.Lock()
	p.fetched = append(p.fetched, entity.ID)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := p.FetchErrs[entity.ID]; ok {
		return nil, err
	}
	payload, ok := p.Payloads[entity.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrEntityNotFound, entity.ID)
	}
	return provider.WrapContext(json.RawMessage(payload))
}

// Fetched returns the entity ids fetched so far, in call order.
func (p *Provider) Fetched() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.fetched...)
}

// ReportStore keeps reports in memory.
type ReportStore struct {
	mu           sync.Mutex
	Bulk         map[string]*models.BulkReport
	Translations map[string]*models.TranslationReport
}

func NewReportStore() *ReportStore {
	return &ReportStore{
		Bulk:         make(map[string]*models.BulkReport),
		Translations: make(map[string]*models.TranslationReport),
	}
}

func (s *ReportStore) SaveBulkReport(_ context.Context, r *models.BulkReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Bulk[templateKey(r.PageType, r.Language)] = r
	return nil
}

func (s *ReportStore) LatestBulkReport(_ context.Context, pageType models.PageType, language string) (*models.BulkReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Bulk[templateKey(pageType, language)], nil
}

func (s *ReportStore) SaveTranslationReport(_ context.Context, r *models.TranslationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Translations[templateKey(r.PageType, r.EntityID)] = r
	return nil
}

func (s *ReportStore) LatestTranslationReport(_ context.Context, pageType models.PageType, entityID string) (*models.TranslationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Translations[templateKey(pageType, entityID)], nil
}
