package i18n

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-ssg/pkg/interfaces"
)

// Service hands out translators per language, loading each catalog once.
type Service struct {
	cfg    Config
	loader *Loader

	mu       sync.Mutex
	catalogs map[string]*Catalog
}

// NewService constructs a translation service for cfg.
func NewService(cfg Config) *Service {
	return &Service{
		cfg:      cfg,
		loader:   NewLoader(cfg.Dir),
		catalogs: map[string]*Catalog{},
	}
}

// DefaultLanguage returns the configured fallback language.
func (s *Service) DefaultLanguage() string {
	return s.cfg.DefaultLanguage
}

// Translator returns the translator for language, falling back to the
// default language when language is empty. Without a catalog directory the
// identity translator is returned.
func (s *Service) Translator(ctx context.Context, language string) (interfaces.Translator, error) {
	if strings.TrimSpace(s.cfg.Dir) == "" {
		return identityTranslator{}, nil
	}
	if strings.TrimSpace(language) == "" {
		language = s.cfg.DefaultLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if catalog, ok := s.catalogs[language]; ok {
		return catalog, nil
	}
	catalog, err := s.loader.Load(ctx, language)
	if err != nil {
		return nil, err
	}
	s.catalogs[language] = catalog
	return catalog, nil
}

// Reset drops cached catalogs so edited files are read again.
func (s *Service) Reset() {
	s.mu.Lock()
	s.catalogs = map[string]*Catalog{}
	s.mu.Unlock()
}

type identityTranslator struct{}

func (identityTranslator) Translate(key string) string {
	return key
}
