package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/urlcheck"
)

// seedFile is the root structure of the optional seed YAML:
//
//	folders:
//	  - title: Tools
//	    links:
//	      - name: Site
//	        url: https://a.example
type seedFile struct {
	Folders []seedFolder `yaml:"folders"`
}

type seedFolder struct {
	Title string     `yaml:"title"`
	Links []seedLink `yaml:"links"`
}

type seedLink struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Seed imports an initial catalog from a YAML file. It only runs against an
// empty store (no folders yet) so it can never clobber admin edits. Links
// with invalid URLs are skipped with a warning rather than failing the boot.
func (s *Service) Seed(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed yaml: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Load()
	if len(doc.Folders) > 0 {
		s.log.Debug("store already has folders, skipping seed import")
		return nil
	}

	folders, links := 0, 0
	for _, sf := range seed.Folders {
		title := strings.TrimSpace(sf.Title)
		if title == "" {
			s.log.Warn("seed folder without title skipped")
			continue
		}

		folder := domain.Folder{
			ID:    uuid.NewString(),
			Title: title,
			Links: []domain.Link{},
		}
		for _, sl := range sf.Links {
			name := strings.TrimSpace(sl.Name)
			canonical, ok := urlcheck.Normalize(sl.URL)
			if name == "" || !ok {
				s.log.Warn("seed link skipped",
					logger.String("folder", title),
					logger.String("name", sl.Name),
					logger.String("url", sl.URL))
				continue
			}
			folder.Links = append(folder.Links, domain.Link{
				ID:   uuid.NewString(),
				Name: name,
				URL:  canonical,
			})
			links++
		}
		doc.Folders = append(doc.Folders, folder)
		folders++
	}

	if folders == 0 {
		return nil
	}

	if err := s.store.Save(doc); err != nil {
		return fmt.Errorf("persist seeded catalog: %w", err)
	}

	s.log.Info("catalog seeded",
		logger.Int("folders", folders),
		logger.Int("links", links))
	return nil
}
