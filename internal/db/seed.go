package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"blogapi/internal/domain/models"
	"blogapi/internal/utils"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SeedPost is one post of a seed file.
type SeedPost struct {
	Title        string    `yaml:"title"`
	Body         string    `yaml:"body"`
	Author       string    `yaml:"author"`
	LastModified time.Time `yaml:"last_modified"`
}

// SeedData is the content of a seed file:
//
//	posts:
//	  - title: Hello
//	    body: First post
//	    author: admin
//	    last_modified: 2024-01-02T15:04:05Z
type SeedData struct {
	Posts []SeedPost `yaml:"posts"`
}

// PostSeeder is the storage a seed is written to.
type PostSeeder interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, p models.Post) (models.Post, error)
}

// LoadSeedFile reads and parses a yaml seed file.
func LoadSeedFile(path string) (SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedData{}, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return SeedData{}, fmt.Errorf("parse seed file: %w", err)
	}
	for i, p := range data.Posts {
		if utils.TrimOrEmpty(p.Title) == "" || utils.TrimOrEmpty(p.Author) == "" {
			return SeedData{}, fmt.Errorf("seed post %d: title and author are required", i)
		}
	}
	return data, nil
}

// Seed inserts data into an empty store and returns how many posts it wrote.
// A store that already holds posts is left alone.
func Seed(ctx context.Context, store PostSeeder, data SeedData, now time.Time) (int, error) {
	log := utils.Logger().With(zap.String("module", "SEED"))

	existing, err := store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		log.Info("store already has posts, skipping seed", zap.Int("existing", existing))
		return 0, nil
	}

	for i, sp := range data.Posts {
		mod := sp.LastModified
		if mod.IsZero() {
			mod = now
		}
		if _, err := store.Create(ctx, models.Post{
			Title:        utils.NormalizeSpace(sp.Title),
			Body:         sp.Body,
			Author:       utils.NormalizeSpace(sp.Author),
			LastModified: mod.UTC(),
		}); err != nil {
			log.Error("failed to insert seed post", zap.Int("index", i), zap.Error(err))
			return i, err
		}
		log.Debug("seeded post", zap.String("title", sp.Title))
	}

	log.Info("seeding completed", zap.Int("posts", len(data.Posts)))
	return len(data.Posts), nil
}
