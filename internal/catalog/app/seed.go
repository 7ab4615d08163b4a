package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vitrineapp/vitrine/pkg/pointer"
	"github.com/vitrineapp/vitrine/pkg/slug"
)

// seedEntry is one built-in catalog listing inserted on first boot.
type seedEntry struct {
	name           string
	description    string
	url            string
	category       string
	iconURL        string
	externalRating float64
}

// seedEntries is the starter catalog. Ratings here are editorial scores, not
// community votes; they surface through the external rating channel until
// real votes arrive.
var seedEntries = []seedEntry{
	{
		name:           "ChatGPT",
		description:    "Conversational AI assistant for writing, coding, analysis and research, built on OpenAI's frontier models.",
		url:            "https://chatgpt.com",
		category:       "AI",
		iconURL:        "https://chatgpt.com/favicon.ico",
		externalRating: 4.7,
	},
	{
		name:           "Figma",
		description:    "Collaborative interface design tool that runs entirely in the browser, with multiplayer editing and a rich plugin ecosystem.",
		url:            "https://www.figma.com",
		category:       "Design",
		iconURL:        "https://static.figma.com/app/icon/1/favicon.ico",
		externalRating: 4.6,
	},
	{
		name:           "Notion",
		description:    "All-in-one workspace combining notes, documents, wikis and project databases with flexible block-based editing.",
		url:            "https://www.notion.so",
		category:       "Productivity",
		iconURL:        "https://www.notion.so/images/favicon.ico",
		externalRating: 4.5,
	},
	{
		name:           "Canva",
		description:    "Drag-and-drop graphic design platform with thousands of templates for social media, presentations and print.",
		url:            "https://www.canva.com",
		category:       "Design",
		iconURL:        "https://static.canva.com/static/images/favicon.ico",
		externalRating: 4.4,
	},
	{
		name:           "Trello",
		description:    "Kanban-style project boards for organising tasks and workflows with lists, cards and team assignments.",
		url:            "https://trello.com",
		category:       "Productivity",
		iconURL:        "https://trello.com/favicon.ico",
		externalRating: 4.2,
	},
	{
		name:           "GitHub",
		description:    "Code hosting and collaboration platform with pull requests, actions, issues and the world's largest open source community.",
		url:            "https://github.com",
		category:       "Development",
		iconURL:        "https://github.com/favicon.ico",
		externalRating: 4.8,
	},
	{
		name:           "Replit",
		description:    "Browser-based IDE and hosting platform supporting dozens of languages, with instant deployment and AI pair programming.",
		url:            "https://replit.com",
		category:       "Development",
		iconURL:        "https://replit.com/public/icons/favicon-196.png",
		externalRating: 4.1,
	},
	{
		name:           "Spotify Web Player",
		description:    "Stream music and podcasts directly in the browser with playlists, recommendations and cross-device sync.",
		url:            "https://open.spotify.com",
		category:       "Social",
		iconURL:        "https://open.spotify.com/favicon.ico",
		externalRating: 4.3,
	},
	{
		name:           "Perplexity",
		description:    "AI answer engine that searches the web and responds with sourced, citation-backed summaries.",
		url:            "https://www.perplexity.ai",
		category:       "AI",
		iconURL:        "https://www.perplexity.ai/favicon.ico",
		externalRating: 4.4,
	},
	{
		name:           "Wordle",
		description:    "Daily five-letter word puzzle. Six guesses, colour-coded feedback, one round per day.",
		url:            "https://www.nytimes.com/games/wordle/index.html",
		category:       "Games",
		iconURL:        "https://www.nytimes.com/games-assets/v2/metadata/nyt-wordle-icon.png",
		externalRating: 4.5,
	},
}

// SeedIfEmpty inserts the starter catalog when the app table has no rows.
// It is a no-op on every boot after the first, and on any boot against a
// database that already holds data.
func (s *Service) SeedIfEmpty(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed: counting apps: %w", err)
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "seed skipped, catalog not empty", slog.Int("apps", count))
		return nil
	}

	apps := make([]*App, 0, len(seedEntries))
	for _, entry := range seedEntries {
		apps = append(apps, &App{
			Name:           entry.name,
			Slug:           slug.From(entry.name),
			Description:    entry.description,
			URL:            entry.url,
			Category:       entry.category,
			IconURL:        pointer.To(entry.iconURL),
			ExternalRating: pointer.To(entry.externalRating),
			IsApproved:     true,
		})
	}

	if err := s.repo.CreateBatch(ctx, apps); err != nil {
		return fmt.Errorf("seed: inserting apps: %w", err)
	}

	s.logger.InfoContext(ctx, "catalog seeded", slog.Int("apps", len(apps)))
	return nil
}
