package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
)

// Ensure Source implements HistorySource
var _ driven.HistorySource = (*Source)(nil)

// Source exposes a GitHub user's repositories as history collections.
// Forked and archived repositories are skipped; they say little about
// what the user actually worked on.
type Source struct {
	client   *Client
	username string
}

// NewSource creates a history source for the given GitHub username.
func NewSource(client *Client, username string) (*Source, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: GitHub username is required", domain.ErrInvalidInput)
	}
	return &Source{client: client, username: username}, nil
}

// ListCollections returns the user's repository full names, most
// recently updated first.
func (s *Source) ListCollections(ctx context.Context) ([]string, error) {
	repos, err := s.client.ListUserRepos(ctx, s.username)
	if err != nil {
		return nil, fmt.Errorf("list repos for %s: %w", s.username, err)
	}

	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		if repo.Fork || repo.Archived {
			continue
		}
		names = append(names, repo.FullName)
	}
	return names, nil
}

// FetchRecords returns up to limit recent commits from the repository
// as history records. An empty repository yields no records rather
// than an error.
func (s *Source) FetchRecords(ctx context.Context, collection string, limit int) ([]domain.HistoryRecord, error) {
	commits, err := s.client.ListCommits(ctx, collection, limit)
	if err != nil {
		var apiErr *APIError
		// 409 is GitHub's answer for a repository with no commits
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			return nil, nil
		}
		return nil, fmt.Errorf("list commits for %s: %w", collection, err)
	}

	records := make([]domain.HistoryRecord, 0, len(commits))
	for _, commit := range commits {
		record := domain.HistoryRecord{
			ID:         commit.SHA,
			Summary:    commitSubject(commit.Commit.Message),
			Author:     commit.Commit.Author.Name,
			AuthorMail: commit.Commit.Author.Email,
			Timestamp:  commit.Commit.Author.Date,
			Collection: collection,
			URL:        commit.HTMLURL,
		}
		for _, file := range commit.Files {
			record.Files = append(record.Files, file.Filename)
		}
		records = append(records, record)
	}
	return records, nil
}

// commitSubject keeps the subject line and drops the body. Multi-line
// commit messages carry review noise the embedding does not need.
func commitSubject(message string) string {
	subject, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(subject)
}
