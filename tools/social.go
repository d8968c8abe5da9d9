package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// ProfileFetcher resolves a social handle to its public profile
// description.
type ProfileFetcher interface {
	Description(ctx context.Context, username string) (string, error)
}

// WebProfileFetcher scrapes a profile page and extracts its
// description, preferring structured metadata over body text.
type WebProfileFetcher struct {
	baseURL    string
	httpClient *http.Client
	converter  *md.Converter
}

// NewWebProfileFetcher creates a fetcher for profile pages served under
// baseURL (e.g. a mirror host, "https://x.com").
func NewWebProfileFetcher(baseURL string) *WebProfileFetcher {
	return &WebProfileFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		converter: md.NewConverter("", true, nil),
	}
}

// Description fetches the profile page for username and returns its
// description text.
func (f *WebProfileFetcher) Description(ctx context.Context, username string) (string, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return "", fmt.Errorf("username is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/"+username, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; SyntoBot/1.0)")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("profile request failed with status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Profile pages carry the bio in OpenGraph metadata; render the
	// page body only when that is absent.
	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && strings.TrimSpace(desc) != "" {
		return strings.TrimSpace(desc), nil
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && strings.TrimSpace(desc) != "" {
		return strings.TrimSpace(desc), nil
	}

	markdown, err := f.converter.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML: %w", err)
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", fmt.Errorf("profile for %s has no description", username)
	}
	if len(markdown) > 1000 {
		markdown = markdown[:1000]
	}
	return markdown, nil
}

// MockProfileFetcher serves a canned description for any handle, used
// in demo mode.
type MockProfileFetcher struct{}

// Description returns the canned weekly allocation update.
func (MockProfileFetcher) Description(ctx context.Context, username string) (string, error) {
	return "Week 6 – Quick Update:\n" +
		"AI x: 25%\n" +
		"Virtuals eco: 25%\n" +
		"AI alt: 20%\n" +
		"Memes: 15%\n" +
		"Cash: 15%\n" +
		"Stay nimble.", nil
}

var (
	_ ProfileFetcher = (*WebProfileFetcher)(nil)
	_ ProfileFetcher = MockProfileFetcher{}
)
