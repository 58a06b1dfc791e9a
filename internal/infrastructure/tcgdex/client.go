// Package tcgdex is a client for the TCGdex card database
// (https://tcgdex.dev). Responses are read with gjson so that only the fields
// the catalog stores are decoded.
package tcgdex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/destocard/backend/internal/infrastructure/config"
	"github.com/tidwall/gjson"
)

const (
	// maxResponseSize bounds a single API response (a set lists every card)
	maxResponseSize = 8 * 1024 * 1024

	defaultBaseURL  = "https://api.tcgdex.net/v2"
	defaultLanguage = "fr"
	defaultTimeout  = 10 * time.Second
)

var (
	// ErrNotFound is returned when TCGdex has no such resource
	ErrNotFound = errors.New("tcgdex: resource not found")
	// ErrInvalidID is returned for ids that cannot be a TCGdex id
	ErrInvalidID = errors.New("tcgdex: invalid id")
)

// Card is a single card
type Card struct {
	ID          string
	LocalID     string
	Name        string
	ImageURL    string
	Category    string
	Illustrator string
	Rarity      string
	HP          int
	SetID       string
}

// CardBrief is the summary of a card listed inside a set
type CardBrief struct {
	ID       string
	LocalID  string
	Name     string
	ImageURL string
}

// Set is a card set, called an extension in the catalog
type Set struct {
	ID          string
	Name        string
	LogoURL     string
	SymbolURL   string
	CardCount   int
	ReleaseDate *time.Time
	SerieID     string
	SerieName   string
	Cards       []CardBrief
}

// Serie is a group of sets
type Serie struct {
	ID      string
	Name    string
	LogoURL string
	SetIDs  []string
}

// Client reads the TCGdex REST API
type Client struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

// NewClient creates a client from config, filling in defaults
func NewClient(cfg config.TCGdexConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	lang := cfg.Language
	if lang == "" {
		lang = defaultLanguage
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  baseURL,
		language: lang,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchCard returns the card with the given id, e.g. "swsh3-136"
func (c *Client) FetchCard(ctx context.Context, id string) (*Card, error) {
	body, err := c.get(ctx, "cards", id)
	if err != nil {
		return nil, err
	}
	doc := gjson.ParseBytes(body)
	card := &Card{
		ID:          doc.Get("id").String(),
		LocalID:     doc.Get("localId").String(),
		Name:        doc.Get("name").String(),
		ImageURL:    assetURL(doc.Get("image").String(), "/high.png"),
		Category:    doc.Get("category").String(),
		Illustrator: doc.Get("illustrator").String(),
		Rarity:      doc.Get("rarity").String(),
		HP:          int(doc.Get("hp").Int()),
		SetID:       doc.Get("set.id").String(),
	}
	if card.ID == "" || card.SetID == "" {
		return nil, fmt.Errorf("tcgdex: card %s: incomplete response", id)
	}
	return card, nil
}

// FetchSet returns a set with its serie reference and card list
func (c *Client) FetchSet(ctx context.Context, id string) (*Set, error) {
	body, err := c.get(ctx, "sets", id)
	if err != nil {
		return nil, err
	}
	doc := gjson.ParseBytes(body)
	set := &Set{
		ID:        doc.Get("id").String(),
		Name:      doc.Get("name").String(),
		LogoURL:   assetURL(doc.Get("logo").String(), ".png"),
		SymbolURL: assetURL(doc.Get("symbol").String(), ".png"),
		CardCount: int(doc.Get("cardCount.official").Int()),
		SerieID:   doc.Get("serie.id").String(),
		SerieName: doc.Get("serie.name").String(),
	}
	if set.ID == "" || set.SerieID == "" {
		return nil, fmt.Errorf("tcgdex: set %s: incomplete response", id)
	}
	if rd := doc.Get("releaseDate").String(); rd != "" {
		if t, err := time.Parse(time.DateOnly, rd); err == nil {
			set.ReleaseDate = &t
		}
	}
	doc.Get("cards").ForEach(func(_, v gjson.Result) bool {
		set.Cards = append(set.Cards, CardBrief{
			ID:       v.Get("id").String(),
			LocalID:  v.Get("localId").String(),
			Name:     v.Get("name").String(),
			ImageURL: assetURL(v.Get("image").String(), "/high.png"),
		})
		return true
	})
	return set, nil
}

// FetchSerie returns a serie with the ids of its sets
func (c *Client) FetchSerie(ctx context.Context, id string) (*Serie, error) {
	body, err := c.get(ctx, "series", id)
	if err != nil {
		return nil, err
	}
	doc := gjson.ParseBytes(body)
	serie := &Serie{
		ID:      doc.Get("id").String(),
		Name:    doc.Get("name").String(),
		LogoURL: assetURL(doc.Get("logo").String(), ".png"),
	}
	if serie.ID == "" {
		return nil, fmt.Errorf("tcgdex: serie %s: incomplete response", id)
	}
	for _, v := range doc.Get("sets.#.id").Array() {
		serie.SetIDs = append(serie.SetIDs, v.String())
	}
	return serie, nil
}

func (c *Client) get(ctx context.Context, resource, id string) ([]byte, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "/?#") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	endpoint := c.baseURL + "/" + c.language + "/" + resource + "/" + url.PathEscape(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tcgdex: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tcgdex: GET %s: %w", resource, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("tcgdex: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, resource, id)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("tcgdex: GET %s/%s: status %d", resource, id, resp.StatusCode)
	case !gjson.ValidBytes(body):
		return nil, fmt.Errorf("tcgdex: GET %s/%s: invalid JSON", resource, id)
	}
	return body, nil
}

// assetURL turns a TCGdex asset base into a downloadable file URL
func assetURL(base, suffix string) string {
	if base == "" {
		return ""
	}
	return base + suffix
}
