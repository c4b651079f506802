package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rotblauer/orthod/params"
	"github.com/tidwall/gjson"
)

// Discover queries an imagery-metadata endpoint for the current tile URL
// template and subdomains and rewrites cfg in place. The metadata JSON is
// the Bing REST shape: resourceSets.0.resources.0.imageUrl with {quadkey}
// and {subdomain} placeholders, plus imageUrlSubdomains.
//
// A no-op when cfg.MetadataURL is empty. cfg is untouched on error, leaving
// the static template as the fallback.
func Discover(ctx context.Context, cfg *params.TileSourceConfig, client *http.Client) error {
	if cfg.MetadataURL == "" {
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.MetadataURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("imagery metadata: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("imagery metadata: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("imagery metadata: %w", err)
	}

	resource := gjson.GetBytes(body, "resourceSets.0.resources.0")
	imageURL := resource.Get("imageUrl").String()
	if imageURL == "" {
		return fmt.Errorf("imagery metadata: no imageUrl in response")
	}
	subdomains := []string{}
	resource.Get("imageUrlSubdomains").ForEach(func(_, v gjson.Result) bool {
		subdomains = append(subdomains, v.String())
		return true
	})

	cfg.URLTemplate = strings.NewReplacer(
		"{quadkey}", "{q}",
		"{subdomain}", "{s}",
	).Replace(imageURL)
	if len(subdomains) > 0 {
		cfg.Subdomains = subdomains
	}
	slog.Info("Discovered imagery endpoint", "url", cfg.URLTemplate, "subdomains", len(cfg.Subdomains))
	return nil
}
