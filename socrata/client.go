// socrata/client.go
package socrata

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/citydesk/lapdcalls/config"
)

// RawRow is one undecoded row as returned by the Socrata resource API.
// Socrata serves most column values as JSON strings, but numeric and nested
// values do occur, so rows are kept loosely typed until normalization.
type RawRow map[string]any

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: config.AppConfig.Portal.RequestTimeout}
}

// FetchDataset retrieves every row of one dataset partition by paginating the
// resource API with $limit/$offset until an empty page signals end-of-data.
// A partition is all-or-nothing: any page error fails the whole fetch so a
// partial partition never reaches the merge step.
func FetchDataset(ds config.DatasetConfig) ([]RawRow, error) {
	baseURL := fmt.Sprintf("https://%s/resource/%s.json", config.AppConfig.Portal.Domain, ds.Endpoint)
	pageSize := config.AppConfig.Portal.PageSize

	log.Printf("Fetcher: Fetching dataset %q (endpoint %s)...\n", ds.Name, ds.Endpoint)

	client := newHTTPClient()
	var allRows []RawRow
	offset := 0

	for {
		page, err := fetchPage(client, baseURL, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s at offset %d: %w", ds.Name, offset, err)
		}
		if len(page) == 0 {
			break
		}

		allRows = append(allRows, page...)
		offset += pageSize
		log.Printf("Fetcher:   Fetched %d records so far...\n", len(allRows))

		// Small delay between pages to be polite to the portal.
		time.Sleep(config.AppConfig.Portal.PageDelay)
	}

	log.Printf("Fetcher: Total records fetched for %q: %d\n", ds.Name, len(allRows))
	return allRows, nil
}

func fetchPage(client *http.Client, baseURL string, limit, offset int) ([]RawRow, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	params := url.Values{}
	params.Set("$limit", strconv.Itoa(limit))
	params.Set("$offset", strconv.Itoa(offset))
	req.URL.RawQuery = params.Encode()

	if token := config.AppConfig.Portal.AppToken; token != "" {
		req.Header.Set("X-App-Token", token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d from %s", resp.StatusCode, baseURL)
	}

	var page []RawRow
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	return page, nil
}
