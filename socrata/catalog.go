// socrata/catalog.go
package socrata

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/citydesk/lapdcalls/config"
	"github.com/tidwall/gjson"
)

// CheckDatasetFreshness asks the Socrata catalog API when the given dataset
// was last updated by the publishing authority. The update scheduler uses the
// returned timestamp to decide whether a refresh is worthwhile.
func CheckDatasetFreshness(endpoint string) (time.Time, error) {
	catalogURL := config.AppConfig.Portal.CatalogURL
	if catalogURL == "" {
		return time.Time{}, fmt.Errorf("portal catalog URL is not configured")
	}

	params := url.Values{}
	params.Set("domains", config.AppConfig.Portal.Domain)
	params.Set("ids", endpoint)

	req, err := http.NewRequest(http.MethodGet, catalogURL+"?"+params.Encode(), nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build catalog request: %w", err)
	}
	if token := config.AppConfig.Portal.AppToken; token != "" {
		req.Header.Set("X-App-Token", token)
	}

	client := newHTTPClient()
	resp, err := client.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query catalog for %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("catalog query for %s: received status code %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read catalog response: %w", err)
	}

	updatedAt := gjson.GetBytes(body, "results.0.resource.updatedAt")
	if !updatedAt.Exists() {
		return time.Time{}, fmt.Errorf("could not find dataset %s in catalog response", endpoint)
	}

	ts, err := time.Parse(time.RFC3339, updatedAt.String())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse catalog updatedAt %q: %w", updatedAt.String(), err)
	}

	log.Printf("Fetcher: Dataset %s last updated upstream: %s\n", endpoint, ts.Format("2006-01-02 15:04:05"))
	return ts, nil
}
