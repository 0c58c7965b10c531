package dataverse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// apiPath is the versioned OData root under the environment URL.
const apiPath = "/api/data/v9.2"

// idFilterChunk bounds how many ids one filter expression carries before the
// query is split, keeping request URLs under the service's length limit.
const idFilterChunk = 25

// Config carries the connection settings of a WebAPIClient.
type Config struct {
	// URL is the environment root, e.g. https://org.crm.dynamics.com.
	URL          string
	TenantID     string
	ClientID     string
	ClientSecret string

	// HTTPClient overrides the OAuth2 client credentials transport.
	// Tests point it at a local stub server.
	HTTPClient *http.Client
}

// WebAPIClient implements MetadataClient against the environment's OData
// Web API.
type WebAPIClient struct {
	base string
	http *http.Client
}

var _ MetadataClient = (*WebAPIClient)(nil)

// NewWebAPIClient builds a client for the environment in cfg. Unless an
// HTTP client override is given, requests authenticate with OAuth2 client
// credentials against the environment's tenant.
func NewWebAPIClient(cfg Config) (*WebAPIClient, error) {
	root := strings.TrimRight(cfg.URL, "/")
	if root == "" {
		return nil, fmt.Errorf("environment url is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
			return nil, fmt.Errorf("tenant id, client id and client secret are required")
		}
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
			Scopes:       []string{root + "/.default"},
		}
		httpClient = cc.Client(context.Background())
	}

	return &WebAPIClient{base: root + apiPath, http: httpClient}, nil
}

// get issues one GET against an absolute URL and decodes the JSON body.
func (c *WebAPIClient) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to query metadata service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("metadata service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// collection builds the URL of a collection query under the OData root.
func (c *WebAPIClient) collection(name string, query url.Values) string {
	return c.base + "/" + name + "?" + query.Encode()
}

// listAll fetches every page of a collection query, following continuation
// links.
func listAll[T any](ctx context.Context, c *WebAPIClient, rawURL string) ([]T, error) {
	var out []T
	for rawURL != "" {
		var page struct {
			Value    []T    `json:"value"`
			NextLink string `json:"@odata.nextLink"`
		}
		if err := c.get(ctx, rawURL, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Value...)
		rawURL = page.NextLink
	}
	return out, nil
}

// listByIDs fetches full rows for an explicit id set, splitting the id
// filter into chunks.
func listByIDs[T any](ctx context.Context, c *WebAPIClient, name, idField, selects string, ids []string) ([]T, error) {
	var out []T
	for _, part := range chunkIDs(ids, idFilterChunk) {
		q := url.Values{}
		q.Set("$select", selects)
		q.Set("$filter", idFilter(idField, part))
		rows, err := listAll[T](ctx, c, c.collection(name, q))
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

func idFilter(field string, ids []string) string {
	terms := make([]string, len(ids))
	for i, id := range ids {
		terms[i] = fmt.Sprintf("%s eq %s", field, id)
	}
	return strings.Join(terms, " or ")
}

type componentSummaryRow struct {
	ObjectID    string `json:"msdyn_objectid"`
	LogicalName string `json:"msdyn_componentlogicalname"`
}

type publisherRow struct {
	ID string `json:"publisherid"`
}

type solutionRow struct {
	ID           string `json:"solutionid"`
	UniqueName   string `json:"uniquename"`
	FriendlyName string `json:"friendlyname"`
	Version      string `json:"version"`
	Publisher    *struct {
		FriendlyName string `json:"friendlyname"`
		Prefix       string `json:"customizationprefix"`
	} `json:"publisherid"`
}

// DiscoverInventory resolves the scope to its solution ids, then buckets
// every shipped component by category. Each category's id set is
// deduplicated across solutions and sorted.
func (c *WebAPIClient) DiscoverInventory(ctx context.Context, scope blueprint.Scope) (*blueprint.ComponentInventory, error) {
	solutionIDs := scope.SolutionIDs
	if scope.Kind == blueprint.ScopeKindPublisher {
		ids, err := c.solutionsByPrefix(ctx, scope.PublisherPrefix)
		if err != nil {
			return nil, err
		}
		solutionIDs = ids
	}

	sets := map[string]idSet{}
	for _, solutionID := range solutionIDs {
		q := url.Values{}
		q.Set("$select", "msdyn_objectid,msdyn_componentlogicalname")
		q.Set("$filter", fmt.Sprintf("msdyn_solutionid eq '%s'", solutionID))
		rows, err := listAll[componentSummaryRow](ctx, c, c.collection("msdyn_solutioncomponentsummaries", q))
		if err != nil {
			return nil, fmt.Errorf("failed to list components of solution %s: %w", solutionID, err)
		}
		for _, row := range rows {
			category, ok := componentCategories[strings.ToLower(row.LogicalName)]
			if !ok || row.ObjectID == "" {
				continue
			}
			if sets[category] == nil {
				sets[category] = idSet{}
			}
			sets[category].add(row.ObjectID)
		}
	}

	return &blueprint.ComponentInventory{
		Entities:             sets["entities"].sorted(),
		Attributes:           sets["attributes"].sorted(),
		PluginSteps:          sets["plugin_steps"].sorted(),
		Workflows:            sets["workflows"].sorted(),
		WebResources:         sets["web_resources"].sorted(),
		CustomOperations:     sets["custom_operations"].sorted(),
		EnvironmentVariables: sets["environment_variables"].sorted(),
		ConnectionReferences: sets["connection_references"].sorted(),
		ChoiceSets:           sets["choice_sets"].sorted(),
		Connectors:           sets["connectors"].sorted(),
		Pages:                sets["pages"].sorted(),
	}, nil
}

// componentCategories maps a solution component's logical name to its
// inventory category. Component kinds outside this table are not documented.
var componentCategories = map[string]string{
	"entity":                        "entities",
	"attribute":                     "attributes",
	"sdkmessageprocessingstep":      "plugin_steps",
	"workflow":                      "workflows",
	"webresource":                   "web_resources",
	"customapi":                     "custom_operations",
	"environmentvariabledefinition": "environment_variables",
	"connectionreference":           "connection_references",
	"optionset":                     "choice_sets",
	"connector":                     "connectors",
	"canvasapp":                     "pages",
	"appmodule":                     "pages",
}

func (c *WebAPIClient) solutionsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	q := url.Values{}
	q.Set("$select", "publisherid")
	q.Set("$filter", fmt.Sprintf("customizationprefix eq '%s'", strings.ToLower(prefix)))
	publishers, err := listAll[publisherRow](ctx, c, c.collection("publishers", q))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve publisher %q: %w", prefix, err)
	}
	if len(publishers) == 0 {
		return nil, fmt.Errorf("no publisher with prefix %q", prefix)
	}

	var ids []string
	for _, pub := range publishers {
		q := url.Values{}
		q.Set("$select", "solutionid")
		q.Set("$filter", fmt.Sprintf("_publisherid_value eq %s and isvisible eq true", pub.ID))
		solutions, err := listAll[solutionRow](ctx, c, c.collection("solutions", q))
		if err != nil {
			return nil, fmt.Errorf("failed to list solutions of publisher %q: %w", prefix, err)
		}
		for _, sol := range solutions {
			ids = append(ids, sol.ID)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("publisher %q owns no visible solutions", prefix)
	}
	return ids, nil
}

// ListSolutions lists the visible solutions of the environment, ordered by
// friendly name.
func (c *WebAPIClient) ListSolutions(ctx context.Context) ([]Solution, error) {
	q := url.Values{}
	q.Set("$select", "solutionid,uniquename,friendlyname,version")
	q.Set("$expand", "publisherid($select=friendlyname,customizationprefix)")
	q.Set("$filter", "isvisible eq true")
	q.Set("$orderby", "friendlyname asc")

	rows, err := listAll[solutionRow](ctx, c, c.collection("solutions", q))
	if err != nil {
		return nil, fmt.Errorf("failed to list solutions: %w", err)
	}
	out := make([]Solution, 0, len(rows))
	for _, row := range rows {
		sol := Solution{
			ID:           row.ID,
			UniqueName:   row.UniqueName,
			FriendlyName: row.FriendlyName,
			Version:      row.Version,
		}
		if row.Publisher != nil {
			sol.Publisher = row.Publisher.FriendlyName
			sol.Prefix = row.Publisher.Prefix
		}
		out = append(out, sol)
	}
	return out, nil
}

type idSet map[string]struct{}

func (s idSet) add(id string) { s[id] = struct{}{} }

func (s idSet) sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
