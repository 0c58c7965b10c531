package dataverse

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// webResourceTypeNames maps the file type code of a web resource to its
// display name.
var webResourceTypeNames = map[int]string{
	1:  "HTML",
	2:  "CSS",
	3:  "JavaScript",
	4:  "XML",
	5:  "PNG",
	6:  "JPG",
	7:  "GIF",
	8:  "Silverlight",
	9:  "XSL",
	10: "ICO",
	11: "SVG",
	12: "RESX",
}

// formTypeNames maps the form type code of an entity form to its display
// name.
var formTypeNames = map[int]string{
	2:  "Main",
	6:  "Quick View",
	7:  "Quick Create",
	11: "Card",
}

type webResourceRow struct {
	ID          string `json:"webresourceid"`
	Name        string `json:"name"`
	DisplayName string `json:"displayname"`
	Description string `json:"description"`
	Type        int    `json:"webresourcetype"`
}

type formRow struct {
	ID          string `json:"formid"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        int    `json:"type"`
}

// ListWebResources resolves file ids into full records.
func (c *WebAPIClient) ListWebResources(ctx context.Context, ids []string) ([]blueprint.WebResource, error) {
	selects := "webresourceid,name,displayname,description,webresourcetype"
	rows, err := listByIDs[webResourceRow](ctx, c, "webresourceset", "webresourceid", selects, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch web resources: %w", err)
	}
	out := make([]blueprint.WebResource, 0, len(rows))
	for _, row := range rows {
		typeName, ok := webResourceTypeNames[row.Type]
		if !ok {
			typeName = "Other"
		}
		out = append(out, blueprint.WebResource{
			ID:          row.ID,
			Name:        row.Name,
			DisplayName: row.DisplayName,
			Type:        typeName,
			Description: row.Description,
		})
	}
	return out, nil
}

// ListEntityForms fetches the active forms registered for one entity.
func (c *WebAPIClient) ListEntityForms(ctx context.Context, logicalName string) ([]blueprint.Form, error) {
	q := url.Values{}
	q.Set("$select", "formid,name,description,type")
	q.Set("$filter", fmt.Sprintf("objecttypecode eq '%s' and formactivationstate eq 1", strings.ToLower(logicalName)))

	rows, err := listAll[formRow](ctx, c, c.collection("systemforms", q))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forms of %s: %w", logicalName, err)
	}
	out := make([]blueprint.Form, 0, len(rows))
	for _, row := range rows {
		typeName, ok := formTypeNames[row.Type]
		if !ok {
			typeName = "Other"
		}
		out = append(out, blueprint.Form{
			ID:          row.ID,
			Name:        row.Name,
			Type:        typeName,
			Entity:      strings.ToLower(logicalName),
			Description: row.Description,
		})
	}
	return out, nil
}
