package dataverse

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

const entitySelect = "MetadataId,LogicalName,SchemaName,DisplayName,Description,IsCustomEntity,OwnershipType"
const attributeSelect = "MetadataId,LogicalName,SchemaName,DisplayName,Description,AttributeType,RequiredLevel,IsCustomAttribute"

// label is the localized label envelope the metadata endpoints wrap display
// strings in.
type label struct {
	UserLocalizedLabel *struct {
		Label string `json:"Label"`
	} `json:"UserLocalizedLabel"`
}

func (l label) text() string {
	if l.UserLocalizedLabel == nil {
		return ""
	}
	return l.UserLocalizedLabel.Label
}

type attributeRow struct {
	MetadataID    string `json:"MetadataId"`
	LogicalName   string `json:"LogicalName"`
	SchemaName    string `json:"SchemaName"`
	DisplayName   label  `json:"DisplayName"`
	Description   label  `json:"Description"`
	AttributeType string `json:"AttributeType"`
	RequiredLevel *struct {
		Value string `json:"Value"`
	} `json:"RequiredLevel"`
	IsCustom bool `json:"IsCustomAttribute"`
}

type entityRow struct {
	MetadataID  string         `json:"MetadataId"`
	LogicalName string         `json:"LogicalName"`
	SchemaName  string         `json:"SchemaName"`
	DisplayName label          `json:"DisplayName"`
	Description label          `json:"Description"`
	IsCustom    bool           `json:"IsCustomEntity"`
	Ownership   string         `json:"OwnershipType"`
	Attributes  []attributeRow `json:"Attributes"`
}

func (row entityRow) toEntity() *blueprint.EntityBlueprint {
	e := &blueprint.EntityBlueprint{
		MetadataID:  row.MetadataID,
		LogicalName: row.LogicalName,
		DisplayName: row.DisplayName.text(),
		SchemaName:  row.SchemaName,
		Description: row.Description.text(),
		IsCustom:    row.IsCustom,
		Ownership:   row.Ownership,
		Attributes:  make([]blueprint.Attribute, 0, len(row.Attributes)),
	}
	if e.DisplayName == "" {
		e.DisplayName = row.LogicalName
	}
	for _, attr := range row.Attributes {
		e.Attributes = append(e.Attributes, attr.toAttribute())
	}
	return e
}

func (row attributeRow) toAttribute() blueprint.Attribute {
	a := blueprint.Attribute{
		MetadataID:  row.MetadataID,
		LogicalName: row.LogicalName,
		SchemaName:  row.SchemaName,
		DisplayName: row.DisplayName.text(),
		Type:        row.AttributeType,
		IsCustom:    row.IsCustom,
		Description: row.Description.text(),
	}
	if a.DisplayName == "" {
		a.DisplayName = row.LogicalName
	}
	if row.RequiredLevel != nil {
		a.RequiredLevel = row.RequiredLevel.Value
	}
	return a
}

// ListEntities resolves entity component ids into basic records. The
// metadata endpoint has no batched id filter, so ids resolve one request at
// a time.
func (c *WebAPIClient) ListEntities(ctx context.Context, ids []string) ([]*blueprint.EntityBlueprint, error) {
	out := make([]*blueprint.EntityBlueprint, 0, len(ids))
	for _, id := range ids {
		var row entityRow
		u := fmt.Sprintf("%s/EntityDefinitions(%s)?$select=%s", c.base, id, entitySelect)
		if err := c.get(ctx, u, &row); err != nil {
			return nil, fmt.Errorf("failed to fetch entity %s: %w", id, err)
		}
		out = append(out, row.toEntity())
	}
	return out, nil
}

// GetEntitySchema fetches one entity's schema with its full attribute list.
func (c *WebAPIClient) GetEntitySchema(ctx context.Context, logicalName string) (*blueprint.EntityBlueprint, error) {
	q := url.Values{}
	q.Set("$select", entitySelect)
	q.Set("$expand", "Attributes($select="+attributeSelect+")")
	u := fmt.Sprintf("%s/EntityDefinitions(LogicalName='%s')?%s", c.base, logicalName, q.Encode())

	var row entityRow
	if err := c.get(ctx, u, &row); err != nil {
		return nil, fmt.Errorf("failed to fetch schema of %s: %w", logicalName, err)
	}
	return row.toEntity(), nil
}
