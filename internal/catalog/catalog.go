// Package catalog reads the lookup lists (themes, fonts) used when creating events.
package catalog

import (
	"context"
	"net/http"
	"slices"

	"event-admin-console/internal/apiclient"
)

const (
	themesPath = "/api/Common/getAllThemeSelections"
	fontsPath  = "/api/Common/getAllFontsStyles"
)

// ThemeSelection is a colour theme an event can use.
type ThemeSelection struct {
	ID           int     `json:"id"`
	Label        string  `json:"label"`
	Color        string  `json:"color"`
	IsActive     bool    `json:"isActive"`
	CreatedBy    string  `json:"createdBy"`
	CreatedDate  string  `json:"createdDate"`
	ModifiedDate *string `json:"modifiedDate"`
	ModifiedBy   *string `json:"modifiedBy"`
}

// FontStyle is a font family an event can use.
type FontStyle struct {
	ID           int     `json:"id"`
	Label        string  `json:"label"`
	FontFamily   string  `json:"fontFamily"`
	ClassName    string  `json:"className"`
	IsActive     bool    `json:"isActive"`
	CreatedBy    int     `json:"createdBy"`
	CreatedDate  string  `json:"createdDate"`
	ModifiedBy   *int    `json:"modifiedBy"`
	ModifiedDate *string `json:"modifiedDate"`
}

// Client reads the catalog through the API client.
type Client struct {
	api *apiclient.Client
}

// New returns a catalog client.
func New(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// ThemeSelections returns all themes. With activeOnly, inactive ones are dropped.
func (c *Client) ThemeSelections(ctx context.Context, activeOnly bool) ([]ThemeSelection, error) {
	themes, err := apiclient.Call[[]ThemeSelection](ctx, c.api, apiclient.Request{Method: http.MethodGet, Path: themesPath})
	if err != nil {
		return nil, err
	}
	if activeOnly {
		themes = slices.DeleteFunc(themes, func(t ThemeSelection) bool { return !t.IsActive })
	}
	return themes, nil
}

// FontStyles returns all fonts. With activeOnly, inactive ones are dropped.
func (c *Client) FontStyles(ctx context.Context, activeOnly bool) ([]FontStyle, error) {
	fonts, err := apiclient.Call[[]FontStyle](ctx, c.api, apiclient.Request{Method: http.MethodGet, Path: fontsPath})
	if err != nil {
		return nil, err
	}
	if activeOnly {
		fonts = slices.DeleteFunc(fonts, func(f FontStyle) bool { return !f.IsActive })
	}
	return fonts, nil
}
