package schema

import "time"

// ComponentType enumerates what a layout component renders
type ComponentType string

const (
	ComponentField       ComponentType = "field"
	ComponentRelatedList ComponentType = "related_list"
	ComponentWidget      ComponentType = "widget"
	ComponentCustom      ComponentType = "custom"
)

// ComponentWidth is the share of a section row a component occupies
type ComponentWidth string

const (
	WidthFull      ComponentWidth = "full"
	WidthHalf      ComponentWidth = "1/2"
	WidthThird     ComponentWidth = "1/3"
	WidthTwoThirds ComponentWidth = "2/3"
)

const maxSectionColumns = 3

// TableLayout is presentational metadata for a table's record view
type TableLayout struct {
	ID        string           `json:"id"`
	TableID   string           `json:"tableId"`
	Name      string           `json:"name"`
	Label     string           `json:"displayName"`
	IsDefault bool             `json:"isDefault"`
	Sections  []*LayoutSection `json:"sections"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type LayoutSection struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Columns    int                `json:"columns"`
	Order      int                `json:"order"`
	Components []*LayoutComponent `json:"components"`
}

type LayoutComponent struct {
	ID              string         `json:"id"`
	Type            ComponentType  `json:"type"`
	Title           string         `json:"title,omitempty"`
	FieldID         string         `json:"fieldId,omitempty"`
	RelatedTableID  string         `json:"relatedTableId,omitempty"`
	WidgetID        string         `json:"widgetId,omitempty"`
	CustomComponent string         `json:"customComponent,omitempty"`
	Width           ComponentWidth `json:"width"`
	Order           int            `json:"order"`
	Settings        map[string]any `json:"settings,omitempty"`
}

// CreateLayoutRequest is the input to layout creation
type CreateLayoutRequest struct {
	Name      string           `json:"name"`
	Label     string           `json:"displayName"`
	IsDefault bool             `json:"isDefault"`
	Sections  []*LayoutSection `json:"sections"`
}
