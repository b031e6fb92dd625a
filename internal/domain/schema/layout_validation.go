package schema

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/lendingops/backend/pkg/errors"
	"github.com/lendingops/backend/pkg/utils"
)

var componentWidths = map[ComponentWidth]struct{}{
	WidthFull: {}, WidthHalf: {}, WidthThird: {}, WidthTwoThirds: {},
}

// PrepareLayout validates a layout against its table and assigns identifiers
// to the layout and any section or component that lacks one.
func PrepareLayout(table *TableDefinition, req CreateLayoutRequest) (*TableLayout, error) {
	label := strings.TrimSpace(req.Label)
	if strings.TrimSpace(req.Name) == "" && label == "" {
		return nil, apperrors.NewValidationError("name", "layout name is required")
	}
	name := Normalize(req.Name)
	if name == "" {
		name = Normalize(label)
	}
	if label == "" {
		label = req.Name
	}

	for si, section := range req.Sections {
		if section == nil {
			return nil, apperrors.NewValidationError("sections", fmt.Sprintf("section %d is empty", si))
		}
		if section.ID == "" {
			section.ID = utils.GenerateID()
		}
		if section.Columns == 0 {
			section.Columns = 1
		}
		if section.Columns < 1 || section.Columns > maxSectionColumns {
			return nil, apperrors.NewValidationError("sections", fmt.Sprintf("section %q must have 1 to 3 columns", section.Title))
		}
		for _, c := range section.Components {
			if err := checkComponent(table, c); err != nil {
				return nil, err
			}
			if c.ID == "" {
				c.ID = utils.GenerateID()
			}
		}
	}

	now := time.Now().UTC()
	sections := req.Sections
	if sections == nil {
		sections = []*LayoutSection{}
	}
	return &TableLayout{
		ID:        utils.GenerateID(),
		TableID:   table.ID,
		Name:      name,
		Label:     label,
		IsDefault: req.IsDefault,
		Sections:  sections,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func checkComponent(table *TableDefinition, c *LayoutComponent) error {
	if c == nil {
		return apperrors.NewValidationError("components", "component is empty")
	}
	if c.Width == "" {
		c.Width = WidthFull
	}
	if _, ok := componentWidths[c.Width]; !ok {
		return apperrors.NewValidationError("components", fmt.Sprintf("unknown component width %q", c.Width))
	}

	switch c.Type {
	case ComponentField:
		if _, ok := table.FieldByID(c.FieldID); !ok {
			if _, byName := table.Field(c.FieldID); !byName {
				return apperrors.NewValidationError("components", fmt.Sprintf("field %q does not belong to table %s", c.FieldID, table.Name))
			}
		}
	case ComponentRelatedList:
		if c.RelatedTableID == "" {
			return apperrors.NewValidationError("components", "related_list components need relatedTableId")
		}
	case ComponentWidget:
		if c.WidgetID == "" {
			return apperrors.NewValidationError("components", "widget components need widgetId")
		}
	case ComponentCustom:
		if c.CustomComponent == "" {
			return apperrors.NewValidationError("components", "custom components need customComponent")
		}
	default:
		return apperrors.NewValidationError("components", fmt.Sprintf("unknown component type %q", c.Type))
	}
	return nil
}
