package catalog

import (
	"strings"
)

const (
	normalTemplate = "{name}, {description}, professional food photography, studio lighting, high quality, ultra realistic, appetizing, commercial photography, 4k, centered composition, clean background"
	crossTemplate  = "{name} cross-section showing inside layers and ingredients, {description}, professional food photography, studio lighting, high quality, ultra realistic, appetizing, commercial photography, 4k, centered composition"
)

// ComposePrompt builds the text prompt for one view of an item. The result
// always contains the item name.
func ComposePrompt(item MenuItem, view ViewKind) string {
	explicit := item.Prompt

	if view == ViewCross {
		explicit = item.CrossPrompt
	}

	if explicit != "" {
		if strings.Contains(explicit, item.Name) {
			return explicit
		}

		return item.Name + ", " + explicit
	}

	template := normalTemplate

	if view == ViewCross {
		template = crossTemplate
	}

	description := strings.TrimSpace(item.Description)

	if description == "" {
		template = strings.Replace(template, ", {description}", "", 1)
	}

	r := strings.NewReplacer(
		"{name}", item.Name,
		"{description}", description,
	)

	return r.Replace(template)
}
