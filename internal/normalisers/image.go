package normalisers

import (
	"fmt"
	"strings"

	"github.com/crisislab/newsroom-core/internal/core/domain"
)

// ImageDescription resolves the display description for an image. The
// backend carries one comma-separated description list per image; the entry
// is picked by the image's upload index when present, else by array
// position, falling back to the first entry, the filename, and finally a
// generated label.
func ImageDescription(img domain.ImageRef, index int) string {
	if img.Description == "" {
		if img.Filename != "" {
			return img.Filename
		}
		if img.LegacyKey != "" {
			return img.LegacyKey
		}
		return fmt.Sprintf("Image %d", index+1)
	}

	parts := strings.Split(img.Description, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	pick := index
	if img.UploadIndex != nil {
		pick = *img.UploadIndex
	}
	if pick >= 0 && pick < len(parts) && parts[pick] != "" {
		return parts[pick]
	}
	if parts[0] != "" {
		return parts[0]
	}
	if img.Filename != "" {
		return img.Filename
	}
	return fmt.Sprintf("Image %d", index+1)
}
