package library

import (
	"fmt"
	"strings"

	"ogre/feature/library/models"
)

// SelectBestFormat picks the file to serve from versions, which must be in
// rank order. versionID zero and format "" mean unspecified.
//
// Preference is the explicit format alone, otherwise the user's preferred
// format followed by defaults, otherwise defaults. Only uploaded formats are
// ever returned.
func SelectBestFormat(versions []models.Version, versionID uint, format, preferred string, defaults []string) (*models.Version, *models.Format, error) {
	format = strings.ToLower(format)

	version, err := resolveVersion(versions, versionID, format)
	if err != nil {
		return nil, nil, err
	}

	for _, want := range preferenceOrder(format, strings.ToLower(preferred), defaults) {
		if f := uploadedFormat(version, want); f != nil {
			return version, f, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: version %d has none of the requested formats", ErrNoFormatAvailable, version.ID)
}

func resolveVersion(versions []models.Version, versionID uint, format string) (*models.Version, error) {
	switch {
	case versionID != 0:
		for i := range versions {
			if versions[i].ID == versionID {
				return &versions[i], nil
			}
		}
		return nil, fmt.Errorf("%w: version %d not found", ErrNoFormatAvailable, versionID)
	case format != "":
		for i := range versions {
			if uploadedFormat(&versions[i], format) != nil {
				return &versions[i], nil
			}
		}
		return nil, fmt.Errorf("%w: no uploaded %s", ErrNoFormatAvailable, format)
	case len(versions) > 0:
		return &versions[0], nil
	default:
		return nil, fmt.Errorf("%w: ebook has no versions", ErrNoFormatAvailable)
	}
}

func preferenceOrder(format, preferred string, defaults []string) []string {
	if format != "" {
		return []string{format}
	}
	if preferred == "" {
		return defaults
	}
	order := []string{preferred}
	for _, d := range defaults {
		if d != preferred {
			order = append(order, d)
		}
	}
	return order
}

func uploadedFormat(v *models.Version, format string) *models.Format {
	for i := range v.Formats {
		if v.Formats[i].Uploaded && strings.EqualFold(v.Formats[i].Format, format) {
			return &v.Formats[i]
		}
	}
	return nil
}
