package site

import "encoding/json"

// WebManifest is the web application manifest of the viewer.
type WebManifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	Description     string `json:"description,omitempty"`
	Lang            string `json:"lang"`
	StartURL        string `json:"start_url"`
	Scope           string `json:"scope"`
	Display         string `json:"display"`
	BackgroundColor string `json:"background_color"`
	ThemeColor      string `json:"theme_color"`
}

// WebManifest describes the viewer installed at startURL.
func (s *Site) WebManifest(startURL string) WebManifest {
	return WebManifest{
		Name:            s.doc.Title,
		ShortName:       "EMS",
		Description:     s.doc.Subtitle,
		Lang:            "zh-Hant",
		StartURL:        startURL,
		Scope:           startURL,
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#cf222e",
	}
}

// JSON encodes the manifest.
func (m WebManifest) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
