package info

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/openclimatefix/nowcasting-api/internal/jsonutil"
)

// RedocConfig parameterises the themed ReDoc documentation page. Rendering
// is a pure function of this configuration: identical configs produce
// byte-identical HTML.
type RedocConfig struct {
	OpenAPIURL      string
	Title           string
	RedocJSURL      string
	FaviconURL      string
	WithGoogleFonts bool
	Theme           RedocTheme
}

// DefaultRedocConfig returns the Nowcasting documentation page settings.
func DefaultRedocConfig() RedocConfig {
	return RedocConfig{
		OpenAPIURL:      "./openapi.json",
		Title:           Title,
		RedocJSURL:      "https://cdn.jsdelivr.net/npm/redoc@next/bundles/redoc.standalone.js",
		FaviconURL:      "/favicon.png",
		WithGoogleFonts: true,
		Theme:           DefaultRedocTheme(),
	}
}

// RedocTheme mirrors ReDoc's theme options; only the settings the
// Nowcasting palette uses are modelled.
type RedocTheme struct {
	Colors     ThemeColors     `json:"colors"`
	Typography ThemeTypography `json:"typography"`
	Sidebar    ThemeSidebar    `json:"sidebar"`
	Logo       ThemeLogo       `json:"logo"`
	RightPanel ThemeRightPanel `json:"rightPanel"`
}

type ThemeColors struct {
	Primary ThemeColor      `json:"primary"`
	Success ThemeColor      `json:"success"`
	Text    ThemeTextColors `json:"text"`
	HTTP    ThemeHTTPColors `json:"http"`
}

type ThemeColor struct {
	Main         string `json:"main,omitempty"`
	Light        string `json:"light,omitempty"`
	Dark         string `json:"dark,omitempty"`
	ContrastText string `json:"contrastText,omitempty"`
}

type ThemeTextColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

type ThemeHTTPColors struct {
	Get    string `json:"get"`
	Post   string `json:"post"`
	Put    string `json:"put"`
	Delete string `json:"delete"`
}

type ThemeTypography struct {
	FontSize   string        `json:"fontSize"`
	FontFamily string        `json:"fontFamily"`
	LineHeight string        `json:"lineHeight"`
	Headings   ThemeHeadings `json:"headings"`
	Code       ThemeCode     `json:"code"`
	Links      ThemeLinks    `json:"links"`
}

type ThemeHeadings struct {
	FontFamily string `json:"fontFamily"`
	FontWeight string `json:"fontWeight"`
	LineHeight string `json:"lineHeight"`
}

type ThemeCode struct {
	FontWeight string `json:"fontWeight"`
	Color      string `json:"color"`
	Wrap       bool   `json:"wrap"`
}

type ThemeLinks struct {
	Color   string `json:"color"`
	Visited string `json:"visited"`
	Hover   string `json:"hover"`
}

type ThemeSidebar struct {
	Width     string `json:"width"`
	TextColor string `json:"textColor"`
}

type ThemeLogo struct {
	Gutter string `json:"gutter"`
}

type ThemeRightPanel struct {
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
}

// DefaultRedocTheme returns the Nowcasting colour palette and typography.
func DefaultRedocTheme() RedocTheme {
	return RedocTheme{
		Colors: ThemeColors{
			Primary: ThemeColor{Main: "#f7ba17", Light: "#ffefc6"},
			Success: ThemeColor{
				Main:         "rgba(28, 184, 65, 1)",
				Light:        "#81ec9a",
				Dark:         "#083312",
				ContrastText: "#000",
			},
			Text: ThemeTextColors{Primary: "#14120e", Secondary: "#4d4d4d"},
			HTTP: ThemeHTTPColors{
				Get:    "#f7ba17",
				Post:   "rgba(28, 184, 65, 1)",
				Put:    "rgba(255, 187, 0, 1)",
				Delete: "rgba(254, 39, 35, 1)",
			},
		},
		Typography: ThemeTypography{
			FontSize:   "15px",
			FontFamily: "Inter, sans-serif",
			LineHeight: "1.5em",
			Headings: ThemeHeadings{
				FontFamily: "Inter, sans-serif",
				FontWeight: "bold",
				LineHeight: "1.5em",
			},
			Code: ThemeCode{
				FontWeight: "600",
				Color:      "rgba(92, 62, 189, 1)",
				Wrap:       true,
			},
			Links: ThemeLinks{
				Color:   "#086788",
				Visited: "#086788",
				Hover:   "#32343a",
			},
		},
		Sidebar:    ThemeSidebar{Width: "300px", TextColor: "#000000"},
		Logo:       ThemeLogo{Gutter: "10px"},
		RightPanel: ThemeRightPanel{BackgroundColor: "rgba(55, 53, 71, 1)", TextColor: "#ffffff"},
	}
}

var redocTemplate = template.Must(template.New("redoc").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}}</title>
<!-- needed for adaptive design -->
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1">
{{- if .WithGoogleFonts}}
<link href="https://fonts.googleapis.com/css?family=Inter:300,400,700" rel="stylesheet">
{{- end}}
<link rel="shortcut icon" href="{{.FaviconURL}}">
<!--
ReDoc doesn't change outer page styles
-->
<style>
  body {
    margin: 0;
    padding: 0;
  }
</style>
</head>
<body>
<div id="redoc-container"></div>
<noscript>
    ReDoc requires Javascript to function. Please enable it to browse the documentation.
</noscript>
<script src="{{.RedocJSURL}}"> </script>
<script>
    Redoc.init({{.OpenAPIURL}}, {{.Options}}, document.getElementById('redoc-container'))
</script>
</body>
</html>
`))

type redocTemplateData struct {
	Title           string
	FaviconURL      string
	RedocJSURL      template.URL
	OpenAPIURL      string
	WithGoogleFonts bool
	Options         template.JS
}

// RenderRedocHTML produces the documentation page for the given
// configuration. It performs no network calls; the ReDoc script fetches the
// schema client-side.
func RenderRedocHTML(cfg RedocConfig) ([]byte, error) {
	options, err := jsonutil.MarshalIndent(map[string]RedocTheme{"theme": cfg.Theme}, "        ", "    ")
	if err != nil {
		return nil, fmt.Errorf("serialise redoc theme: %w", err)
	}

	var buf bytes.Buffer
	err = redocTemplate.Execute(&buf, redocTemplateData{
		Title:           cfg.Title,
		FaviconURL:      cfg.FaviconURL,
		RedocJSURL:      template.URL(cfg.RedocJSURL),
		OpenAPIURL:      cfg.OpenAPIURL,
		WithGoogleFonts: cfg.WithGoogleFonts,
		Options:         template.JS(options),
	})
	if err != nil {
		return nil, fmt.Errorf("render redoc page: %w", err)
	}
	return buf.Bytes(), nil
}
