package templates

// LandingPageData contains the dynamic values rendered on the landing page.
type LandingPageData struct {
	TotalPages int64
	TotalViews int64
}

// ErrorPageData holds information for rendering an error view.
type ErrorPageData struct {
	Title       string
	StatusLabel string
	Message     string
}
