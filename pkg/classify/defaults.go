package classify

// defaultCategories mirrors the template types the kit export tooling
// writes into template metadata.
var defaultCategories = []Category{
	{Key: "single-page", Title: "Single: Page"},
	{Key: "single-home", Title: "Single: Home"},
	{Key: "single-post", Title: "Single: Post"},
	{Key: "single-product", Title: "Single: Product"},
	{Key: "single-404", Title: "Single: 404"},
	{Key: "landing-page", Title: "Single: Landing Page"},
	{Key: "archive-blog", Title: "Archive: Blog"},
	{Key: "archive-product", Title: "Archive: Product"},
	{Key: "archive-search", Title: "Archive: Search"},
	{Key: "archive-category", Title: "Archive: Category"},
	{Key: "section-header", Title: "Header"},
	{Key: "section-footer", Title: "Footer"},
	{Key: "section-popup", Title: "Popup"},
	{Key: "section-hero", Title: "Hero"},
	{Key: "section-about", Title: "About"},
	{Key: "section-faq", Title: "FAQ"},
	{Key: "section-contact", Title: "Contact"},
	{Key: "section-cta", Title: "Call to Action"},
	{Key: "section-team", Title: "Team"},
	{Key: "section-map", Title: "Map"},
	{Key: "section-features", Title: "Features"},
	{Key: "section-pricing", Title: "Pricing"},
	{Key: "section-testimonial", Title: "Testimonial"},
	{Key: "section-product", Title: "Product"},
	{Key: "section-services", Title: "Services"},
	{Key: "section-stats", Title: "Stats"},
	{Key: "section-countdown", Title: "Countdown"},
	{Key: "section-portfolio", Title: "Portfolio"},
	{Key: "section-gallery", Title: "Gallery"},
	{Key: "section-logo-grid", Title: "Logo Grid"},
	{Key: "section-clients", Title: "Clients"},
	{Key: "section-other", Title: "Other"},
}

// DefaultTable returns the built-in category table.
func DefaultTable() Table {
	return NewTable(defaultCategories...)
}
