package domain

import (
	"regexp"
	"strings"
)

// Category groups menu items
type Category struct {
	ID    int64
	Slug  string
	Title string
}

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// NewCategory creates a validated category
func NewCategory(slug, title string) (*Category, error) {
	c := &Category{
		Slug:  strings.TrimSpace(slug),
		Title: strings.TrimSpace(title),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate applies the category field rules
func (c *Category) Validate() error {
	if c.Slug == "" {
		return NewValidationError("slug", "slug is required")
	}
	if len(c.Slug) > 255 || !slugRegex.MatchString(c.Slug) {
		return NewValidationError("slug", "slug must consist of lowercase letters, digits and single hyphens")
	}
	if c.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if len(c.Title) > 255 {
		return NewValidationError("title", "title must not exceed 255 characters")
	}
	return nil
}
