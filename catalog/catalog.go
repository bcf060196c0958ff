// Package catalog holds the categories, tools and suggestions listed by
// the website along with the rules their inputs must follow.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andrebq/toolshelf/internal/valid"
)

type (
	Category struct {
		ID          int64     `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Slug        string    `json:"slug"`
		IconName    string    `json:"iconName"`
		Color       string    `json:"color"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	CategorySummary struct {
		Category
		ToolCount int64 `json:"toolCount"`
	}

	Tool struct {
		ID          int64     `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		IconName    *string   `json:"iconName"`
		IconURL     *string   `json:"iconUrl"`
		CategoryID  int64     `json:"categoryId"`
		Popular     bool      `json:"popular"`
		IsNew       bool      `json:"isNew"`
		CreatedAt   time.Time `json:"createdAt"`
		Category    *Category `json:"category,omitempty"`
	}

	Suggestion struct {
		ID             int64     `json:"id"`
		Name           string    `json:"name"`
		Description    string    `json:"description"`
		URL            string    `json:"url"`
		CategoryID     int64     `json:"categoryId"`
		SubmitterEmail *string   `json:"submitterEmail"`
		Status         string    `json:"status"`
		CreatedAt      time.Time `json:"createdAt"`
	}

	NewCategory struct {
		Name        string `json:"name" validate:"required,min=2"`
		Description string `json:"description" validate:"required,min=5"`
		Slug        string `json:"slug" validate:"required,min=2"`
		IconName    string `json:"iconName" validate:"required,min=2"`
		Color       string `json:"color" validate:"required,min=2"`
	}

	NewTool struct {
		Name        string `json:"name" validate:"required,min=2"`
		Description string `json:"description" validate:"required,min=5"`
		URL         string `json:"url" validate:"required,url"`
		IconName    string `json:"iconName" validate:"required_without=IconURL"`
		IconURL     string `json:"iconUrl"`
		CategoryID  int64  `json:"categoryId" validate:"required,gt=0"`
		Popular     bool   `json:"popular"`
		IsNew       bool   `json:"isNew"`
	}

	NewSuggestion struct {
		Name           string `json:"name" validate:"required,min=2"`
		Description    string `json:"description" validate:"required,min=5"`
		URL            string `json:"url" validate:"required,url"`
		CategoryID     int64  `json:"categoryId" validate:"required,gt=0"`
		SubmitterEmail string `json:"submitterEmail" validate:"omitempty,email"`
	}

	// Store is the persistence needed by the catalog endpoints.
	Store interface {
		CategorySummaries(ctx context.Context) ([]CategorySummary, error)
		CategoryBySlug(ctx context.Context, slug string) (Category, error)
		ToolsByCategory(ctx context.Context, categoryID int64) ([]Tool, error)
		Tools(ctx context.Context) ([]Tool, error)
		PopularTools(ctx context.Context, limit int) ([]Tool, error)
		NewTools(ctx context.Context, limit int) ([]Tool, error)
		SearchTools(ctx context.Context, term string) ([]Tool, error)
		CreateTool(ctx context.Context, t NewTool) (Tool, error)
		CreateSuggestion(ctx context.Context, s NewSuggestion) (Suggestion, error)
	}

	ValidationError struct {
		Message string
		Fields  []valid.FieldError
	}
)

const (
	DefaultPopularLimit = 6
	DefaultNewLimit     = 3
	StatusPending       = "pending"
	FallbackIcon        = "wrench"
)

var (
	ErrCategoryNotFound = errors.New("catalog: category not found")
)

func (v ValidationError) Error() string {
	parts := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		parts = append(parts, fmt.Sprintf("%v: %v", f.Field, f.Message))
	}
	return fmt.Sprintf("%v (%v)", v.Message, strings.Join(parts, ", "))
}

// UnknownCategory is returned when categoryID does not match any category.
func UnknownCategory(msg string) ValidationError {
	return ValidationError{Message: msg, Fields: []valid.FieldError{{Field: "categoryId", Message: "must reference an existing category"}}}
}

func (n *NewCategory) Validate() error {
	n.Name = strings.TrimSpace(n.Name)
	n.Slug = strings.TrimSpace(n.Slug)
	return check("Invalid category data", n)
}

func (n *NewTool) Validate() error {
	n.Name = strings.TrimSpace(n.Name)
	n.URL = strings.TrimSpace(n.URL)
	return check("Invalid tool data", n)
}

func (n *NewSuggestion) Validate() error {
	n.Name = strings.TrimSpace(n.Name)
	n.URL = strings.TrimSpace(n.URL)
	n.SubmitterEmail = strings.TrimSpace(n.SubmitterEmail)
	return check("Invalid tool suggestion data", n)
}

func check(msg string, v interface{}) error {
	fields := valid.Struct(v)
	if len(fields) == 0 {
		return nil
	}
	return ValidationError{Message: msg, Fields: fields}
}
