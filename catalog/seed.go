package catalog

type (
	// Seed is the initial content of an empty catalog.
	Seed struct {
		Categories []SeedCategory
	}

	SeedCategory struct {
		NewCategory
		Tools []SeedTool
	}

	SeedTool struct {
		Name        string
		Description string
		URL         string
		IconName    string
		IconURL     string
		Popular     bool
		IsNew       bool
	}
)

// Validate checks every category and tool of the seed.
func (s *Seed) Validate() error {
	for i := range s.Categories {
		c := &s.Categories[i]
		if err := c.NewCategory.Validate(); err != nil {
			return err
		}
		for _, t := range c.Tools {
			nt := t.NewTool(1)
			if err := nt.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t SeedTool) NewTool(categoryID int64) NewTool {
	icon := t.IconName
	if icon == "" && t.IconURL == "" {
		icon = FallbackIcon
	}
	return NewTool{
		Name:        t.Name,
		Description: t.Description,
		URL:         t.URL,
		IconName:    icon,
		IconURL:     t.IconURL,
		CategoryID:  categoryID,
		Popular:     t.Popular,
		IsNew:       t.IsNew,
	}
}
