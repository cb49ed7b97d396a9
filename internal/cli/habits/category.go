package habits

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/cli"
)

type CategoryCmd struct {
	Add  CategoryAddCmd  `cmd:"" help:"Add a category to your palette."`
	List CategoryListCmd `cmd:"" help:"List your categories."`
}

type CategoryAddCmd struct {
	Name  string `arg:"" help:"Category name."`
	Color string `help:"Display color (#RRGGBB)." default:"#6366F1"`
}

func (c *CategoryAddCmd) Run(ctx *cli.Context) error {
	caller, err := ctx.Caller()
	if err != nil {
		return err
	}
	category, err := ctx.Tracker.CreateCategory(ctx.Ctx(), caller, c.Name, c.Color)
	if err != nil {
		return err
	}
	ctx.Printf("Added category: %s %s\n", swatch(category.Color), category.Name)
	return nil
}

type CategoryListCmd struct{}

func (c *CategoryListCmd) Run(ctx *cli.Context) error {
	caller, err := ctx.Caller()
	if err != nil {
		return err
	}
	categories, err := ctx.Tracker.ListCategories(ctx.Ctx(), caller)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		ctx.Println("No categories found.")
		return nil
	}
	for _, cat := range categories {
		ctx.Printf("%s %s  %s\n", swatch(cat.Color), cat.Name, mutedStyle.Render(cat.Color))
	}
	return nil
}

func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}
