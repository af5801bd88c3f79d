package aggregate

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
)

// Category is a severity class: Key matches upstream records, Name is shown in labels.
type Category struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

// DefaultCategories is the fixed severity order used by the dashboard.
var DefaultCategories = []Category{
	{Key: "Baixa", Name: "Low"},
	{Key: "Média", Name: "Medium"},
	{Key: "Alta", Name: "High"},
}

var (
	// ErrNoCategories is returned when the category list is empty.
	ErrNoCategories = errors.New("categories: at least one category is required")
	// ErrInvalidCategory is returned for an empty or duplicate key.
	ErrInvalidCategory = errors.New("categories: invalid category")
)

// Categories is a validated, ordered severity category list.
type Categories struct {
	list []Category
}

// NewCategories validates an ordered category list. A missing Name falls back to the Key.
func NewCategories(list []Category) (Categories, error) {
	if len(list) == 0 {
		return Categories{}, ErrNoCategories
	}

	seen := make(map[string]bool, len(list))
	out := make([]Category, len(list))
	for i, c := range list {
		// Keys are compared in NFC so "Média" matches regardless of encoding.
		c.Key = norm.NFC.String(strings.TrimSpace(c.Key))
		if c.Key == "" {
			return Categories{}, fmt.Errorf("%w: empty key at position %d", ErrInvalidCategory, i)
		}
		if seen[c.Key] {
			return Categories{}, fmt.Errorf("%w: duplicate key %q", ErrInvalidCategory, c.Key)
		}
		seen[c.Key] = true
		if c.Name == "" {
			c.Name = c.Key
		}
		out[i] = c
	}

	return Categories{list: out}, nil
}

// MustCategories is like NewCategories but panics on invalid input.
func MustCategories(list []Category) Categories {
	c, err := NewCategories(list)
	if err != nil {
		panic(err)
	}
	return c
}

// List returns a copy of the categories in display order.
func (c Categories) List() []Category {
	out := make([]Category, len(c.list))
	copy(out, c.list)
	return out
}

// Names returns the display names in order.
func (c Categories) Names() []string {
	names := make([]string, len(c.list))
	for i, cat := range c.list {
		names[i] = cat.Name
	}
	return names
}

// Average computes the mean wait, in hours, of each category in order.
// Categories without records average 0; unknown keys are ignored.
func (c Categories) Average(records []models.SeverityRecord) []models.CategoryAverage {
	sums := make(map[string]float64, len(c.list))
	counts := make(map[string]int, len(c.list))
	for _, r := range records {
		key := norm.NFC.String(strings.TrimSpace(r.Category))
		sums[key] += r.DurationMinutes
		counts[key]++
	}

	avgs := make([]models.CategoryAverage, len(c.list))
	for i, cat := range c.list {
		mean := 0.0
		if n := counts[cat.Key]; n > 0 {
			mean = sums[cat.Key] / float64(n)
		}
		avgs[i] = models.CategoryAverage{
			Key:   cat.Key,
			Name:  cat.Name,
			Hours: MinutesToHours(mean),
			Count: counts[cat.Key],
		}
	}
	return avgs
}

// Labels renders "{Name} ({duration})" for each average.
func Labels(avgs []models.CategoryAverage) []string {
	labels := make([]string, len(avgs))
	for i, a := range avgs {
		labels[i] = fmt.Sprintf("%s (%s)", a.Name, FormatDuration(a.Hours))
	}
	return labels
}

// Series averages the records and pairs the hours with formatted labels.
func (c Categories) Series(records []models.SeverityRecord) (models.ChartSeries, []models.CategoryAverage) {
	avgs := c.Average(records)
	values := make([]float64, len(avgs))
	for i, a := range avgs {
		values[i] = a.Hours
	}
	return models.ChartSeries{
		Labels: Labels(avgs),
		Values: values,
	}, avgs
}
