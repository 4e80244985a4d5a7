package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/declarr/declarr/internal/remotemap"
)

// Newznab/Torznab TV category numbers by name. Categories are declared by
// name in config and sent to the instance as numbers.
var nabCategories = map[string]int{
	"TV":             5000,
	"TV/WEB-DL":      5010,
	"TV/Foreign":     5020,
	"TV/SD":          5030,
	"TV/HD":          5040,
	"TV/UHD":         5045,
	"TV/Other":       5050,
	"TV/Sport":       5060,
	"TV/Anime":       5070,
	"TV/Documentary": 5080,
	"TV/x265":        5090,
}

// Alternate spellings accepted on input for compatibility with older
// configs: the plural Sport form and the enum-style names.
var nabCategoryAliases = map[string]int{
	"TV/Sports":      5060,
	"TV":             5000,
	"TV_WEBDL":       5010,
	"TV_FOREIGN":     5020,
	"TV_SD":          5030,
	"TV_HD":          5040,
	"TV_UHD":         5045,
	"TV_OTHER":       5050,
	"TV_SPORT":       5060,
	"TV_ANIME":       5070,
	"TV_DOCUMENTARY": 5080,
	"TV_X265":        5090,
}

var nabCategoryNames = func() map[int]string {
	names := make(map[int]string, len(nabCategories))
	for name, number := range nabCategories {
		names[number] = name
	}
	return names
}()

// categoriesField maps a local category name list onto a numeric remote
// field. Unknown names are rejected; unknown numbers coming back from the
// instance are kept as their decimal form so they round-trip.
func categoriesField(local, remote string) remotemap.Entry {
	return remotemap.Entry{
		Local:      local,
		Remote:     remote,
		IsField:    true,
		Set:        true,
		HasDefault: true,
		Default:    []any{},
		Encoder: func(v any) (any, error) {
			names, err := toStringSlice(v)
			if err != nil {
				return nil, err
			}
			numbers := make([]int, 0, len(names))
			for _, name := range names {
				number, err := nabCategoryNumber(name)
				if err != nil {
					return nil, err
				}
				numbers = append(numbers, number)
			}
			sort.Ints(numbers)
			return numbers, nil
		},
		Decoder: func(v any) (any, error) {
			numbers, err := toIntSlice(v)
			if err != nil {
				return nil, err
			}
			names := make([]string, 0, len(numbers))
			for _, number := range numbers {
				name, ok := nabCategoryNames[number]
				if !ok {
					name = fmt.Sprintf("%d", number)
				}
				names = append(names, name)
			}
			sort.Strings(names)
			return names, nil
		},
	}
}

func nabCategoryNumber(name string) (int, error) {
	if number, ok := nabCategories[name]; ok {
		return number, nil
	}
	if number, ok := nabCategoryAliases[name]; ok {
		return number, nil
	}
	// Enum-style names also tolerate hyphens, spaces and lower case.
	normalized := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(name))
	if number, ok := nabCategoryAliases[normalized]; ok {
		return number, nil
	}
	// Raw category numbers are accepted as-is.
	var n int
	if _, err := fmt.Sscanf(name, "%d", &n); err == nil {
		return n, nil
	}
	return 0, &remotemap.ConfigError{
		Message: fmt.Sprintf("unknown Newznab category %q", name),
	}
}
