package seed

import (
	"fmt"
	"sort"
	"strings"
)

// Presets are named demo sizes for local environments.
var Presets = map[string]Options{
	"minimal": {NumUsers: 6, NumPosts: 20, CommentsPerPost: 2, MaxDays: 7},
	"default": {NumUsers: 50, NumPosts: 200, CommentsPerPost: 4, MaxDays: 30},
	"busy":    {NumUsers: 300, NumPosts: 2000, CommentsPerPost: 8, MaxDays: 90, BatchSize: 250},
}

// Preset looks up a preset by case-insensitive name.
func Preset(name string) (Options, error) {
	opts, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		names := make([]string, 0, len(Presets))
		for n := range Presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return Options{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(names, ", "))
	}
	return opts, nil
}
