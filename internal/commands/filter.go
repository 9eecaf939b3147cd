package commands

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Filterer ranks listed rows against a search term. The term may carry
// `category:` and `author:` tags that restrict which rows are considered.
type Filterer struct {
	Categories []string
	Authors    []string
	Term       string
}

type filterTarget struct {
	Title    string
	Category string
	Author   string
}

// Breaks what's returned from row.FilterValue() back into its fields.
func (f *Filterer) GetTarget(filterValue string) filterTarget {
	var t filterTarget

	splits := strings.Split(filterValue, "||")

	t.Title = strings.ToLower(splits[0])
	if len(splits) > 1 {
		t.Category = strings.ToLower(splits[1])
	}
	if len(splits) > 2 {
		t.Author = strings.ToLower(splits[2])
	}

	return t
}

// Extracts `tag:.*` from the stored f.Term
func (f *Filterer) ExtractFiltersFor(tags ...string) []string {
	var extractedTags []string
	done := false
	for !done {
		// `complete` matches 3 potential capture groups after tags, in which
		// `[^"]` matches a character that isn't a `"`, `[^']` that isn't a `'`,
		// etc. If it's no quotes, you can also do `author:with\ spaces`
		// `incomplete` matches unfinished quoted tags and removes them from the
		// search. The order of the capture groups MATTERS.
		complete := regexp.MustCompile(fmt.Sprintf(`(%s):("([^"]+)"|'([^']+)'|(([^\\ ]|\\ )+))`, strings.Join(tags, "|")))
		incomplete := regexp.MustCompile(fmt.Sprintf(`(%s):("[^"]*|'[^']*)`, strings.Join(tags, "|")))

		matches := complete.FindStringSubmatch(f.Term)

		match := ""
		if matches != nil {
			// double quotes
			if matches[3] != "" {
				match = matches[3]
				// single quotes
			} else if matches[4] != "" {
				match = matches[4]
				// no quotes
			} else if matches[5] != "" {
				match = strings.ReplaceAll(matches[5], `\ `, " ")
			}
			f.Term = strings.Replace(f.Term, matches[0], "", 1)
		} else {
			// fallback to regular matching without filter
			matches = incomplete.FindStringSubmatch(f.Term)
			if matches != nil {
				f.Term = strings.Replace(f.Term, matches[0], "", 1)
			}
			done = true
		}

		if match != "" {
			extractedTags = append(extractedTags, strings.ToLower(match))
		}
	}

	f.Term = strings.TrimSpace(f.Term)

	return extractedTags
}

// Runs all filters
func (f *Filterer) Filter(targets []string) []fuzzy.Match {
	var titles, categories, authors []string

	for _, target := range targets {
		t := f.GetTarget(target)
		titles = append(titles, t.Title)
		categories = append(categories, t.Category)
		authors = append(authors, t.Author)
	}

	var ranks fuzzy.Matches
	if f.Term == "" {
		for i, title := range titles {
			ranks = append(ranks, fuzzy.Match{Str: title, Index: i})
		}
	} else {
		ranks = fuzzy.Find(strings.ToLower(f.Term), titles)
	}

	inCategory := matching(f.Categories, categories)
	byAuthor := matching(f.Authors, authors)

	var kept fuzzy.Matches
	for _, r := range ranks {
		if inCategory != nil && !inCategory[r.Index] {
			continue
		}
		if byAuthor != nil && !byAuthor[r.Index] {
			continue
		}
		kept = append(kept, r)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	return kept
}

// matching returns the indexes of fields fuzzily matching any tag, or nil
// when there are no tags.
func matching(tags []string, fields []string) map[int]bool {
	if len(tags) == 0 {
		return nil
	}

	idx := map[int]bool{}
	for _, tag := range tags {
		for _, m := range fuzzy.Find(tag, fields) {
			idx[m.Index] = true
		}
	}

	return idx
}

func NewFilterer(term string) Filterer {
	var f Filterer

	f.Term = term
	f.Categories = f.ExtractFiltersFor("category", "cat")
	f.Authors = f.ExtractFiltersFor("author", "by")

	return f
}

func applyFilter(rows []row, term string) []row {
	if strings.TrimSpace(term) == "" {
		return rows
	}

	targets := make([]string, len(rows))
	for i, r := range rows {
		targets[i] = r.FilterValue()
	}

	filterer := NewFilterer(term)
	ranks := filterer.Filter(targets)

	result := make([]row, len(ranks))
	for i, rank := range ranks {
		result[i] = rows[rank.Index]
	}

	return result
}
