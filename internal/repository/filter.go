package repository

import (
	"strings"

	"gorm.io/gorm"
)

type SortOrder string

const (
	SortByCreatedAt SortOrder = "createdAt"
	SortByTitle     SortOrder = "title"
)

// IdeaFilter narrows a listing. Zero values mean "no filter".
type IdeaFilter struct {
	Search string
	Tags   []string
	SortBy SortOrder
}

// ParseSort maps the sort_by query value; anything unknown sorts newest first.
func ParseSort(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortByTitle)) {
		return SortByTitle
	}
	return SortByCreatedAt
}

// ParseTags splits a comma-separated tag list into lower-cased, de-duplicated
// tags, dropping blanks.
func ParseTags(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	seen := make(map[string]bool)
	tags := make([]string, 0)
	for _, part := range strings.Split(csv, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Scope applies search, tag and sort clauses.
func (f IdeaFilter) Scope() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search := strings.TrimSpace(f.Search); search != "" {
			pattern := "%" + likeEscaper.Replace(search) + "%"
			db = db.Where("(title ILIKE ? OR description ILIKE ? OR problem ILIKE ? OR solution ILIKE ?)",
				pattern, pattern, pattern, pattern)
		}

		if len(f.Tags) > 0 {
			conds := make([]string, 0, len(f.Tags))
			args := make([]interface{}, 0, len(f.Tags))
			for _, tag := range f.Tags {
				conds = append(conds, "EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE lower(t) = ?)")
				args = append(args, strings.ToLower(tag))
			}
			db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
		}

		switch f.SortBy {
		case SortByTitle:
			db = db.Order("title ASC").Order("id ASC")
		default:
			db = db.Order(`"createdAt" DESC`).Order("id ASC")
		}
		return db
	}
}
