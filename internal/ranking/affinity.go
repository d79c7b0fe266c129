package ranking

import (
	"sort"

	"fitzty/internal/models"
)

// History is the interaction history affinity is derived from. Order is irrelevant.
type History struct {
	Own   []models.Post
	Liked []models.Post
	Saved []models.Post
}

// Affinity is the inferred preference vocabulary of a user.
type Affinity struct {
	Tags   map[string]struct{}
	Styles map[string]struct{}
}

// Extract unions the tags of liked and saved posts and collects the styles of liked
// posts. Matching is exact and case-sensitive; own posts do not contribute.
func Extract(h History) Affinity {
	a := Affinity{Tags: map[string]struct{}{}, Styles: map[string]struct{}{}}
	for _, group := range [][]models.Post{h.Liked, h.Saved} {
		for _, p := range group {
			for _, t := range p.Tags {
				if t != "" {
					a.Tags[t] = struct{}{}
				}
			}
		}
	}
	for _, p := range h.Liked {
		if p.Style != "" {
			a.Styles[p.Style] = struct{}{}
		}
	}
	return a
}

// Empty reports whether the user has no inferred preferences at all.
func (a Affinity) Empty() bool {
	return len(a.Tags) == 0 && len(a.Styles) == 0
}

// TagList returns the tags sorted, for stable query arguments.
func (a Affinity) TagList() []string { return sortedKeys(a.Tags) }

// StyleList returns the styles sorted.
func (a Affinity) StyleList() []string { return sortedKeys(a.Styles) }

// Matches is the for-you eligibility predicate: any tag overlap OR a style hit.
func (a Affinity) Matches(p *models.Post) bool {
	if _, ok := a.Styles[p.Style]; ok && p.Style != "" {
		return true
	}
	for _, t := range p.Tags {
		if _, ok := a.Tags[t]; ok {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
