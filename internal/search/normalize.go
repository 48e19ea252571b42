package search

// Normalize turns one page into a Result. Every issue references the same
// FieldNames value; a page without names gets a shared empty one.
func Normalize(page Page, endpoint Endpoint) Result {
	names := page.Names
	if names == nil {
		names = NewFieldNames(nil)
	}

	issues := make([]Issue, len(page.Issues))
	for i, raw := range page.Issues {
		issues[i] = Issue{
			ID:     raw.ID,
			Key:    raw.Key,
			Self:   raw.Self,
			Fields: raw.Fields,
			Names:  names,
		}
	}
	return Result{Issues: issues, Endpoint: endpoint}
}
