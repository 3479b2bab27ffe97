// Package classify groups kit templates into display categories.
//
// A template's category key is its metadata template_type. Templates without
// one are left out entirely; the rest are listed flat and bucketed under the
// title the category Table gives their key, or the raw key when the table
// has no entry for it.
//
//	result := classify.Classify(k.Templates, classify.DefaultTable())
//	for _, group := range result.Grouped {
//		fmt.Println(group.Title, len(group.Templates))
//	}
package classify
