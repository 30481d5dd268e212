package article

// ListFilter narrows GET /api/articles.
type ListFilter struct {
	StoreID  string
	LowStock bool
}
