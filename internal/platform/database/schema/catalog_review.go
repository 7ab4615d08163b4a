package schema

// CatalogReviewTable represents the 'catalog.review' table
type CatalogReviewTable struct {
	Table     string
	ID        string
	AppID     string
	Author    string
	Score     string
	Comment   string
	CreatedAt string
}

// CatalogReview is the schema definition for catalog.review
var CatalogReview = CatalogReviewTable{
	Table:     "catalog.review",
	ID:        "id",
	AppID:     "appid",
	Author:    "author",
	Score:     "score",
	Comment:   "comment",
	CreatedAt: "createdat",
}

func (t CatalogReviewTable) Columns() []string {
	return []string{
		t.ID, t.AppID, t.Author, t.Score, t.Comment, t.CreatedAt,
	}
}
