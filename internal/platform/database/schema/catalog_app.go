package schema

// CatalogAppTable represents the 'catalog.app' table
type CatalogAppTable struct {
	Table          string
	ID             string
	Name           string
	Slug           string
	Description    string
	URL            string
	Category       string
	IconURL        string
	ExternalRating string
	Rating         string
	Votes          string
	IsApproved     string
	URLOk          string
	URLCheckedAt   string
	CreatedAt      string
}

// CatalogApp is the schema definition for catalog.app
var CatalogApp = CatalogAppTable{
	Table:          "catalog.app",
	ID:             "id",
	Name:           "name",
	Slug:           "slug",
	Description:    "description",
	URL:            "url",
	Category:       "category",
	IconURL:        "iconurl",
	ExternalRating: "externalrating",
	Rating:         "rating",
	Votes:          "votes",
	IsApproved:     "isapproved",
	URLOk:          "urlok",
	URLCheckedAt:   "urlcheckedat",
	CreatedAt:      "createdat",
}

func (t CatalogAppTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Slug, t.Description, t.URL, t.Category, t.IconURL,
		t.ExternalRating, t.Rating, t.Votes, t.IsApproved, t.URLOk,
		t.URLCheckedAt, t.CreatedAt,
	}
}
