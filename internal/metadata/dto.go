package metadata

// Wire shape of the Google Books volumes endpoint, reduced to the fields
// the catalog cares about.
type volumesResponse struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

type volumeItem struct {
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	AverageRating       float64              `json:"averageRating"`
	RatingsCount        int                  `json:"ratingsCount"`
	Language            string               `json:"language"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// BookMetadata is what a lookup yields: a draft of catalog fields the
// operator can edit before registering the book.
type BookMetadata struct {
	ISBN          string  `json:"isbn,omitempty"`
	Title         string  `json:"title"`
	Author        string  `json:"author,omitempty"`
	Publisher     string  `json:"publisher,omitempty"`
	PublishedDate string  `json:"published_date,omitempty"`
	PageCount     int     `json:"page_count,omitempty"`
	Genre         string  `json:"genre,omitempty"`
	Language      string  `json:"language,omitempty"`
	Description   string  `json:"description,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
	RatingCount   int     `json:"rating_count,omitempty"`
}
