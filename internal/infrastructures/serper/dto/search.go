package dto

type SearchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
}

type SearchResponse struct {
	Organic []OrganicResult `json:"organic"`
}

type OrganicResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}
