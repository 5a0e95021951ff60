package dto

// CatalogItem is a slider or defect as offered to selection lists.
type CatalogItem struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
}
