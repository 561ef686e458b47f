// Package model contains domain models passed between layers.
package model

// Column names of the fish table. They double as the JSON keys clients send.
const (
	FieldID     = "Id"
	FieldName   = "Name"
	FieldSell   = "Sell"
	FieldShadow = "Shadow"
	FieldWhere  = "Where"
)

// FishRecord is one catchable fish: its trade value, shadow-size hint and
// where it can be caught. Id is assigned by the store on create.
type FishRecord struct {
	ID     int64  `json:"Id"`
	Name   string `json:"Name"`
	Sell   int64  `json:"Sell"`
	Shadow string `json:"Shadow"`
	Where  string `json:"Where"`
}

// Columns lists the fish table columns in select order.
func Columns() []string {
	return []string{FieldID, FieldName, FieldSell, FieldShadow, FieldWhere}
}

// Less orders records by Name ascending, then by Id so equal names stay stable.
func Less(a, b FishRecord) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}
