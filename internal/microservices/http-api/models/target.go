package models

import (
	"fmt"
	"strings"
)

// TargetType discriminates what kind of entity a review is about.
type TargetType string

const (
	TargetProperty     TargetType = "property"
	TargetCity         TargetType = "city"
	TargetNeighborhood TargetType = "neighborhood"
	TargetCountry      TargetType = "country"
)

var targetTypes = map[TargetType]struct{}{
	TargetProperty:     {},
	TargetCity:         {},
	TargetNeighborhood: {},
	TargetCountry:      {},
}

func (t TargetType) Valid() bool {
	_, ok := targetTypes[t]
	return ok
}

// ParseTargetType normalizes user input ("City", " country ") into a TargetType
func ParseTargetType(raw string) (TargetType, error) {
	t := TargetType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid target_type: %s", raw)
	}
	return t, nil
}

// TargetRef is the polymorphic subject of a review. Whether ID really
// belongs to Type is checked by whoever owns those entities, not here.
type TargetRef struct {
	Type TargetType `json:"target_type" gorm:"column:target_type;type:varchar(20);not null"`
	ID   string     `json:"target_id" gorm:"column:target_id;type:varchar(64);not null"`
}

func NewTargetRef(rawType, id string) (TargetRef, error) {
	t, err := ParseTargetType(rawType)
	if err != nil {
		return TargetRef{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return TargetRef{}, fmt.Errorf("target_id is required")
	}
	return TargetRef{Type: t, ID: id}, nil
}

func (r TargetRef) String() string {
	return string(r.Type) + ":" + r.ID
}
