package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

// Defaults substituted by Normalize for absent or mistyped fields.
const (
	DefaultArea        = "Onbekend"
	DefaultDogParkName = "Onbekend"
	DefaultAddress     = "Onbekend adres"
	DefaultSize        = "Onbekend"
	DefaultImage       = "/placeholder.svg"
)

// Attributes is the schemaless body of a pasture document, stored as JSONB.
type Attributes map[string]any

// Value реализует интерфейс driver.Valuer для сериализации Attributes в JSONB
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal(Attributes{})
	}
	return json.Marshal(a)
}

// Scan реализует интерфейс sql.Scanner для десериализации JSONB в Attributes
func (a *Attributes) Scan(value interface{}) error {
	if value == nil {
		*a = Attributes{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		*a = Attributes{}
		return nil
	}
}

// PastureRecord is a raw document as it lives in the store: an opaque id plus
// whatever attribute map was submitted. Consumers never see it directly, the
// service layer normalizes it into a Pasture first.
type PastureRecord struct {
	ID    uuid.UUID  `json:"id" db:"id"`
	Attrs Attributes `json:"attrs" db:"attrs"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Review struct {
	ID     string `json:"id"`
	User   string `json:"user"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// Pasture is the fully-defined view of a dog off-leash area. Every field is
// guaranteed present and correctly typed after Normalize.
type Pasture struct {
	ID                  uuid.UUID `json:"id"`
	Area                string    `json:"area"`
	DogParkName         string    `json:"dogParkName"`
	Address             string    `json:"address"`
	Location            Location  `json:"location"`
	Size                string    `json:"size"`
	BenchCount          int       `json:"benchCount"`
	HasShade            bool      `json:"hasShade"`
	HasTrashbin         bool      `json:"hasTrashbin"`
	HasWaterFountain    bool      `json:"hasWaterFountain"`
	WaterFountainDetail string    `json:"waterFountainDetail"`
	HasWaterPool        bool      `json:"hasWaterPool"`
	HasParkourObstacles bool      `json:"hasParkourObstacles"`
	HasEveningLight     bool      `json:"hasEveningLight"`
	IsFenced            bool      `json:"isFenced"`
	FenceDetail         string    `json:"fenceDetail"`
	GroundTypes         []string  `json:"groundTypes"`
	Reviews             []Review  `json:"reviews"`
	Rating              float64   `json:"rating"`
	ExtraInfo           string    `json:"extraInfo"`
	Image               string    `json:"image"`
}

// Normalize coerces an arbitrary attribute map into a fully-defined Pasture.
// Total and side-effect free: any input, including nil, yields a value with
// every field defined. Display fields fall back to their placeholder when
// empty, detail fields stay empty, list fields are never nil.
func Normalize(id uuid.UUID, attrs Attributes) Pasture {
	p := Pasture{
		ID:                  id,
		Area:                textField(attrs["area"], DefaultArea),
		DogParkName:         textField(attrs["dogParkName"], DefaultDogParkName),
		Address:             textField(attrs["address"], DefaultAddress),
		Location:            locationField(attrs["location"]),
		Size:                textField(attrs["size"], DefaultSize),
		BenchCount:          countField(attrs["benchCount"]),
		HasShade:            truthy(attrs["hasShade"]),
		HasTrashbin:         truthy(attrs["hasTrashbin"]),
		HasWaterFountain:    truthy(attrs["hasWaterFountain"]),
		WaterFountainDetail: detailField(attrs["waterFountainDetail"]),
		HasWaterPool:        truthy(attrs["hasWaterPool"]),
		HasParkourObstacles: truthy(attrs["hasParkourObstacles"]),
		HasEveningLight:     truthy(attrs["hasEveningLight"]),
		IsFenced:            truthy(attrs["isFenced"]),
		FenceDetail:         detailField(attrs["fenceDetail"]),
		GroundTypes:         stringListField(attrs["groundTypes"]),
		Reviews:             reviewListField(attrs["reviews"]),
		Rating:              ratingField(attrs["rating"]),
		ExtraInfo:           detailField(attrs["extraInfo"]),
		Image:               textField(attrs["image"], DefaultImage),
	}

	// legacy documents spell the obstacles flag with a "c"; it only counts
	// when the canonical key is absent, an explicit false stays false
	if _, ok := attrs["hasParkourObstacles"]; !ok {
		p.HasParkourObstacles = truthy(attrs["hasParcourObstacles"])
	}

	return p
}

// truthy mirrors JavaScript boolean coercion, the rule the source data was
// written against: false, 0, NaN, "" and null are false, everything else
// (including empty lists and objects) is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && t == t
	case float32:
		return t != 0 && t == t
	case int:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}

func textField(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func detailField(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func numberOf(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func countField(v any) int {
	f, ok := numberOf(v)
	if !ok || f < 0 {
		return 0
	}
	return int(f)
}

func ratingField(v any) float64 {
	f, ok := numberOf(v)
	if !ok {
		return 0
	}
	return f
}

func locationField(v any) Location {
	loc, ok := v.(map[string]any)
	if !ok {
		return Location{}
	}

	lat, _ := numberOf(loc["latitude"])
	lng, _ := numberOf(loc["longitude"])

	return Location{Latitude: lat, Longitude: lng}
}

func stringListField(v any) []string {
	out := []string{}

	switch list := v.(type) {
	case []string:
		return append(out, list...)
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}

	return out
}

func reviewListField(v any) []Review {
	out := []Review{}

	list, ok := v.([]any)
	if !ok {
		return out
	}

	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}

		out = append(out, Review{
			ID:     detailField(entry["id"]),
			User:   detailField(entry["user"]),
			Text:   detailField(entry["text"]),
			Rating: countField(entry["rating"]),
		})
	}

	return out
}
