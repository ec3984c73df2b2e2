package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Event is a clustered news item as returned by EventRegistry and stored in
// the events index. The uri doubles as the index document id, so re-indexing
// the same event overwrites instead of duplicating.
type Event struct {
	URI               string        `json:"uri"`
	Title             LangText      `json:"title,omitempty"`
	Summary           LangText      `json:"summary,omitempty"`
	EventDate         string        `json:"eventDate,omitempty"`
	Sentiment         *float64      `json:"sentiment,omitempty"`
	SocialScore       float64       `json:"socialScore,omitempty"`
	Wgt               int           `json:"wgt,omitempty"`
	TotalArticleCount int           `json:"totalArticleCount,omitempty"`
	ArticleCounts     ArticleCounts `json:"articleCounts,omitempty"`
	Images            []string      `json:"images,omitempty"`
	Location          *Location     `json:"location,omitempty"`
	Categories        []Category    `json:"categories,omitempty"`
	Concepts          []Concept     `json:"concepts,omitempty"`
	InfoArticle       *InfoArticle  `json:"infoArticle,omitempty"`
}

// LangText holds per-language text. Only the English variant is populated.
type LangText struct {
	Eng string `json:"eng,omitempty"`
}

type ArticleCounts struct {
	Eng int `json:"eng,omitempty"`
}

// Concept is a tagged entity (topic, person, location) attached to an event.
// Score runs 0-100; ingestion drops anything at or below 50 as noise.
type Concept struct {
	URI      string    `json:"uri,omitempty"`
	Type     string    `json:"type,omitempty"`
	Label    LangText  `json:"label,omitempty"`
	Score    float64   `json:"score,omitempty"`
	Location *Location `json:"location,omitempty"`
}

type Category struct {
	URI   string `json:"uri,omitempty"`
	Label string `json:"label,omitempty"`
}

type Location struct {
	Type    string   `json:"type,omitempty"`
	Label   LangText `json:"label,omitempty"`
	Country *Country `json:"country,omitempty"`
	Lat     Coord    `json:"lat,omitempty"`
	Long    Coord    `json:"long,omitempty"`
}

type Country struct {
	Type  string   `json:"type,omitempty"`
	Label LangText `json:"label,omitempty"`
	Lat   Coord    `json:"lat,omitempty"`
	Long  Coord    `json:"long,omitempty"`
}

type InfoArticle struct {
	Eng ArticleRef `json:"eng,omitempty"`
}

type ArticleRef struct {
	URL string `json:"url,omitempty"`
}

// Coord is a latitude or longitude from the upstream API, which sends
// coordinates as numbers or as strings depending on the event. Unparsable
// values decode to null rather than failing the whole document; the index
// maps these fields as float and would reject raw strings.
type Coord struct {
	Value *float64
}

func (c *Coord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		c.Value = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			c.Value = nil
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.Value = nil
			return nil
		}
		c.Value = &f
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		c.Value = nil
		return nil
	}
	c.Value = &f
	return nil
}

func (c Coord) MarshalJSON() ([]byte, error) {
	if c.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*c.Value)
}
