package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"govstay-server/models"

	"gopkg.in/olivere/elastic.v5"
)

const hotelDocType = "hotel"

// H is a JSON object literal for index mappings.
type H map[string]interface{}

// HotelDocument is what the catalog index stores per hotel.
type HotelDocument struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Amenities   []string `json:"amenities"`
	RoomTypes   []string `json:"roomTypes"`
}

func NewHotelDocument(h models.Hotel) HotelDocument {
	seen := map[string]bool{}
	var types []string
	for _, r := range h.Rooms {
		if !seen[r.Type] {
			seen[r.Type] = true
			types = append(types, r.Type)
		}
	}
	return HotelDocument{
		ID:          h.ID,
		Name:        h.Name,
		Location:    h.Location,
		Description: h.Description,
		Amenities:   h.Amenities,
		RoomTypes:   types,
	}
}

// HotelSearch is the Elasticsearch-backed catalog index.
type HotelSearch struct {
	client *elastic.Client
	index  string
}

func defaultCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Second*15)
}

// InitializeSearch connects and creates the index if missing. It returns nil
// when no URLs are configured; callers then search the database instead.
func InitializeSearch(urls []string, index string, debug bool) (*HotelSearch, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	options := []elastic.ClientOptionFunc{
		elastic.SetHealthcheckInterval(10 * time.Second),
		elastic.SetSniff(false),
	}
	for i := range urls {
		options = append(options, elastic.SetURL(urls[i]))
	}
	if debug {
		options = append(options,
			elastic.SetErrorLog(log.New(os.Stderr, "ELASTIC ", log.LstdFlags)),
			elastic.SetInfoLog(log.New(os.Stdout, "", log.LstdFlags)),
		)
	}

	client, err := elastic.NewClient(options...)
	if err != nil {
		return nil, err
	}

	s := &HotelSearch{client: client, index: index}
	if err := s.ensureIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HotelSearch) ensureIndex() error {
	ctx, cancel := defaultCtx()
	defer cancel()

	exists, err := s.client.IndexExists(s.index).Do(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	index, err := s.client.CreateIndex(s.index).BodyJson(H{
		"mappings": H{
			hotelDocType: H{
				"properties": H{
					"name":        H{"type": "text", "fields": H{"raw": H{"type": "keyword"}}},
					"location":    H{"type": "text"},
					"description": H{"type": "text"},
					"amenities":   H{"type": "text"},
					"roomTypes":   H{"type": "keyword"},
				},
			},
		},
	}).Do(ctx)
	if err != nil {
		return err
	}
	if !index.Acknowledged {
		return fmt.Errorf("index %s is not ackd", s.index)
	}
	return nil
}

func (s *HotelSearch) Index(ctx context.Context, h models.Hotel) error {
	_, err := s.client.Index().
		Index(s.index).
		Type(hotelDocType).
		Id(strconv.FormatUint(uint64(h.ID), 10)).
		BodyJson(NewHotelDocument(h)).
		Do(ctx)
	return err
}

// Search returns matching hotel ids ordered by relevance.
func (s *HotelSearch) Search(ctx context.Context, q string, limit int) ([]uint, error) {
	query := elastic.NewMultiMatchQuery(q, "name^3", "location^2", "description", "amenities").
		Fuzziness("AUTO")

	res, err := s.client.Search().
		Index(s.index).
		Type(hotelDocType).
		Query(query).
		FetchSourceContext(elastic.NewFetchSourceContext(true).Include("id")).
		Size(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc HotelDocument
		if hit.Source == nil {
			continue
		}
		if err := json.Unmarshal(*hit.Source, &doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, nil
}
