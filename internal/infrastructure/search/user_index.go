// Package search indexes user profiles in Elasticsearch for name/email lookup.
package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
)

// NewESClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

const requestTimeout = 3 * time.Second

// UserIndex writes and queries the users index. Calls go through a circuit
// breaker so an unhealthy cluster fails fast instead of stalling requests.
type UserIndex struct {
	es     *elasticsearch.Client
	index  string
	cb     *gobreaker.CircuitBreaker
	logger *logrus.Logger
}

func NewUserIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *UserIndex {
	settings := gobreaker.Settings{
		Name:        "elasticsearch-users",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
			}
		},
	}
	return &UserIndex{es: es, index: index, cb: gobreaker.NewCircuitBreaker(settings), logger: logger}
}

type userDocument struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Username  string   `json:"username"`
	PhotoURL  string   `json:"photo_url"`
	Sports    []string `json:"sports"`
	UpdatedAt string   `json:"updated_at"`
}

func toDocument(u *entity.User) userDocument {
	sports := make([]string, 0, len(u.Skills))
	seen := map[string]bool{}
	for _, s := range u.Skills {
		if !seen[s.Sport] {
			seen[s.Sport] = true
			sports = append(sports, s.Sport)
		}
	}
	return userDocument{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		PhotoURL:  u.PhotoURL,
		Sports:    sports,
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Index upserts the searchable fields of u.
func (x *UserIndex) Index(ctx context.Context, u *entity.User) error {
	body, err := json.Marshal(toDocument(u))
	if err != nil {
		return err
	}
	_, err = x.cb.Execute(func() (interface{}, error) {
		c, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		req := esapi.IndexRequest{Index: x.index, DocumentID: u.ID, Body: bytes.NewReader(body), Refresh: "false"}
		res, err := req.Do(c, x.es)
		if err != nil {
			return nil, err
		}
		defer func() { _ = res.Body.Close() }()
		if res.IsError() {
			return nil, fmt.Errorf("index user %s: %s", u.ID, res.Status())
		}
		return nil, nil
	})
	return err
}

// Search runs a multi_match on username and email and returns matching user
// ids in relevance order.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "username", "sports"},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	out, err := x.cb.Execute(func() (interface{}, error) {
		c, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		res, err := x.es.Search(
			x.es.Search.WithContext(c),
			x.es.Search.WithIndex(x.index),
			x.es.Search.WithBody(strings.NewReader(string(b))),
		)
		if err != nil {
			return nil, err
		}
		defer func() { _ = res.Body.Close() }()
		if res.IsError() {
			return nil, fmt.Errorf("search users: %s", res.Status())
		}
		var parsed struct {
			Hits struct {
				Hits []struct {
					ID string `json:"_id"`
				} `json:"hits"`
			} `json:"hits"`
		}
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(parsed.Hits.Hits))
		for _, h := range parsed.Hits.Hits {
			ids = append(ids, h.ID)
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}
