package movies

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const omdbEndpoint = "https://www.omdbapi.com/"

type Client struct {
	apiKey string
	http   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 15 * time.Second},
	}
}

type Movie struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	Plot       string `json:"Plot"`
	ImdbRating string `json:"imdbRating"`
	Poster     string `json:"Poster"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// Lookup fetches metadata for a movie by title. A miss is reported as an
// error carrying OMDb's own message ("Movie not found!").
func (c *Client) Lookup(title string) (*Movie, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OMDB_API_KEY environment variable not set")
	}

	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("t", title)

	resp, err := c.http.Get(omdbEndpoint + "?" + query.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to call OMDb API: %w", err)
	}
	defer resp.Body.Close()

	var movie Movie
	if err := json.NewDecoder(resp.Body).Decode(&movie); err != nil {
		return nil, fmt.Errorf("failed to parse OMDb response: %w", err)
	}

	if movie.Response == "False" {
		return nil, fmt.Errorf("movie not found: %s", title)
	}
	return &movie, nil
}
