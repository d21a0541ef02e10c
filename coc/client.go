package coc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Client represents a Clash of Clans API client. Each operation performs
// exactly one GET and keeps the raw response for LastResponse.
//
// A Client may be shared between goroutines. The last response is swapped
// atomically, so with concurrent requests LastResponse returns whichever
// finished last.
type Client struct {
	transport    Transport
	logger       zerolog.Logger
	lastResponse atomic.Pointer[Response]
}

var _ API = (*Client)(nil)

// NewClient creates a new Clash of Clans client authenticated with token.
func NewClient(token string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	transport := options.transport
	if transport == nil {
		t, err := NewHTTPTransport(options.baseURL, token, logger, opts...)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	return &Client{
		transport: transport,
		logger:    logger,
	}, nil
}

// LastResponse returns the raw response of the most recent request, or nil
// when it failed before a response arrived.
func (c *Client) LastResponse() *Response {
	return c.lastResponse.Load()
}

// get performs a GET and turns any non-200 status into a classified error.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*Response, error) {
	resp, err := c.transport.Do(ctx, http.MethodGet, path, query)
	c.lastResponse.Store(resp)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, Path: path, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyResponse(resp.StatusCode, resp.Body)
	}
	return resp, nil
}

// clanPath builds the path for a clan resource. Tags start with '#', which
// must be escaped to stay part of the path.
func clanPath(tag string, segments ...string) string {
	path := "clans/" + url.PathEscape(tag)
	for _, s := range segments {
		path += "/" + s
	}
	return path
}

// SearchClans searches all clans matching query.
func (c *Client) SearchClans(ctx context.Context, query SearchClansQuery) (*Paginator[Clan], error) {
	resp, err := c.get(ctx, "clans", query.Params())
	if err != nil {
		return nil, fmt.Errorf("failed to search clans: %w", err)
	}

	page, err := DecodeClanPage(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse clan search: %w", err)
	}

	c.logger.Debug().
		Int("count", len(page.Items)).
		Bool("has_next", page.HasNext()).
		Msg("Retrieved clans from search")

	return page, nil
}

// ListLocations lists one page of locations.
func (c *Client) ListLocations(ctx context.Context, query ListLocationsQuery) (*Paginator[Location], error) {
	resp, err := c.get(ctx, "locations", query.Params())
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	page, err := DecodeLocationPage(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse locations: %w", err)
	}

	c.logger.Debug().
		Int("count", len(page.Items)).
		Msg("Retrieved locations")

	return page, nil
}

// FindLocationByCountryCode returns the country location whose code equals
// countryCode exactly, or nil when there is none. Only the first page of the unfiltered
// location list is searched. More than one match is reported as an
// InvariantError.
func (c *Client) FindLocationByCountryCode(ctx context.Context, countryCode string) (*Location, error) {
	page, err := c.ListLocations(ctx, ListLocationsQuery{})
	if err != nil {
		return nil, err
	}

	var found *Location
	for i := range page.Items {
		loc := &page.Items[i]
		if !loc.IsCountry || loc.CountryCode == nil || *loc.CountryCode != countryCode {
			continue
		}
		if found != nil {
			return nil, &InvariantError{
				Operation: "find location by country code",
				Reason:    fmt.Sprintf("there is more than one location matching the country code %q", countryCode),
			}
		}
		found = loc
	}

	return found, nil
}

// FindClanByTag returns the clan with the given tag (e.g. "#2PPC8L2QP"), or
// nil when the API reports it does not exist.
func (c *Client) FindClanByTag(ctx context.Context, tag string) (*Clan, error) {
	if err := requireTag("FindClanByTag", tag); err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, clanPath(tag), nil)
	if err != nil {
		if isNotFound(err) {
			c.logger.Debug().Str("tag", tag).Msg("Clan not found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get clan %s: %w", tag, err)
	}

	clan, err := DecodeClan(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse clan %s: %w", tag, err)
	}

	return clan, nil
}

// GetWarLog returns one page of the war log of query.ClanTag.
func (c *Client) GetWarLog(ctx context.Context, query GetWarLogQuery) (*Paginator[WarLog], error) {
	if err := query.validate(); err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, clanPath(query.ClanTag, "warlog"), query.Params())
	if err != nil {
		return nil, fmt.Errorf("failed to get war log for %s: %w", query.ClanTag, err)
	}

	page, err := DecodeWarLogPage(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse war log for %s: %w", query.ClanTag, err)
	}

	c.logger.Debug().
		Str("tag", query.ClanTag).
		Int("count", len(page.Items)).
		Msg("Retrieved war log")

	return page, nil
}

// GetCurrentWar returns the war the clan is preparing for or fighting, or
// nil when it is not in a war.
func (c *Client) GetCurrentWar(ctx context.Context, tag string) (*CurrentWar, error) {
	if err := requireTag("GetCurrentWar", tag); err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, clanPath(tag, "currentwar"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get current war for %s: %w", tag, err)
	}

	war, err := DecodeCurrentWar(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse current war for %s: %w", tag, err)
	}

	return war, nil
}

// isNotFound reports whether err is a 404 from the API, whatever its body.
func isNotFound(err error) bool {
	var nf interface{ IsNotFound() bool }
	return errors.As(err, &nf) && nf.IsNotFound()
}
