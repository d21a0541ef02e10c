package coc

import (
	"context"
)

// API defines the interface for Clash of Clans operations
type API interface {
	// SearchClans searches clans by name and/or filtering criteria
	SearchClans(ctx context.Context, query SearchClansQuery) (*Paginator[Clan], error)

	// ListLocations lists one page of locations
	ListLocations(ctx context.Context, query ListLocationsQuery) (*Paginator[Location], error)

	// FindLocationByCountryCode finds a country location by its ISO code
	FindLocationByCountryCode(ctx context.Context, countryCode string) (*Location, error)

	// FindClanByTag retrieves a single clan, nil when it does not exist
	FindClanByTag(ctx context.Context, tag string) (*Clan, error)

	// GetWarLog retrieves one page of a clan's war log
	GetWarLog(ctx context.Context, query GetWarLogQuery) (*Paginator[WarLog], error)

	// GetCurrentWar retrieves the clan's current war, nil when not in war
	GetCurrentWar(ctx context.Context, tag string) (*CurrentWar, error)

	// LastResponse returns the raw response of the most recent request
	LastResponse() *Response
}
