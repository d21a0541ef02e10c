package coc

import "time"

// War states reported by the currentwar endpoint.
const (
	WarStateNotInWar    = "notInWar"
	WarStatePreparation = "preparation"
	WarStateInWar       = "inWar"
	WarStateWarEnded    = "warEnded"
)

// War log results. A nil WarLog.Result means the API did not report one.
const (
	WarResultWin  = "win"
	WarResultLose = "lose"
	WarResultTie  = "tie"
)

// Clan roles reported on ClanMember.Role.
const (
	RoleMember   = "member"
	RoleAdmin    = "admin"
	RoleCoLeader = "coLeader"
	RoleLeader   = "leader"
)

// Clan is a clan as returned by the search and clan detail endpoints.
// Search results never carry Description or MemberList.
type Clan struct {
	Tag              string       `json:"tag"`
	Name             string       `json:"name"`
	Type             string       `json:"type"`
	Description      *string      `json:"description,omitempty"`
	Location         *Location    `json:"location,omitempty"`
	BadgeURLs        BadgeURLs    `json:"badgeUrls"`
	ClanLevel        int          `json:"clanLevel"`
	ClanPoints       int          `json:"clanPoints"`
	ClanVersusPoints int          `json:"clanVersusPoints"`
	RequiredTrophies int          `json:"requiredTrophies"`
	WarFrequency     string       `json:"warFrequency"`
	WarWinStreak     int          `json:"warWinStreak"`
	WarWins          int          `json:"warWins"`
	WarTies          int          `json:"warTies"`
	WarLosses        int          `json:"warLosses"`
	IsWarLogPublic   bool         `json:"isWarLogPublic"`
	WarLeague        WarLeague    `json:"warLeague"`
	Members          int          `json:"members"`
	Labels           []Label      `json:"labels"`
	MemberList       []ClanMember `json:"memberList,omitempty"`
}

// ClanMember is one entry of Clan.MemberList.
type ClanMember struct {
	Tag               string `json:"tag"`
	Name              string `json:"name"`
	Role              string `json:"role"`
	ExpLevel          int    `json:"expLevel"`
	League            League `json:"league"`
	Trophies          int    `json:"trophies"`
	VersusTrophies    int    `json:"versusTrophies"`
	ClanRank          int    `json:"clanRank"`
	PreviousClanRank  int    `json:"previousClanRank"`
	Donations         int    `json:"donations"`
	DonationsReceived int    `json:"donationsReceived"`
}

// League is a player trophy league.
type League struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	IconURLs map[string]string `json:"iconUrls"`
}

// Label is a clan label such as "Clan Wars" or "Donations".
type Label struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	IconURLs map[string]string `json:"iconUrls"`
}

// WarLeague is the clan war league a clan competes in.
type WarLeague struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// BadgeURLs holds the three badge image sizes.
type BadgeURLs struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// Location is a region or country. CountryCode is only set for countries.
type Location struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	IsCountry     bool    `json:"isCountry"`
	CountryCode   *string `json:"countryCode,omitempty"`
	LocalizedName *string `json:"localizedName,omitempty"`
}

// CurrentWar is the war a clan is currently preparing for or fighting.
// Timestamps are kept in the API's compact form (20200918T060948.000Z).
type CurrentWar struct {
	State                string         `json:"state"`
	TeamSize             int            `json:"teamSize"`
	AttacksPerMember     *int           `json:"attacksPerMember,omitempty"`
	PreparationStartTime string         `json:"preparationStartTime"`
	StartTime            string         `json:"startTime"`
	EndTime              string         `json:"endTime"`
	Clan                 CurrentWarClan `json:"clan"`
	Opponent             CurrentWarClan `json:"opponent"`
}

// CurrentWarClan is one side of a CurrentWar.
type CurrentWarClan struct {
	Tag                   string             `json:"tag"`
	Name                  string             `json:"name"`
	BadgeURLs             BadgeURLs          `json:"badgeUrls"`
	ClanLevel             int                `json:"clanLevel"`
	Attacks               int                `json:"attacks"`
	Stars                 int                `json:"stars"`
	DestructionPercentage float64            `json:"destructionPercentage"`
	ExpEarned             *int               `json:"expEarned,omitempty"`
	Members               []CurrentWarMember `json:"members"`
}

// CurrentWarMember is a war participant. Attacks is empty until the member
// attacks, and BestOpponentAttack is nil while nobody has attacked them.
type CurrentWarMember struct {
	Tag                string      `json:"tag"`
	Name               string      `json:"name"`
	TownhallLevel      int         `json:"townhallLevel"`
	MapPosition        int         `json:"mapPosition"`
	Attacks            []WarAttack `json:"attacks,omitempty"`
	OpponentAttacks    int         `json:"opponentAttacks"`
	BestOpponentAttack *WarAttack  `json:"bestOpponentAttack,omitempty"`
}

// WarAttack is a single war attack. DestructionPercentage is a whole number here,
// unlike the clan-level totals.
type WarAttack struct {
	AttackerTag           string `json:"attackerTag"`
	DefenderTag           string `json:"defenderTag"`
	Stars                 int    `json:"stars"`
	DestructionPercentage int    `json:"destructionPercentage"`
	Order                 int    `json:"order"`
	Duration              *int   `json:"duration,omitempty"`
}

// WarLog is a finished war from a clan's war log.
type WarLog struct {
	Result           *string    `json:"result,omitempty"`
	EndTime          string     `json:"endTime"`
	TeamSize         int        `json:"teamSize"`
	AttacksPerMember *int       `json:"attacksPerMember,omitempty"`
	Clan             WarLogClan `json:"clan"`
	Opponent         WarLogClan `json:"opponent"`
}

// WarLogClan is one side of a WarLog entry. The API omits Attacks and
// ExpEarned for the opponent.
type WarLogClan struct {
	Tag                   string    `json:"tag"`
	Name                  string    `json:"name"`
	BadgeURLs             BadgeURLs `json:"badgeUrls"`
	ClanLevel             int       `json:"clanLevel"`
	Attacks               *int      `json:"attacks,omitempty"`
	Stars                 int       `json:"stars"`
	DestructionPercentage float64   `json:"destructionPercentage"`
	ExpEarned             *int      `json:"expEarned,omitempty"`
}

// Paginator is one page of a list endpoint.
type Paginator[T any] struct {
	Items  []T    `json:"items"`
	Paging Paging `json:"paging"`
}

// Paging carries the cursors for the neighbouring pages.
type Paging struct {
	Cursors Cursors `json:"cursors"`
}

// Cursors are opaque page markers to pass back as the after/before query options.
type Cursors struct {
	After  *string `json:"after,omitempty"`
	Before *string `json:"before,omitempty"`
}

// HasNext reports whether another page follows this one.
func (p *Paginator[T]) HasNext() bool {
	return p.Paging.Cursors.After != nil && *p.Paging.Cursors.After != ""
}

// ClientError is the error document the API returns with non-200 responses.
type ClientError struct {
	Reason  string  `json:"reason"`
	Message *string `json:"message,omitempty"`
}

// TimeLayout is the layout of API timestamps such as 20200918T060948.000Z.
const TimeLayout = "20060102T150405.000Z"

// ParseTime parses an API timestamp into UTC.
func ParseTime(value string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, value, time.UTC)
}
