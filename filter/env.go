package filter

import (
	"strings"

	"github.com/xavhermans/clashofclans/coc"
)

// ClanEnv exposes a clan to filter expressions.
//
// Available fields: Tag, Name, Type, Description, Location, CountryCode,
// ClanLevel, ClanPoints, ClanVersusPoints, RequiredTrophies, WarFrequency,
// WarWinStreak, WarWins, WarTies, WarLosses, IsWarLogPublic, WarLeague,
// Members, Labels. hasLabel(name) matches label names case-insensitively.
func ClanEnv(clan coc.Clan) Env {
	labels := make([]string, len(clan.Labels))
	for i, l := range clan.Labels {
		labels[i] = l.Name
	}

	env := Env{
		"Tag":              clan.Tag,
		"Name":             clan.Name,
		"Type":             clan.Type,
		"Description":      deref(clan.Description),
		"Location":         "",
		"CountryCode":      "",
		"ClanLevel":        clan.ClanLevel,
		"ClanPoints":       clan.ClanPoints,
		"ClanVersusPoints": clan.ClanVersusPoints,
		"RequiredTrophies": clan.RequiredTrophies,
		"WarFrequency":     clan.WarFrequency,
		"WarWinStreak":     clan.WarWinStreak,
		"WarWins":          clan.WarWins,
		"WarTies":          clan.WarTies,
		"WarLosses":        clan.WarLosses,
		"IsWarLogPublic":   clan.IsWarLogPublic,
		"WarLeague":        clan.WarLeague.Name,
		"Members":          clan.Members,
		"Labels":           labels,
		"hasLabel": func(name string) bool {
			for _, l := range labels {
				if strings.EqualFold(l, name) {
					return true
				}
			}
			return false
		},
	}
	if clan.Location != nil {
		env["Location"] = clan.Location.Name
		env["CountryCode"] = deref(clan.Location.CountryCode)
	}
	return env
}

// MemberEnv exposes a clan member. DonationRatio is donations given over
// donations received, or the donations given when nothing was received.
func MemberEnv(member coc.ClanMember) Env {
	ratio := float64(member.Donations)
	if member.DonationsReceived > 0 {
		ratio = float64(member.Donations) / float64(member.DonationsReceived)
	}

	return Env{
		"Tag":               member.Tag,
		"Name":              member.Name,
		"Role":              member.Role,
		"ExpLevel":          member.ExpLevel,
		"League":            member.League.Name,
		"Trophies":          member.Trophies,
		"VersusTrophies":    member.VersusTrophies,
		"ClanRank":          member.ClanRank,
		"PreviousClanRank":  member.PreviousClanRank,
		"Donations":         member.Donations,
		"DonationsReceived": member.DonationsReceived,
		"DonationRatio":     ratio,
		"hasRole": func(role string) bool {
			return strings.EqualFold(member.Role, role)
		},
	}
}

// WarLogEnv exposes a war log entry. EndTime is a time.Time so it can be
// passed to daysSince; it is the zero time when the timestamp is malformed.
func WarLogEnv(entry coc.WarLog) Env {
	endTime, _ := coc.ParseTime(entry.EndTime)
	result := deref(entry.Result)

	return Env{
		"Result":              result,
		"Won":                 result == coc.WarResultWin,
		"EndTime":             endTime,
		"TeamSize":            entry.TeamSize,
		"Opponent":            entry.Opponent.Name,
		"OpponentTag":         entry.Opponent.Tag,
		"Stars":               entry.Clan.Stars,
		"OpponentStars":       entry.Opponent.Stars,
		"Destruction":         entry.Clan.DestructionPercentage,
		"OpponentDestruction": entry.Opponent.DestructionPercentage,
		"Attacks":             derefInt(entry.Clan.Attacks),
		"ExpEarned":           derefInt(entry.Clan.ExpEarned),
	}
}

// WarMemberEnv exposes a current war participant.
func WarMemberEnv(member coc.CurrentWarMember) Env {
	stars := 0
	for _, a := range member.Attacks {
		stars += a.Stars
	}
	bestOpponentStars := 0
	if member.BestOpponentAttack != nil {
		bestOpponentStars = member.BestOpponentAttack.Stars
	}

	return Env{
		"Tag":               member.Tag,
		"Name":              member.Name,
		"TownhallLevel":     member.TownhallLevel,
		"MapPosition":       member.MapPosition,
		"Attacks":           len(member.Attacks),
		"Stars":             stars,
		"OpponentAttacks":   member.OpponentAttacks,
		"BestOpponentStars": bestOpponentStars,
	}
}

// LocationEnv exposes a location.
func LocationEnv(loc coc.Location) Env {
	return Env{
		"ID":            loc.ID,
		"Name":          loc.Name,
		"IsCountry":     loc.IsCountry,
		"CountryCode":   deref(loc.CountryCode),
		"LocalizedName": deref(loc.LocalizedName),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// compile-time check that every env builder matches EnvFunc
var (
	_ EnvFunc[coc.Clan]             = ClanEnv
	_ EnvFunc[coc.ClanMember]       = MemberEnv
	_ EnvFunc[coc.WarLog]           = WarLogEnv
	_ EnvFunc[coc.CurrentWarMember] = WarMemberEnv
	_ EnvFunc[coc.Location]         = LocationEnv
)
