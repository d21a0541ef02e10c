package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xavhermans/clashofclans/coc"
)

const ruleWidth = 85

// render prints v as indented JSON when --output json is in effect, and
// calls text otherwise
func render(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if cfg != nil && cfg.Output.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func rule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("━", ruleWidth))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

func sortedHeaderNames(h http.Header) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// printPaging tells the user how to fetch the neighbouring pages
func printPaging(w io.Writer, paging coc.Paging) {
	if c := paging.Cursors.After; c != nil && *c != "" {
		fmt.Fprintf(w, "Next page:     -p after=%s\n", *c)
	}
	if c := paging.Cursors.Before; c != nil && *c != "" {
		fmt.Fprintf(w, "Previous page: -p before=%s\n", *c)
	}
}

func printClans(w io.Writer, clans []coc.Clan, total int) {
	if len(clans) == 0 {
		fmt.Fprintln(w, "No clans found matching the criteria.")
		return
	}

	fmt.Fprintf(w, "Found %s", plural(len(clans), "clan"))
	if total != len(clans) {
		fmt.Fprintf(w, " (%d before filtering)", total)
	}
	fmt.Fprintln(w, ":")

	rule(w)
	fmt.Fprintf(w, "%-12s %-24s %5s %7s %7s %-16s %s\n", "TAG", "NAME", "LEVEL", "MEMBERS", "POINTS", "LOCATION", "WAR W/L")
	rule(w)
	for _, clan := range clans {
		location := "-"
		if clan.Location != nil {
			location = clan.Location.Name
		}
		fmt.Fprintf(w, "%-12s %-24s %5d %7d %7d %-16s %d/%d\n",
			clan.Tag, truncate(clan.Name, 24), clan.ClanLevel, clan.Members, clan.ClanPoints,
			truncate(location, 16), clan.WarWins, clan.WarLosses)
	}
	rule(w)
}

func printClan(w io.Writer, clan *coc.Clan) {
	fmt.Fprintf(w, "%s (%s)\n", clan.Name, clan.Tag)
	rule(w)
	if clan.Description != nil && *clan.Description != "" {
		fmt.Fprintf(w, "%s\n\n", *clan.Description)
	}
	fmt.Fprintf(w, "Type:              %s\n", clan.Type)
	if clan.Location != nil {
		fmt.Fprintf(w, "Location:          %s\n", clan.Location.Name)
	}
	fmt.Fprintf(w, "Level:             %d\n", clan.ClanLevel)
	fmt.Fprintf(w, "Members:           %d\n", clan.Members)
	fmt.Fprintf(w, "Clan points:       %d (versus %d)\n", clan.ClanPoints, clan.ClanVersusPoints)
	fmt.Fprintf(w, "Required trophies: %d\n", clan.RequiredTrophies)
	fmt.Fprintf(w, "War frequency:     %s\n", clan.WarFrequency)
	fmt.Fprintf(w, "War league:        %s\n", clan.WarLeague.Name)
	fmt.Fprintf(w, "War record:        %d wins, %d ties, %d losses (streak %d)\n",
		clan.WarWins, clan.WarTies, clan.WarLosses, clan.WarWinStreak)
	fmt.Fprintf(w, "Public war log:    %t\n", clan.IsWarLogPublic)
	if len(clan.Labels) > 0 {
		names := make([]string, len(clan.Labels))
		for i, l := range clan.Labels {
			names[i] = l.Name
		}
		fmt.Fprintf(w, "Labels:            %s\n", strings.Join(names, ", "))
	}
}

func printMembers(w io.Writer, members []coc.ClanMember) {
	fmt.Fprintf(w, "\n%s:\n", plural(len(members), "member"))
	rule(w)
	fmt.Fprintf(w, "%-4s %-12s %-20s %-9s %8s %9s %9s\n", "#", "TAG", "NAME", "ROLE", "TROPHIES", "DONATED", "RECEIVED")
	rule(w)
	for _, m := range members {
		fmt.Fprintf(w, "%-4d %-12s %-20s %-9s %8d %9d %9d\n",
			m.ClanRank, m.Tag, truncate(m.Name, 20), m.Role, m.Trophies, m.Donations, m.DonationsReceived)
	}
	rule(w)
}

func printWarLog(w io.Writer, entries []coc.WarLog, total int) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No wars found matching the criteria.")
		return
	}

	fmt.Fprintf(w, "Found %s", plural(len(entries), "war"))
	if total != len(entries) {
		fmt.Fprintf(w, " (%d before filtering)", total)
	}
	fmt.Fprintln(w, ":")

	rule(w)
	fmt.Fprintf(w, "%-10s %-7s %-5s %-26s %-9s %s\n", "ENDED", "RESULT", "SIZE", "OPPONENT", "STARS", "DESTRUCTION")
	rule(w)
	for _, entry := range entries {
		ended := entry.EndTime
		if t, err := coc.ParseTime(entry.EndTime); err == nil {
			ended = t.Format("2006-01-02")
		}
		result := "-"
		if entry.Result != nil {
			result = *entry.Result
		}
		fmt.Fprintf(w, "%-10s %-7s %-5d %-26s %-9s %.1f%% - %.1f%%\n",
			ended, result, entry.TeamSize, truncate(entry.Opponent.Name, 26),
			fmt.Sprintf("%d-%d", entry.Clan.Stars, entry.Opponent.Stars),
			entry.Clan.DestructionPercentage, entry.Opponent.DestructionPercentage)
	}
	rule(w)
}

func printCurrentWar(w io.Writer, war *coc.CurrentWar, members []coc.CurrentWarMember) {
	fmt.Fprintf(w, "%s vs %s (%s, %dv%d)\n", war.Clan.Name, war.Opponent.Name, war.State, war.TeamSize, war.TeamSize)
	rule(w)
	fmt.Fprintf(w, "Stars:       %d - %d\n", war.Clan.Stars, war.Opponent.Stars)
	fmt.Fprintf(w, "Destruction: %.2f%% - %.2f%%\n", war.Clan.DestructionPercentage, war.Opponent.DestructionPercentage)
	fmt.Fprintf(w, "Attacks:     %d - %d\n", war.Clan.Attacks, war.Opponent.Attacks)
	if t, err := coc.ParseTime(war.EndTime); err == nil {
		fmt.Fprintf(w, "Ends:        %s\n", t.Format("2006-01-02 15:04 MST"))
	}

	fmt.Fprintf(w, "\n%s of %s:\n", plural(len(members), "member"), war.Clan.Name)
	rule(w)
	fmt.Fprintf(w, "%-4s %-12s %-20s %3s %7s %5s %s\n", "POS", "TAG", "NAME", "TH", "ATTACKS", "STARS", "DEFENDED")
	rule(w)
	for _, m := range members {
		stars := 0
		for _, a := range m.Attacks {
			stars += a.Stars
		}
		fmt.Fprintf(w, "%-4d %-12s %-20s %3d %7d %5d %d\n",
			m.MapPosition, m.Tag, truncate(m.Name, 20), m.TownhallLevel, len(m.Attacks), stars, m.OpponentAttacks)
	}
	rule(w)
}

func printLocations(w io.Writer, locations []coc.Location, total int) {
	if len(locations) == 0 {
		fmt.Fprintln(w, "No locations found matching the criteria.")
		return
	}

	fmt.Fprintf(w, "Found %s", plural(len(locations), "location"))
	if total != len(locations) {
		fmt.Fprintf(w, " (%d before filtering)", total)
	}
	fmt.Fprintln(w, ":")

	rule(w)
	fmt.Fprintf(w, "%-10s %-32s %-8s %s\n", "ID", "NAME", "COUNTRY", "CODE")
	rule(w)
	for _, loc := range locations {
		printLocationRow(w, loc)
	}
	rule(w)
}

func printLocationRow(w io.Writer, loc coc.Location) {
	code := "-"
	if loc.CountryCode != nil {
		code = *loc.CountryCode
	}
	fmt.Fprintf(w, "%-10d %-32s %-8t %s\n", loc.ID, truncate(loc.Name, 32), loc.IsCountry, code)
}
