package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xavhermans/clashofclans/coc"
	"github.com/xavhermans/clashofclans/filter"
)

var showMembers bool

// clansCmd groups the clan commands
var clansCmd = &cobra.Command{
	Use:   "clans",
	Short: "Search clans and show clan details",
}

var clansSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search clans",
	Long: `Search all clans by name and/or filtering criteria.

Query options are passed with -p and checked before any request is sent:
  clashofclans clans search -p name=coconut -p minMembers=20 -p limit=10

The returned page can be narrowed further with --where, using the fields
Tag, Name, Type, Location, CountryCode, ClanLevel, ClanPoints, WarWins,
WarLosses, WarWinStreak, IsWarLogPublic, WarLeague, Members and Labels.`,
	Args: cobra.NoArgs,
	RunE: runClansSearch,
}

var clansGetCmd = &cobra.Command{
	Use:   "get TAG",
	Short: "Show a clan by tag",
	Long: `Show the details of a clan. With --members the member list is printed
and --where filters members instead, using the fields Tag, Name, Role,
ExpLevel, League, Trophies, Donations, DonationsReceived and DonationRatio.`,
	Args: cobra.ExactArgs(1),
	RunE: runClansGet,
}

func init() {
	addParamFlag(clansSearchCmd, coc.SearchClansOptions())
	addFilterFlags(clansSearchCmd)

	clansGetCmd.Flags().BoolVarP(&showMembers, "members", "m", false, "list clan members")
	addFilterFlags(clansGetCmd)

	clansCmd.AddCommand(clansSearchCmd)
	clansCmd.AddCommand(clansGetCmd)
}

func runClansSearch(cmd *cobra.Command, args []string) error {
	options, err := parseParams(params)
	if err != nil {
		return err
	}
	query, err := coc.NewSearchClansQuery(options)
	if err != nil {
		return err
	}
	where, err := resolveFilter()
	if err != nil {
		return err
	}

	logger.Info().Interface("options", options).Msg("Searching clans")

	page, err := client.SearchClans(cmd.Context(), query)
	if err != nil {
		return err
	}

	clans, err := filter.Select(cmd.Context(), filters, where, page.Items, filter.ClanEnv)
	if err != nil {
		return err
	}

	return render(cmd, coc.Paginator[coc.Clan]{Items: clans, Paging: page.Paging}, func(w io.Writer) {
		printClans(w, clans, len(page.Items))
		printPaging(w, page.Paging)
	})
}

func runClansGet(cmd *cobra.Command, args []string) error {
	where, err := resolveFilter()
	if err != nil {
		return err
	}
	if where != nil && !showMembers {
		return fmt.Errorf("--where and --preset on clans get filter members and need --members")
	}

	clan, err := client.FindClanByTag(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if clan == nil {
		return fmt.Errorf("clan %s not found", args[0])
	}

	var members []coc.ClanMember
	if showMembers {
		members, err = filter.Select(cmd.Context(), filters, where, clan.MemberList, filter.MemberEnv)
		if err != nil {
			return err
		}
	}

	out := *clan
	out.MemberList = members

	return render(cmd, out, func(w io.Writer) {
		printClan(w, clan)
		if showMembers {
			printMembers(w, members)
		}
	})
}
