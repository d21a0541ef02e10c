package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xavhermans/clashofclans/coc"
	"github.com/xavhermans/clashofclans/filter"
)

// warCmd groups the clan war commands
var warCmd = &cobra.Command{
	Use:   "war",
	Short: "Show current wars and war logs",
}

var warCurrentCmd = &cobra.Command{
	Use:   "current TAG",
	Short: "Show the war a clan is currently in",
	Long: `Show the current war of a clan. --where filters the clan's own war
members using Tag, Name, TownhallLevel, MapPosition, Attacks, Stars,
OpponentAttacks and BestOpponentStars.`,
	Args: cobra.ExactArgs(1),
	RunE: runWarCurrent,
}

var warLogCmd = &cobra.Command{
	Use:   "log TAG",
	Short: "Show a clan's war log",
	Long: `Show the war log of a clan. The war log must be public.

  clashofclans war log '#2PPC8L2QP' -p limit=20 --where 'Won && Stars >= 40'

Filter fields: Result, Won, EndTime, TeamSize, Opponent, OpponentTag, Stars,
OpponentStars, Destruction, OpponentDestruction, Attacks and ExpEarned.`,
	Args: cobra.ExactArgs(1),
	RunE: runWarLog,
}

func init() {
	addFilterFlags(warCurrentCmd)

	addParamFlag(warLogCmd, []string{coc.OptLimit, coc.OptAfter, coc.OptBefore})
	addFilterFlags(warLogCmd)

	warCmd.AddCommand(warCurrentCmd)
	warCmd.AddCommand(warLogCmd)
}

func runWarCurrent(cmd *cobra.Command, args []string) error {
	where, err := resolveFilter()
	if err != nil {
		return err
	}

	war, err := client.GetCurrentWar(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if war == nil {
		return render(cmd, map[string]string{"state": coc.WarStateNotInWar}, func(w io.Writer) {
			fmt.Fprintf(w, "Clan %s is not in war.\n", args[0])
		})
	}

	members, err := filter.Select(cmd.Context(), filters, where, war.Clan.Members, filter.WarMemberEnv)
	if err != nil {
		return err
	}

	out := *war
	out.Clan.Members = members

	return render(cmd, out, func(w io.Writer) {
		printCurrentWar(w, war, members)
	})
}

func runWarLog(cmd *cobra.Command, args []string) error {
	options, err := parseParams(params)
	if err != nil {
		return err
	}
	if _, ok := options[coc.OptClanTag]; ok {
		return fmt.Errorf("the clan tag is given as an argument, not as -p %s", coc.OptClanTag)
	}
	options[coc.OptClanTag] = args[0]

	query, err := coc.NewGetWarLogQuery(options)
	if err != nil {
		return err
	}
	where, err := resolveFilter()
	if err != nil {
		return err
	}

	page, err := client.GetWarLog(cmd.Context(), query)
	if err != nil {
		return err
	}

	entries, err := filter.Select(cmd.Context(), filters, where, page.Items, filter.WarLogEnv)
	if err != nil {
		return err
	}

	return render(cmd, coc.Paginator[coc.WarLog]{Items: entries, Paging: page.Paging}, func(w io.Writer) {
		printWarLog(w, entries, len(page.Items))
		printPaging(w, page.Paging)
	})
}
