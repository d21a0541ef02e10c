package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xavhermans/clashofclans/coc"
	"github.com/xavhermans/clashofclans/filter"
)

// locationsCmd groups the location commands
var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List locations and look up countries",
}

var locationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List locations",
	Long: `List regions and countries. --where filters on ID, Name, IsCountry,
CountryCode and LocalizedName, e.g. --where 'IsCountry && Name startsWith "F"'.`,
	Args: cobra.NoArgs,
	RunE: runLocationsList,
}

var locationsFindCmd = &cobra.Command{
	Use:   "find COUNTRY_CODE",
	Short: "Find the location of a country by its ISO code",
	Args:  cobra.ExactArgs(1),
	RunE:  runLocationsFind,
}

func init() {
	addParamFlag(locationsListCmd, coc.ListLocationsOptions())
	addFilterFlags(locationsListCmd)

	locationsCmd.AddCommand(locationsListCmd)
	locationsCmd.AddCommand(locationsFindCmd)
}

func runLocationsList(cmd *cobra.Command, args []string) error {
	options, err := parseParams(params)
	if err != nil {
		return err
	}
	query, err := coc.NewListLocationsQuery(options)
	if err != nil {
		return err
	}
	where, err := resolveFilter()
	if err != nil {
		return err
	}

	page, err := client.ListLocations(cmd.Context(), query)
	if err != nil {
		return err
	}

	locations, err := filter.Select(cmd.Context(), filters, where, page.Items, filter.LocationEnv)
	if err != nil {
		return err
	}

	return render(cmd, coc.Paginator[coc.Location]{Items: locations, Paging: page.Paging}, func(w io.Writer) {
		printLocations(w, locations, len(page.Items))
		printPaging(w, page.Paging)
	})
}

func runLocationsFind(cmd *cobra.Command, args []string) error {
	loc, err := client.FindLocationByCountryCode(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("no location found for country code %s", args[0])
	}

	return render(cmd, loc, func(w io.Writer) {
		printLocationRow(w, *loc)
	})
}
