package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/train-tools/bestprice-api/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bestprice-api",
		Short: "Cheapest daily train fares between two stations, via bahn.de best-price queries",
	}

	var port int
	var debug bool
	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP API server",
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ApiServer(port, debug)
		},
	}
	serverCmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	serverCmd.Flags().BoolVar(&debug, "debug", false, "expose pprof endpoints")

	var params cmd.SearchParams
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Run a one-shot best-price search and print the price calendar",
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Search(params)
		},
	}
	searchCmd.Flags().StringVar(&params.From, "from", "", "start station (free text)")
	searchCmd.Flags().StringVar(&params.To, "to", "", "destination station (free text)")
	searchCmd.Flags().StringVar(&params.Date, "date", "", "first day of the window (YYYY-MM-DD, default today)")
	searchCmd.Flags().IntVar(&params.Days, "days", 3, "number of days to search (1-30)")
	searchCmd.Flags().IntVar(&params.MaxTransfers, "max-transfers", 0, "maximum number of transfers")
	searchCmd.Flags().BoolVar(&params.FirstClass, "first-class", false, "search first class fares")
	searchCmd.Flags().BoolVar(&params.Fast, "fast", false, "prefer fast connections")
	searchCmd.Flags().BoolVar(&params.DTicket, "d-ticket", false, "Deutschland-Ticket connections only")
	_ = searchCmd.MarkFlagRequired("from")
	_ = searchCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(serverCmd, searchCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
