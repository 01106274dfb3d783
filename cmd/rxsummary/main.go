// Command rxsummary summarizes a prescribing extract from the command line.
//
//	rxsummary columns data.csv
//	rxsummary plot data.csv --x PCO_NAME --y ITEMS --agg Sum --filter REGIONAL_OFFICE_NAME=LONDON
//	rxsummary summary data.xlsx --group-by ICB_NAME --agg Average --out summary.xlsx
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
