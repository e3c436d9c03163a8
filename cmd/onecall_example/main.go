package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"owapi/config"
	"owapi/datasource"
	"owapi/flatten"
)

func main() {
	fmt.Println("One Call API Client Example")
	fmt.Println("===========================")

	lat := flag.Float64("lat", 51.5085, "Latitude")
	lon := flag.Float64("lon", -0.1257, "Longitude")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	client, err := datasource.NewOpenWeatherMapClient(cfg)
	if err != nil {
		fmt.Printf("Error creating client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("\nFetching current conditions and forecast for %.4f,%.4f...\n", *lat, *lon)
	resp, err := client.GetCurrentAndForecast(ctx, *lat, *lon)
	if err != nil {
		fmt.Printf("Error fetching forecast: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Timezone: %s (offset %ds)\n", resp.Timezone, resp.TimezoneOffset)
	fmt.Printf("Hourly entries: %d, daily entries: %d\n", len(resp.Hourly), len(resp.Daily))

	// Pretty print the raw current section
	prettyJSON, _ := json.MarshalIndent(resp.Current, "", "  ")
	fmt.Printf("\nRaw current section:\n%s\n", string(prettyJSON))

	current, err := flatten.Current(resp)
	if err != nil {
		fmt.Printf("Error flattening current section: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nFlattened current row:")
	row := current.Record(0)
	for _, col := range current.Columns() {
		fmt.Printf("  %-22s %v\n", col, row[col])
	}
}
