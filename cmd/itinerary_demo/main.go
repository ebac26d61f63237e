// README: Demo CLI; generates one itinerary through the configured gateway and prints it as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"moodtrip/internal/config"
	"moodtrip/internal/modules/itinerary"
	"moodtrip/internal/service"
)

func main() {
	var (
		mode        = flag.String("mode", "long", "trip mode: long or short")
		from        = flag.String("from", "Hà Nội", "start location")
		destination = flag.String("to", "", "destination (empty lets the model choose)")
		days        = flag.Int("days", 2, "number of days (long trips)")
		nights      = flag.Int("nights", 1, "number of nights (long trips)")
		startDate   = flag.String("date", "", "start date, YYYY-MM-DD")
		startTime   = flag.String("start", "", "start time (short trips)")
		endTime     = flag.String("end", "", "end time (short trips)")
		budget      = flag.Int64("budget", 3_000_000, "budget")
		moods       = flag.String("moods", "", "comma-separated moods")
		note        = flag.String("note", "", "personal note")
		links       = flag.Bool("links", false, "fill map links with Google Maps")
		timeout     = flag.Duration("timeout", 2*time.Minute, "overall timeout")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	req := itinerary.TripRequest{
		Mode:          itinerary.TripMode(*mode),
		StartLocation: *from,
		Destination:   *destination,
		StartDate:     *startDate,
		StartTime:     *startTime,
		EndTime:       *endTime,
		Budget:        *budget,
		PersonalNote:  *note,
	}
	if req.Mode == itinerary.ModeLong {
		req.Duration = itinerary.Duration{Days: *days, Nights: *nights}
	}
	for _, m := range strings.Split(*moods, ",") {
		if m = strings.TrimSpace(m); m == "" {
			continue
		}
		if req.Mode == itinerary.ModeShort {
			req.ShortMoods = append(req.ShortMoods, itinerary.ShortMood(m))
		} else {
			req.Moods = append(req.Moods, itinerary.Mood(m))
		}
	}
	if err := req.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	gateway, closeGateway, err := service.NewGateway(ctx, cfg)
	if err != nil {
		log.Fatalf("gateway init: %v", err)
	}
	defer closeGateway()

	plan, err := itinerary.NewService(gateway, logger).Generate(ctx, req)
	if err != nil {
		log.Fatalf("%s (%v)", itinerary.UserMessage(err), err)
	}
	itinerary.AssignID(plan, time.Now())

	if *links {
		filler, err := service.NewLinkFiller(cfg, logger)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		if filler == nil {
			log.Fatal("GOOGLE_MAPS_API_KEY is required for -links")
		}
		fmt.Fprintf(os.Stderr, "filled %d map fields\n", filler.Fill(ctx, plan))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(plan); err != nil {
		log.Fatal(err)
	}
}
