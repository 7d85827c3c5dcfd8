package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Anoesj/google-calendar-logger/internal/auth"
	calclient "github.com/Anoesj/google-calendar-logger/internal/calendar"
	"github.com/Anoesj/google-calendar-logger/internal/config"
	"github.com/Anoesj/google-calendar-logger/internal/export"
	"github.com/Anoesj/google-calendar-logger/internal/session"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
)

func printHelp() {
	fmt.Fprintf(os.Stderr, `Calendar Logger

Logs work sessions as events on a Google Calendar. Each session is one event:
started with an open marker, extended on every activity report, and closed on
end or automatically after an inactivity lapse.

USAGE:
    %s [OPTIONS] COMMAND

COMMANDS:
    start                         Open a new work session
    activity MESSAGE              Record an activity against the open session,
                                  extending its end time to now. If the session
                                  lapsed, it is closed and a fresh one is opened
                                  for the activity.
    end                           Conclude the open session
    export                        Write the concluded sessions in the lookback
                                  window to an iCalendar file (see --out)

OPTIONS:
    -h, --help                    Show this help message and exit
    -v, --verbose                 Print links to created/updated events
    --config FILE                 Path to JSON or YAML config file (optional)
    --google-credentials-path PATH Path to Google OAuth credentials JSON file
                                  (overrides config file and GOOGLE_CREDENTIALS_PATH env var)
    --token-path PATH             Path to store the OAuth token
                                  (overrides config file and TOKEN_PATH env var)
    --calendar-name NAME          Calendar to log sessions to; created when missing
                                  (default: "Work Log", overrides config file and LOG_CALENDAR_NAME env var)
    --calendar-color-id ID        Color ID for a newly created calendar
                                  (overrides config file and LOG_CALENDAR_COLOR_ID env var)
    --threshold-minutes N         Inactivity threshold in minutes; a session with no
                                  activity for longer than this is considered lapsed
                                  (default: 10, overrides config file and INACTIVITY_THRESHOLD_MINUTES env var)
    --lookback-days N             How many days back to scan for the open session
                                  (default: 14, overrides config file and LOOKBACK_DAYS env var)
    --out FILE                    Output path for the export command (default: "sessions.ics")

CONFIGURATION PRECEDENCE (highest to lowest):
    1. Command-line flags
    2. Environment variables
    3. Config file (--config)
    4. Defaults

CONFIG FILE:
    JSON or YAML, selected by file extension. Example:
    {
      "google_credentials_path": "/path/to/credentials.json",
      "token_path": "/path/to/token.json",
      "calendar_name": "Thesis",
      "threshold_minutes": 10,
      "lookback_days": 14,
      "messages": {
        "started": "Back at it",
        "open_summary": "Working on {calendar}"
      }
    }

    The Google credentials JSON file should be in the format downloaded from
    Google Cloud Console. It should contain either an "installed" or "web"
    section with "client_id" and "client_secret" fields.

    Message strings may contain the "{calendar}" placeholder, replaced with the
    calendar name.

EXAMPLES:
    # Open a session
    %s --config ~/.callogger.json start

    # Record what you just did
    %s --config ~/.callogger.json activity "reviewed PR #42"

    # Conclude the session
    %s --config ~/.callogger.json end

    # Export the last two weeks of concluded sessions
    %s --config ~/.callogger.json --out worklog.ics export

`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	// Parse command-line flags
	helpFlag := flag.Bool("help", false, "Show help message")
	helpFlagShort := flag.Bool("h", false, "Show help message (shorthand)")
	verboseFlag := flag.Bool("verbose", false, "Print links to created/updated events")
	verboseFlagShort := flag.Bool("v", false, "Print links to created/updated events (shorthand)")
	configFile := flag.String("config", "", "Path to JSON or YAML config file (optional)")
	googleCredentialsPath := flag.String("google-credentials-path", "", "Path to Google OAuth credentials JSON file")
	tokenPath := flag.String("token-path", "", "Path to store the OAuth token")
	calendarName := flag.String("calendar-name", "", "Calendar to log sessions to (default: \"Work Log\")")
	calendarColorID := flag.String("calendar-color-id", "", "Color ID for a newly created calendar")
	thresholdMinutes := flag.Int("threshold-minutes", 0, "Inactivity threshold in minutes (default: 10)")
	lookbackDays := flag.Int("lookback-days", 0, "How many days back to scan for the open session (default: 14)")
	outPath := flag.String("out", "sessions.ics", "Output path for the export command")
	flag.Parse()

	// Show help if requested
	if *helpFlag || *helpFlagShort {
		printHelp()
		os.Exit(0)
	}

	command := flag.Arg(0)
	if command == "" {
		printHelp()
		os.Exit(2)
	}

	// Set up logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	ctx := context.Background()

	// Load configuration (precedence: flags > env vars > config file > defaults)
	cfg, err := config.LoadConfig(*configFile, config.Flags{
		GoogleCredentialsPath: *googleCredentialsPath,
		TokenPath:             *tokenPath,
		CalendarName:          *calendarName,
		CalendarColorID:       *calendarColorID,
		ThresholdMinutes:      *thresholdMinutes,
		LookbackDays:          *lookbackDays,
		Verbose:               *verboseFlag || *verboseFlagShort,
	})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load Google OAuth credentials from the credentials file
	clientID, clientSecret, err := config.LoadGoogleCredentials(cfg.GoogleCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to load Google credentials: %v", err)
	}

	googleOAuthConfig := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  "http://127.0.0.1:8080", // Will be updated dynamically by auth flow
		Scopes: []string{
			calendar.CalendarScope,
			calendar.CalendarEventsScope,
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}

	tokenStore := auth.NewFileTokenStore(cfg.TokenPath)

	httpClient, err := auth.GetAuthenticatedClient(ctx, googleOAuthConfig, tokenStore)
	if err != nil {
		log.Fatalf("Failed to authenticate: %v", err)
	}

	client, err := calclient.NewClient(ctx, httpClient)
	if err != nil {
		log.Fatalf("Failed to create calendar client: %v", err)
	}

	// Resolve the log calendar, creating it on first use
	calendarID, err := client.FindOrCreateCalendarByName(cfg.CalendarName, cfg.CalendarColorID)
	if err != nil {
		log.Fatalf("Failed to resolve calendar %q: %v", cfg.CalendarName, err)
	}

	controller := session.NewController(client, cfg, calendarID)

	switch command {
	case "start":
		if _, err := controller.Start(ctx); err != nil {
			log.Fatalf("Failed to start session: %v", err)
		}
		log.Println("Session started.")

	case "activity":
		message := strings.TrimSpace(strings.Join(flag.Args()[1:], " "))
		if message == "" {
			log.Fatalf("The activity command requires a message, e.g.: %s activity \"reviewed PR #42\"", os.Args[0])
		}
		if _, err := controller.ReportActivity(ctx, message); err != nil {
			if errors.Is(err, session.ErrNoOpenSession) {
				log.Fatalf("No open session to report against; run '%s start' first.", os.Args[0])
			}
			log.Fatalf("Failed to report activity: %v", err)
		}
		log.Println("Activity recorded.")

	case "end":
		if _, err := controller.End(ctx); err != nil {
			if errors.Is(err, session.ErrNoOpenSession) {
				log.Fatalf("Nothing to conclude: no open session found.")
			}
			log.Fatalf("Failed to end session: %v", err)
		}
		log.Println("Session concluded.")

	case "export":
		now := time.Now()
		events, err := client.ListEvents(calendarID, now.AddDate(0, 0, -cfg.LookbackDays), now)
		if err != nil {
			log.Fatalf("Failed to list events: %v", err)
		}

		file, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer file.Close()

		if err := export.WriteSessions(file, events); err != nil {
			log.Fatalf("Failed to export sessions: %v", err)
		}
		log.Printf("Exported concluded sessions to %s", *outPath)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printHelp()
		os.Exit(2)
	}
}
