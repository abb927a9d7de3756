// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

For cobra, bind the flag set to the root command and resolve before running:

	var cfg cliparse.Config
	root.PersistentFlags().AddGoFlagSet(cliparse.NewFlagSet(&cfg))
	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		return cliparse.Resolve(&cfg)
	}

# CLI Flags

	-d               Database URL or SQLite path
	-t               Database type: sqlite (default) or postgres
	--api            REST API base URL; replaces the database
	--api-key        REST API key
	--cache          Local cache: sqlite (default), file, redis or memory
	--cache-path     Cache SQLite file, or directory for the file cache
	--redis          Redis address
	--user, --name   Host user id and first name
	--init-data      Signed launch init data; overrides --user
	--bot-token      Bot token that signs init data
	--bot            Bot username for invite links
	--timezone       Default planner timezone
	--persist-delay  State save debounce in milliseconds
	--env-file       Env file (default .env)

# Environment Variables

Flags fall back to environment variables:

	DATABASE_URL      → -d
	DATABASE_TYPE     → -t
	API_URL, API_KEY  → --api, --api-key
	CACHE_TYPE        → --cache
	CACHE_PATH        → --cache-path
	REDIS_ADDR        → --redis
	PLANNER_USER_ID   → --user
	PLANNER_USER_NAME → --name
	TMA_INIT_DATA     → --init-data
	BOT_TOKEN         → --bot-token
	BOT_USERNAME      → --bot
	PLANNER_TIMEZONE  → --timezone
	PERSIST_DELAY_MS  → --persist-delay

The env file is loaded first with godotenv and never overrides variables
that are already set. CLI flags take precedence over both.

# Validation

Resolve returns an error if:

  - neither DATABASE_URL nor API_URL is provided
  - PERSIST_DELAY_MS is not a non-negative integer
  - init data is given without BOT_TOKEN
*/
package cliparse
