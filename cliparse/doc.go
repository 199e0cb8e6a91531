// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Flags take precedence over environment variables, which take precedence
over the env file (default .env, missing file ignored).

# Settings

	-p, --port            PORT              listen port (3000)
	    --data-dir        DATA_DIR          local JSON copies (data)
	    --backend         STORAGE_BACKEND   none, sql or rest
	-d, --database-url    DATABASE_URL      sql backend connection string
	-t, --database-type   DATABASE_TYPE     sqlite or postgres
	    --kv-url          KV_REST_API_URL   rest backend base URL
	    --kv-token        KV_REST_API_TOKEN rest backend bearer token
	    --app-url         APP_URL
	    --shared-app-url  SHARED_APP_URL    defaults to the app URL
	    --env             APP_ENV           development or production
	    --timezone        APP_TIMEZONE      report day boundaries (Local)
	    --remote-timeout  REMOTE_TIMEOUT    per remote call (5s)
	    --rate-limit      RATE_LIMIT        requests/minute/IP, 0 disables (300)
	    --trust-proxy     TRUST_PROXY       rate limit by forwarding headers (false)
	    --allowed-origins ALLOWED_ORIGINS   comma-separated CORS origins (*)
	    --env-file                          env file to load (.env)

# Backend Detection

When --backend is empty the remote store is chosen from what is set:
KV_REST_API_URL plus KV_REST_API_TOKEN selects rest, DATABASE_URL selects
sql, otherwise the service runs on local files only. The database type
is inferred from the URL scheme (postgres:// or postgresql:// means
PostgreSQL, anything else SQLite).

# Validation

ParseFlags returns an error for an unknown backend, a backend missing its
connection settings, an unknown env or time zone, or malformed numeric
and duration values.
*/
package cliparse
