package database

import (
	"context"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "postgres", cfg: Config{Driver: "postgres", DSN: "postgres://localhost/screening"}},
		{name: "sqlite mixed case", cfg: Config{Driver: " SQLite ", DSN: "file::memory:"}},
		{name: "unknown driver", cfg: Config{Driver: "mysql", DSN: "x"}, wantErr: true},
		{name: "missing dsn", cfg: Config{Driver: "postgres"}, wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestOpenSQLite(t *testing.T) {
	t.Parallel()

	db, err := Open(Config{Driver: DriverSQLite, DSN: "file::memory:", MaxOpenConns: 1, Debug: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(context.Background(), "SELECT 1").Scan(&n); err != nil {
		t.Fatalf("select 1: %v", err)
	}
	if n != 1 {
		t.Fatalf("select 1 = %d", n)
	}
}
