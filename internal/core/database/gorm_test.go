package database

import "testing"

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		user, pass string
		want       string
	}{
		{
			name: "url form",
			in:   "mysql://root:pw@127.0.0.1:3306/app",
			want: "root:pw@tcp(127.0.0.1:3306)/app?charset=utf8mb4&parseTime=true",
		},
		{
			name: "jdbc prefix",
			in:   "jdbc:mysql://db:3306/app",
			user: "svc", pass: "s3c",
			want: "svc:s3c@tcp(db:3306)/app?charset=utf8mb4&parseTime=true",
		},
		{
			name: "driver syntax passthrough",
			in:   "root:pw@tcp(localhost:3306)/app?parseTime=true",
			want: "root:pw@tcp(localhost:3306)/app?parseTime=true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeMySQLDSN(tc.in, tc.user, tc.pass)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestNewGormUnsupportedDriver(t *testing.T) {
	if _, err := NewGorm(Opts{Driver: "mongo"}); err != ErrUnsupportedDriver {
		t.Fatalf("expected ErrUnsupportedDriver, got %v", err)
	}
}

func TestNewGormMemory(t *testing.T) {
	db, err := NewGorm(Opts{Driver: DriverMemory, LogLevel: "silent"})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	if err := sqlDB.Ping(); err != nil {
		t.Fatal(err)
	}
}
