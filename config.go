package databoss

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/vaibhavpandeyvpz/databoss/dialect"
	"github.com/vaibhavpandeyvpz/databoss/dialect/sql"
	"gopkg.in/yaml.v3"

	// Drivers for the three supported dialects.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Settings holds the connection configuration. Either DSN (respectively File
// for sqlite) or the discrete host fields must be provided; DSN wins when
// both are set.
type Settings struct {
	Dialect  string            `yaml:"dialect"`
	DSN      string            `yaml:"dsn"`
	File     string            `yaml:"file"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Database string            `yaml:"database"`
	Params   map[string]string `yaml:"params"`
}

// LoadSettings reads settings from a YAML file.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("databoss: parse settings: %w", err)
	}
	return s, nil
}

// Validate reports configuration errors before a connection is attempted.
func (s Settings) Validate() error {
	switch s.Dialect {
	case dialect.MySQL, dialect.Postgres:
		if s.DSN == "" && (s.Host == "" || s.Database == "") {
			return errors.New("databoss: settings require a dsn or host and database")
		}
	case dialect.SQLite:
		if s.DSN == "" && s.File == "" {
			return errors.New("databoss: sqlite settings require a dsn or file")
		}
	case "":
		return errors.New("databoss: settings require a dialect")
	default:
		return fmt.Errorf("databoss: unknown dialect %q", s.Dialect)
	}
	return nil
}

// source assembles the driver DSN from the discrete fields.
func (s Settings) source() string {
	if s.DSN != "" {
		return s.DSN
	}
	switch s.Dialect {
	case dialect.MySQL:
		port := s.Port
		if port == 0 {
			port = 3306
		}
		dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s", userInfo(s.Username, s.Password), s.Host, port, s.Database)
		if q := s.query(); q != "" {
			dsn += "?" + q
		}
		return dsn
	case dialect.Postgres:
		port := s.Port
		if port == 0 {
			port = 5432
		}
		u := url.URL{
			Scheme: "postgres",
			Host:   fmt.Sprintf("%s:%d", s.Host, port),
			Path:   "/" + s.Database,
		}
		if s.Username != "" {
			u.User = url.UserPassword(s.Username, s.Password)
		}
		u.RawQuery = s.query()
		return u.String()
	default:
		dsn := s.File
		if q := s.query(); q != "" {
			dsn = "file:" + dsn + "?" + q
		}
		return dsn
	}
}

func userInfo(username, password string) string {
	if password != "" {
		return username + ":" + password
	}
	return username
}

// query renders Params as a deterministic query string.
func (s Settings) query() string {
	if len(s.Params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = url.QueryEscape(k) + "=" + url.QueryEscape(s.Params[k])
	}
	return strings.Join(pairs, "&")
}

// Open validates the settings, connects to the database and returns a
// Client bound to it.
func Open(s Settings, opts ...Option) (*Client, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	drv, err := sql.Open(s.Dialect, s.source())
	if err != nil {
		return nil, err
	}
	return NewClient(drv, opts...), nil
}
