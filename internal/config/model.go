// internal/config/model.go
//
// Typed configuration model for Aikotoba.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                      – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `AIKOTOBA_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client after unmarshalling, so handlers never see
// Vault URIs—only plain strings.  Plain values pass through untouched and
// dev setups run without a Vault server.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Site section
//

// Site holds gallery-wide presentation values.
type Site struct {
	Title   string `koanf:"title" validate:"required"`
	BaseURL string `koanf:"base_url"`
}

//
// Database section
//

// Database holds the MySQL DSN template and its secret.  The template stays
// in YAML so operators can tweak host, port, or flags without touching
// Vault; the password may be a `vault:` reference resolved at boot.
type Database struct {
	DSN      string `koanf:"dsn" validate:"required"`
	Password string `koanf:"password"`
}

//
// Redis section (view counters; optional)
//

// Redis configures the best-effort view counter.  An empty Addr disables it.
type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

//
// Storage section
//

// Storage roots the local blob store for uploaded images.
type Storage struct {
	Path string `koanf:"path" validate:"required"`
}

//
// Session section
//

// Session signs the admin cookie.  Secret may be a `vault:` reference.
type Session struct {
	Secret   string `koanf:"secret" validate:"required"`
	TTLHours int    `koanf:"ttl_hours" validate:"gte=1"`
}

//
// Slug section (optional)
//

// Slug tunes generated URL slugs.  MaxLen bounds the normalized base before
// the uniqueness suffix; zero means the built-in default.
type Slug struct {
	MaxLen int `koanf:"max_len" validate:"omitempty,gte=10,lte=100"`
}

//
// GeoIP section (optional)
//

// GeoIP points at a MaxMind database; empty Path disables geo enrichment.
type GeoIP struct {
	Path string `koanf:"path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or AIKOTOBA_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // AIKOTOBA_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Site     Site     `koanf:"site"`
	Database Database `koanf:"database"`
	Redis    Redis    `koanf:"redis"`
	Storage  Storage  `koanf:"storage"`
	Session  Session  `koanf:"session"`
	Slug     Slug     `koanf:"slug"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
