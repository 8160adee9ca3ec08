package deps

import (
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/auth"
	"github.com/MrSnakeDoc/linkdrop/internal/catalog"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/session"
	"github.com/MrSnakeDoc/linkdrop/internal/stats"
)

type Deps struct {
	Logger     logger.Logger
	StartTime  time.Time
	Version    string
	Commit     string
	BuildDate  string
	GoVersion  string
	TimeNow    func() time.Time // for testing, defaults to time.Now
	TrustProxy bool             // true if running behind a trusted reverse proxy
	AdminCIDRs []string         // IPs allowed to reach /api/admin (empty = no filter)

	Catalog  *catalog.Service // catalog mutator + claim enforcer
	Sessions *session.Manager // browser sessions (admin flag)
	Gate     *auth.PinGate    // PIN verification + per-IP lockout
	Stats    *stats.Recorder  // optional claim counters (nil-safe)
}
