package endpoint

import "time"

type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
	MethodHead Method = "HEAD"
)

// Endpoint is a monitored HTTP(S) target. The monitor core only reads
// endpoints; they are created and mutated by the configuration surface.
type Endpoint struct {
	ID        int64         `json:"id"`
	ProjectID int64         `json:"project_id"`
	Name      string        `json:"name"`
	URL       string        `json:"url"`
	Method    Method        `json:"method"`
	Interval  time.Duration `json:"interval"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
}
