package cfg

import "time"

type Cfg struct {
	// Required paths
	FeedsFile    string
	DatabasePath string
	TemplatesDir string
	OutputDir    string

	// Batch run configuration
	WorkerCount    int
	Timeout        int // seconds, per feed source
	LatestCount    int
	ExtractContent bool

	// Preview server configuration
	Serve bool
	Port  string

	// Application metadata
	UserAgent string
	Timezone  string
	Location  *time.Location
	Debug     bool
	Version   string
}
