package hostsim

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL    string        // Base URL of the bridge service
	NumCalls   int           // Number of host calls to generate
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Settle     time.Duration // How long to wait for outbound events after submitting
	Excluded   []string      // Providers the bridge is expected to filter
	OutputFile string        // Output file for generated calls
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Call is one generated host call. Payload is unique per call and is
// echoed back by the bridge, which lets the listener correlate envelopes.
type Call struct {
	Entry    string         `json:"entry"`
	Args     map[string]any `json:"args"`
	Provider int            `json:"provider"`
	Payload  string         `json:"payload"`
	Expect   string         `json:"expect"`
	Filtered bool           `json:"filtered"`
}

// Ack is the body of a successful POST /calls/{entry}.
type Ack struct {
	Status string `json:"status"`
	Call   string `json:"call"`
}

// Stats holds run statistics.
type Stats struct {
	CallsGenerated int
	CallsSubmitted int
	CallsAccepted  int
	CallsRejected  int
	CallsFailed    int
	Received       int
	Delivered      int
	Filtered       int
	Missing        int
	Unexpected     int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
