package patterns

import "time"

// DefaultTimeout is the default timeout for HTTP requests
const DefaultTimeout = 3 * time.Second

// SlowServiceTimeout is a longer timeout for collaborators that might be slow,
// such as text generation
const SlowServiceTimeout = 30 * time.Second
