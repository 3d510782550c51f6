package nersdk

import "github.com/wagiedev/ner-sdk-go/internal/config"

// Transport defines the interface for worker communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods (e.g., a remote tagger).
//
// The default implementation spawns the tagger as a java subprocess.
// Custom transports can be injected via WithTransport.
type Transport = config.Transport
