// Package config parses process-level configuration for the exchange
// binaries. The teacher's cmd/server/server.go hardcodes its listen
// address; we lift that into flags here so both the TCP and HTTP front
// ends can be configured without recompiling. No third-party
// configuration library appears anywhere in the retrieved pack, so this
// stays on the standard library's flag package, the same way the
// teacher's cmd/client/client.go already does for its own CLI flags.
package config

import "flag"

// Config holds everything cmd/main.go needs to stand up the exchange.
type Config struct {
	TCPAddress     string
	TCPPort        int
	HTTPAddress    string
	WorkerPoolSize int
}

// Parse reads os.Args (via the flag package's default FlagSet) into a
// Config, applying the same defaults the teacher's binaries hardcode.
func Parse() Config {
	tcpAddress := flag.String("tcp-address", "0.0.0.0", "address the TCP wire server listens on")
	tcpPort := flag.Int("tcp-port", 9001, "port the TCP wire server listens on")
	httpAddress := flag.String("http-address", "0.0.0.0:8080", "address:port the HTTP read-only API listens on")
	workerPoolSize := flag.Int("workers", 10, "number of connection-handling workers")

	flag.Parse()

	return Config{
		TCPAddress:     *tcpAddress,
		TCPPort:        *tcpPort,
		HTTPAddress:    *httpAddress,
		WorkerPoolSize: *workerPoolSize,
	}
}
