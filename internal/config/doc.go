// Package config handles configuration loading for agui-gateway.
//
// Configuration is read from a YAML file with ${VAR} environment variable
// expansion. A minimal config looks like:
//
//	server:
//	  http_addr: "localhost:5050"
//
//	agents:
//	  idle_timeout: "5m"
//	  default_target: "observability"
//	  targets:
//	    - name: observability
//	      url: "http://localhost:9999"
//	      path: "/"
//	    - name: generic
//	      url: "http://localhost:9998"
//	      path: "/"
//	  routes:
//	    - prefix: "LS"
//	      target: "generic"
//	      strip_prefix: true
//
//	logging:
//	  level: "info"
//	  format: "text"
//
// Routing rules are evaluated in listed order; the first prefix match wins
// and unmatched messages go to the default target. The configuration is
// loaded once at process start and is immutable for the process lifetime.
package config
