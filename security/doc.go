// Package security builds TLS client configuration for the outbound
// connections flowview makes: the engine HTTP client and the redis store.
//
//	engine:
//	  base_url: https://engine.internal:8443
//	  tls:
//	    ca_file: /etc/flowview/engine-ca.pem
//
// A zero TLSConfig builds to nil, which keeps the library defaults.
package security
