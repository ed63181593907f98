// Package app holds the flowview process configuration and wires the
// packages into components for bootstrap.
//
// A config.yml maps one section per package:
//
//	engine:
//	  base_url: "http://localhost:8080"
//	  dialect: "api"
//	poller:
//	  interval: "5s"
//	interaction:
//	  mode: "form"
//	store:
//	  provider: "local"
//	  local:
//	    base_path: "./data/graphs"
//	server:
//	  port: 8090
//
// Every key can be overridden with FLOWVIEW_<SECTION>_<KEY>.
package app
