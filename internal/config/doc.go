// Package config loads the vdom.yaml file read by the vdom command.
//
// Every field is optional; missing values get defaults and command-line
// flags override what the file sets.
//
// # Configuration File Structure
//
//	root: body
//	scenario: scenarios/todo.yaml
//	server:
//	  host: localhost
//	  port: 7070
//	  allowedOrigins: ["http://localhost:3000"]
//	  interval: 2s
//	loop:
//	  queueSize: 256
//	metrics:
//	  enabled: true
//	  namespace: vdom
//	  path: /metrics
//	log:
//	  level: info
//	  format: text
//	replay:
//	  pretty: true
//	  diff: false
//	storage:
//	  region: eu-west-1
//	  endpoint: http://localhost:9000
//	  pathStyle: true
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
