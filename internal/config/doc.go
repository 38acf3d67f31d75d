// Package config provides configuration parsing for area servers.
//
// The configuration is stored in area.yaml (or area.json) in the working
// directory. This package handles loading, saving, validating and
// overriding it from the environment.
//
// # Configuration File Structure
//
//	name: shop
//	manifest: routes.yaml
//	server:
//	  address: localhost:7070
//	  devtools: /_area
//	history:
//	  limit: 50
//	metrics:
//	  enabled: true
//	  namespace: shop
//	tracing:
//	  enabled: false
//	  tracerName: shop
//	storage:
//	  bucket: shop-templates
//	  region: eu-west-1
//	  prefix: templates/
//	log:
//	  level: info
//	  format: text
//
// # Environment
//
// Every field can be overridden by an AREA_* variable, for example
// AREA_ADDR, AREA_MANIFEST, AREA_LOG_LEVEL or AREA_S3_BUCKET. Variables win
// over the file.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.Server.Address)
package config
