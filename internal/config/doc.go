// Package config loads themeassets configuration.
//
// The configuration lives in themeassets.json (comments allowed) or
// themeassets.yaml next to the site. This package handles loading,
// saving and validating it.
//
// # Configuration File Structure
//
//	{
//	  "host": {
//	    "themesDir": "/srv/site/themes",
//	    "themesURL": "https://example.com/themes",
//	    "parentTheme": "base",
//	    "childTheme": "shop",
//	    "extensionsDir": "/srv/site/extensions",
//	    "extensionsURL": "https://example.com/extensions"
//	  },
//	  "origins": {
//	    "parent": { "inherit": true },
//	    "child": { "manifestDir": "/dist" },
//	    "extension": { "entryPoint": "cart/cart.php", "assetsDir": "/assets" }
//	  },
//	  // manifests can also live in a bucket
//	  "storage": { "driver": "s3", "s3": { "bucket": "site-assets" } },
//	  "server": { "addr": ":8080", "metrics": true },
//	  "log": { "level": "info", "format": "json" }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
